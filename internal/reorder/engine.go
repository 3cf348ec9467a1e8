// Package reorder implements drag-and-drop reordering of slots within a
// section. A drop is resolved to a swap, a move or a no-op, applied to the
// engine's optimistic view, written through the record store, and then
// always reconciled by reloading the section.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/showcase/internal/slotkey"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Store is the subset of the record store the engine writes through.
// *records.Store implements it.
type Store interface {
	List(ctx context.Context, sectionID string) ([]types.Slot, error)
	Put(ctx context.Context, slot types.Slot) (types.Slot, error)
	Delete(ctx context.Context, sectionID, key string) error
}

// Sections resolves section definitions. *registry.Registry implements it.
type Sections interface {
	Section(id string) (types.Section, bool)
}

// State is the drag state of the engine.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Result classifies a settled drop.
type Result string

const (
	NoOp      Result = "noop"
	SwappedOK Result = "swapped"
	MovedOK   Result = "moved"
	Failed    Result = "failed"
)

// Outcome describes a settled drop.
type Outcome struct {
	Result    Result `json:"result"`
	SectionID string `json:"section"`
	Source    string `json:"source"`
	Target    string `json:"target"`

	// Duplicate is set when a move wrote the target but could not delete
	// the source. Both slots then hold the same content until an operator
	// deletes one of them.
	Duplicate bool `json:"duplicate"`
}

type drag struct {
	seq       uint64
	sectionID string
	source    string
}

// Engine holds at most one drag at a time. It is safe for concurrent use.
type Engine struct {
	store    Store
	sections Sections
	logger   *zap.Logger

	mu    sync.Mutex
	seq   uint64
	drag  *drag
	views map[string][]types.Slot
}

// New returns an idle engine. A nil logger discards output.
func New(store Store, sections Sections, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, sections: sections, logger: logger, views: map[string][]types.Slot{}}
}

// Load replaces the view of a section with the record store's slots.
func (e *Engine) Load(ctx context.Context, sectionID string) error {
	slots, err := e.store.List(ctx, sectionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.views[sectionID] = slots
	e.mu.Unlock()
	return nil
}

// Slots returns the current view of a section in display order.
func (e *Engine) Slots(sectionID string) []types.Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSlots(e.views[sectionID])
}

// State reports whether a drag is in progress.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag != nil {
		return Dragging
	}
	return Idle
}

// Start begins dragging sourceKey. Any previous drag is discarded without
// side effects; if its drop is still in flight, that drop completes but its
// reload is not applied.
func (e *Engine) Start(sectionID, sourceKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.drag = &drag{seq: e.seq, sectionID: sectionID, source: sourceKey}
}

// Cancel abandons the current drag, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = nil
}

// Drop settles the current drag onto targetKey and returns the engine to
// Idle.
//
// Dropping onto the source itself, or dragging from an empty position, is a
// NoOp and touches nothing. A target the section cannot hold is a NoOp
// returned with ErrInvalidID, or ErrSectionNotFound when the section itself
// is gone. Every other drop reloads the section when it
// settles, whatever the result. A Failed outcome is returned together with
// the cause; a successful outcome may still carry a reload error.
func (e *Engine) Drop(ctx context.Context, targetKey string) (Outcome, error) {
	e.mu.Lock()
	d := e.drag
	e.drag = nil
	var view []types.Slot
	var loaded bool
	if d != nil {
		view, loaded = e.views[d.sectionID]
		view = cloneSlots(view)
	}
	e.mu.Unlock()

	if d == nil {
		return Outcome{}, types.ErrNoActiveDrag
	}
	out := Outcome{Result: NoOp, SectionID: d.sectionID, Source: d.source, Target: targetKey}
	if targetKey == "" {
		return out, fmt.Errorf("%w: empty target key", types.ErrInvalidID)
	}
	if d.source == targetKey {
		return out, nil
	}
	sec, ok := e.sections.Section(d.sectionID)
	if !ok {
		return out, fmt.Errorf("%w: %s", types.ErrSectionNotFound, d.sectionID)
	}

	if !loaded {
		slots, err := e.store.List(ctx, d.sectionID)
		if err != nil {
			return out, err
		}
		view = slots
	}

	if !holds(sec, view, targetKey) {
		return out, fmt.Errorf("%w: %s cannot hold %q", types.ErrInvalidID, sec.ID, targetKey)
	}

	src, srcOK := find(view, d.source)
	tgt, tgtOK := find(view, targetKey)

	var opErr error
	switch {
	case srcOK && tgtOK:
		e.applyIfCurrent(d, swapped(view, src, tgt))
		opErr = e.swap(ctx, src, tgt)
		out.Result = SwappedOK
	case srcOK:
		e.applyIfCurrent(d, moved(view, src, targetKey))
		var dup bool
		dup, opErr = e.move(ctx, src, targetKey)
		out.Duplicate = dup
		out.Result = MovedOK
	default:
		return out, nil
	}
	if opErr != nil {
		out.Result = Failed
	}

	e.logger.Info("drop settled",
		zap.String("section", d.sectionID),
		zap.String("source", d.source),
		zap.String("target", targetKey),
		zap.String("result", string(out.Result)),
		zap.Bool("duplicate", out.Duplicate),
		zap.Error(opErr))

	if err := e.reload(ctx, d); err != nil {
		return out, errors.Join(opErr, fmt.Errorf("reloading %s: %w", d.sectionID, err))
	}
	return out, opErr
}

// swap exchanges the payloads of two slots with two concurrent writes. Both
// writes run to completion; a lone successful half is not rolled back.
func (e *Engine) swap(ctx context.Context, a, b types.Slot) error {
	var errA, errB error
	var g errgroup.Group
	g.Go(func() error {
		_, errA = e.store.Put(ctx, a.WithContent(b.Content()))
		return nil
	})
	g.Go(func() error {
		_, errB = e.store.Put(ctx, b.WithContent(a.Content()))
		return nil
	})
	_ = g.Wait()
	return errors.Join(errA, errB)
}

// move writes the source's payload to targetKey and then deletes the source.
// It reports whether the delete failed after the write succeeded.
func (e *Engine) move(ctx context.Context, src types.Slot, targetKey string) (bool, error) {
	target := types.Slot{SectionID: src.SectionID, SlotKey: targetKey}.WithContent(src.Content())
	if _, err := e.store.Put(ctx, target); err != nil {
		return false, err
	}
	if err := e.store.Delete(ctx, src.SectionID, src.SlotKey); err != nil {
		return true, fmt.Errorf("%w: %s and %s: %w", types.ErrDuplicateSlot, src.SlotKey, targetKey, err)
	}
	return false, nil
}

// reload refetches the section and replaces the view unless a newer drag
// has started since d.
func (e *Engine) reload(ctx context.Context, d *drag) error {
	slots, err := e.store.List(ctx, d.sectionID)
	if err != nil {
		return err
	}
	if !e.applyIfCurrent(d, slots) {
		e.logger.Debug("discarding reload of superseded drag",
			zap.String("section", d.sectionID), zap.String("source", d.source))
	}
	return nil
}

func (e *Engine) applyIfCurrent(d *drag, view []types.Slot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seq != d.seq {
		return false
	}
	e.views[d.sectionID] = view
	return true
}

// holds reports whether key is a position of sec: one of its addressable
// keys, or any "<prefix>-<n>" key of a section that grows.
func holds(sec types.Section, view []types.Slot, key string) bool {
	keys := make([]string, len(view))
	for i, s := range view {
		keys[i] = s.SlotKey
	}
	if slices.Contains(slotkey.Addressable(sec, keys), key) {
		return true
	}
	if !sec.AllowAdd {
		return false
	}
	_, ok := slotkey.Suffix(key, sec.KeyPrefix)
	return ok
}

func find(view []types.Slot, key string) (types.Slot, bool) {
	i := slices.IndexFunc(view, func(s types.Slot) bool { return s.SlotKey == key })
	if i < 0 {
		return types.Slot{}, false
	}
	return view[i], true
}

// swapped returns view with the payloads of a and b exchanged.
func swapped(view []types.Slot, a, b types.Slot) []types.Slot {
	out := cloneSlots(view)
	for i, s := range out {
		switch s.SlotKey {
		case a.SlotKey:
			out[i] = s.WithContent(b.Content())
		case b.SlotKey:
			out[i] = s.WithContent(a.Content())
		}
	}
	return out
}

// moved returns view with src relabelled as targetKey.
func moved(view []types.Slot, src types.Slot, targetKey string) []types.Slot {
	out := cloneSlots(view)
	for i, s := range out {
		if s.SlotKey == src.SlotKey {
			out[i].SlotKey = targetKey
		}
	}
	return out
}

func cloneSlots(in []types.Slot) []types.Slot {
	if in == nil {
		return nil
	}
	out := make([]types.Slot, len(in))
	for i, s := range in {
		s.Metadata = s.Metadata.Clone()
		out[i] = s
	}
	return out
}
