// Package memory provides in-process implementations of the showcase
// collaborators: a slot PersistenceAPI, a DraftStore and an AssetStore.
// Nothing survives the process. They back the "memory" backend and let
// callers inject failures per operation.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Op names a PersistenceAPI operation.
type Op string

const (
	OpList   Op = "list"
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// FailFunc decides whether an operation on (sectionID, key) fails. For
// OpList key is empty.
type FailFunc func(op Op, sectionID, key string) error

// Slots is an in-memory PersistenceAPI.
type Slots struct {
	mu    sync.Mutex
	byID  map[string]types.Slot
	calls map[Op]int
	fail  FailFunc
	now   func() time.Time
}

var _ types.PersistenceAPI = (*Slots)(nil)

// NewSlots returns an empty store.
func NewSlots() *Slots {
	return &Slots{
		byID:  map[string]types.Slot{},
		calls: map[Op]int{},
		now:   time.Now,
	}
}

// FailWith installs fn as the failure hook. Pass nil to clear it.
func (s *Slots) FailWith(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

// Calls returns how many times op was invoked, failed calls included.
func (s *Slots) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (s *Slots) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *Slots) check(op Op, sectionID, key string) error {
	s.calls[op]++
	if s.fail == nil {
		return nil
	}
	return s.fail(op, sectionID, key)
}

// ListSlots returns the slots of a section ordered by key.
func (s *Slots) ListSlots(_ context.Context, sectionID string) ([]types.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpList, sectionID, ""); err != nil {
		return nil, err
	}

	out := []types.Slot{}
	for _, sl := range s.byID {
		if sl.SectionID == sectionID {
			sl.Metadata = sl.Metadata.Clone()
			out = append(out, sl)
		}
	}
	slices.SortFunc(out, func(a, b types.Slot) int {
		switch {
		case a.SlotKey < b.SlotKey:
			return -1
		case a.SlotKey > b.SlotKey:
			return 1
		}
		return 0
	})
	return out, nil
}

// UpsertSlot creates or replaces the slot at (SectionID, SlotKey).
func (s *Slots) UpsertSlot(_ context.Context, slot types.Slot) (types.Slot, error) {
	if err := slot.Validate(); err != nil {
		return types.Slot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpUpsert, slot.SectionID, slot.SlotKey); err != nil {
		return types.Slot{}, err
	}

	slot.ID = ""
	for id, sl := range s.byID {
		if sl.SectionID == slot.SectionID && sl.SlotKey == slot.SlotKey {
			slot.ID = id
			break
		}
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Kind == "" {
		slot.Kind = types.KindFromURL(slot.URL)
	}
	slot.Metadata = slot.Metadata.Clone()
	slot.UpdatedAt = s.now().UTC()
	s.byID[slot.ID] = slot

	out := slot
	out.Metadata = slot.Metadata.Clone()
	return out, nil
}

// DeleteSlot removes a slot by ID.
func (s *Slots) DeleteSlot(_ context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.byID[id]
	if err := s.check(OpDelete, sl.SectionID, sl.SlotKey); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: slot %s", types.ErrNotFound, id)
	}
	delete(s.byID, id)
	return nil
}

// Drafts is an in-memory DraftStore.
type Drafts struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ types.DraftStore = (*Drafts)(nil)

// NewDrafts returns an empty draft store.
func NewDrafts() *Drafts {
	return &Drafts{data: map[string]string{}}
}

func (d *Drafts) Get(_ context.Context, key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.data[key]
	return v, ok, nil
}

func (d *Drafts) Set(_ context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[key] = value
	return nil
}

// UploadFailFunc decides whether an upload into folder fails.
type UploadFailFunc func(file types.File, folder string) error

// Assets is an in-memory AssetStore. URLs have the form
// memory://<folder>/<asset id><ext>.
type Assets struct {
	mu      sync.Mutex
	uploads []string
	fail    UploadFailFunc

	// Width and Height are reported for every upload.
	Width, Height int
}

var _ types.AssetStore = (*Assets)(nil)

// NewAssets returns an asset store reporting 1x1 assets.
func NewAssets() *Assets {
	return &Assets{Width: 1, Height: 1}
}

// FailWith installs fn as the failure hook. Pass nil to clear it.
func (a *Assets) FailWith(fn UploadFailFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail = fn
}

// Uploads returns the folders of every accepted upload, in call order.
func (a *Assets) Uploads() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.uploads)
}

func (a *Assets) Upload(ctx context.Context, file types.File, folder string) (types.Asset, error) {
	if err := ctx.Err(); err != nil {
		return types.Asset{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		if err := a.fail(file, folder); err != nil {
			return types.Asset{}, err
		}
	}
	id := uuid.NewString()
	a.uploads = append(a.uploads, folder)
	return types.Asset{
		URL:     "memory://" + folder + "/" + id + file.Ext(),
		Width:   a.Width,
		Height:  a.Height,
		AssetID: id,
	}, nil
}
