// Package ingest validates operator uploads, hands them to the asset store
// and records the result in the content record store with the metadata shape
// of the target section.
package ingest

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Sections supplies section definitions and resolved custom field values.
// *registry.Registry implements it.
type Sections interface {
	Section(id string) (types.Section, bool)
	ResolveCustomValues(sectionID, slotKey string, edits map[string]string) map[string]string
}

// Writer merges a slot into the record store. *records.Store implements it.
type Writer interface {
	Merge(ctx context.Context, slot types.Slot) (types.Slot, error)
}

// Request is one upload into one slot.
type Request struct {
	SectionID string
	SlotKey   string
	File      types.File
	Edits     types.Edits
}

// Result is the outcome of one request of IngestMany.
type Result struct {
	SlotKey string
	Slot    types.Slot
	Err     error
}

// Pipeline runs uploads. It is safe for concurrent use.
type Pipeline struct {
	assets   types.AssetStore
	records  Writer
	sections Sections
	policy   *bluemonday.Policy
	logger   *zap.Logger

	busyMu sync.Mutex
	busy   map[string]int
}

// New returns a Pipeline. A nil logger discards output.
func New(assets types.AssetStore, records Writer, sections Sections, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		assets:   assets,
		records:  records,
		sections: sections,
		policy:   bluemonday.StrictPolicy(),
		logger:   logger,
		busy:     map[string]int{},
	}
}

// Ingest validates req.File, uploads it with the section ID as folder hint,
// and merges the resulting slot into the record store.
//
// Validation failures (ErrUnsupportedType, ErrFileTooLarge) are returned
// before the asset store is contacted. Asset store failures are wrapped in
// ErrUpload and record store failures in ErrSave; neither is retried.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (types.Slot, error) {
	kind, err := req.File.Validate()
	if err != nil {
		return types.Slot{}, err
	}
	sec, ok := p.sections.Section(req.SectionID)
	if !ok {
		return types.Slot{}, fmt.Errorf("%w: %s", types.ErrSectionNotFound, req.SectionID)
	}
	if req.SlotKey == "" {
		return types.Slot{}, fmt.Errorf("%w: empty slot key", types.ErrInvalidID)
	}

	done := p.markBusy(sec.ID, req.SlotKey)
	defer done()

	asset, err := p.assets.Upload(ctx, req.File, sec.ID)
	if err != nil {
		p.logger.Warn("upload rejected",
			zap.String("section", sec.ID),
			zap.String("key", req.SlotKey),
			zap.String("file", req.File.Name),
			zap.Error(err))
		return types.Slot{}, fmt.Errorf("%w: %s: %w", types.ErrUpload, req.File.Name, err)
	}

	edits := p.sanitize(req.Edits)
	var custom map[string]string
	if sec.UserCreated() {
		custom = p.sections.ResolveCustomValues(sec.ID, req.SlotKey, edits.Custom)
	}

	slot := types.Slot{
		SectionID:   sec.ID,
		SlotKey:     req.SlotKey,
		URL:         asset.URL,
		Kind:        kind,
		Alt:         edits.Alt,
		Title:       edits.Title,
		Description: edits.Description,
		Metadata:    types.BuildMetadata(types.VariantsFor(sec, asset, edits, custom)...),
	}
	stored, err := p.records.Merge(ctx, slot)
	if err != nil {
		return types.Slot{}, err
	}

	p.logger.Info("slot ingested",
		zap.String("section", stored.SectionID),
		zap.String("key", stored.SlotKey),
		zap.String("url", stored.URL),
		zap.String("kind", string(stored.Kind)))
	return stored, nil
}

// IngestMany runs every request concurrently. A failing request does not
// cancel the others; results are returned in request order.
func (p *Pipeline) IngestMany(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			slot, err := p.Ingest(ctx, req)
			results[i] = Result{SlotKey: req.SlotKey, Slot: slot, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Busy reports whether an upload into (sectionID, slotKey) is in flight.
func (p *Pipeline) Busy(sectionID, slotKey string) bool {
	p.busyMu.Lock()
	defer p.busyMu.Unlock()
	return p.busy[busyKey(sectionID, slotKey)] > 0
}

func (p *Pipeline) markBusy(sectionID, slotKey string) func() {
	k := busyKey(sectionID, slotKey)
	p.busyMu.Lock()
	p.busy[k]++
	p.busyMu.Unlock()
	return func() {
		p.busyMu.Lock()
		defer p.busyMu.Unlock()
		if p.busy[k]--; p.busy[k] <= 0 {
			delete(p.busy, k)
		}
	}
}

func busyKey(sectionID, slotKey string) string {
	return sectionID + "/" + slotKey
}

// clean strips all markup. The record holds plain text, so entities the
// policy escapes are decoded again, and the decoded text is sanitized once
// more until nothing changes: entity-encoded markup never comes back live.
func (p *Pipeline) clean(s string) string {
	for range maxCleanPasses {
		out := html.UnescapeString(p.policy.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	return p.policy.Sanitize(s)
}

const maxCleanPasses = 4

func (p *Pipeline) sanitize(e types.Edits) types.Edits {
	e.Alt = p.clean(e.Alt)
	e.Title = p.clean(e.Title)
	e.Description = p.clean(e.Description)

	e.Hero.Heading = p.clean(e.Hero.Heading)
	e.Hero.Subheading = p.clean(e.Hero.Subheading)
	e.Hero.CTAText = p.clean(e.Hero.CTAText)
	e.Hero.CTALink = p.clean(e.Hero.CTALink)

	e.Product.Name = p.clean(e.Product.Name)
	e.Product.Price = p.clean(e.Product.Price)
	e.Product.SKU = p.clean(e.Product.SKU)
	e.Product.Link = p.clean(e.Product.Link)

	e.Jewelry.JewelryType = p.clean(e.Jewelry.JewelryType)
	e.Jewelry.Category = p.clean(e.Jewelry.Category)
	if d := e.Jewelry.Diamond; d != nil {
		e.Jewelry.Diamond = &types.DiamondAttributes{
			Carat: p.clean(d.Carat), Clarity: p.clean(d.Clarity), Color: p.clean(d.Color), Cut: p.clean(d.Cut),
		}
	}
	if g := e.Jewelry.Gold; g != nil {
		e.Jewelry.Gold = &types.GoldAttributes{Purity: p.clean(g.Purity), Weight: p.clean(g.Weight), Color: p.clean(g.Color)}
	}
	if pk := e.Jewelry.Polki; pk != nil {
		e.Jewelry.Polki = &types.PolkiAttributes{Weight: p.clean(pk.Weight), Setting: p.clean(pk.Setting)}
	}

	if e.Custom != nil {
		custom := make(map[string]string, len(e.Custom))
		for k, v := range e.Custom {
			custom[k] = p.clean(v)
		}
		e.Custom = custom
	}
	return e
}
