// Package distribute fans one uploaded asset out to several sections. Each
// target is handled independently: its own key allocation against freshly
// read keys, its own upload and its own write.
package distribute

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/showcase/internal/ingest"
	"github.com/mesh-intelligence/showcase/internal/slotkey"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Keys lists the existing slot keys of a section. *records.Store implements
// it.
type Keys interface {
	Keys(ctx context.Context, sectionID string) ([]string, error)
}

// Sections resolves section definitions. *registry.Registry implements it.
type Sections interface {
	Section(id string) (types.Section, bool)
}

// Ingester ingests one request. *ingest.Pipeline implements it.
type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (types.Slot, error)
}

// Job is one distribution: a file, the target sections and the attributes
// shared by every target.
type Job struct {
	File    types.File
	Targets []string
	Shared  types.SharedAttributes
}

// Status is the outcome of one target.
type Status string

const (
	Success Status = "success"
	Failed  Status = "failed"
)

// Result reports one target.
type Result struct {
	SectionID string
	SlotKey   string
	Status    Status
	Slot      types.Slot
	Err       error
}

// FanOut drives the ingestion pipeline once per target.
type FanOut struct {
	keys     Keys
	sections Sections
	ingester Ingester
	logger   *zap.Logger
}

// New returns a FanOut. A nil logger discards output.
func New(keys Keys, sections Sections, ingester Ingester, logger *zap.Logger) *FanOut {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FanOut{keys: keys, sections: sections, ingester: ingester, logger: logger}
}

// Distribute ingests job.File into the next free key of every target.
// Targets run concurrently and never abort each other; the returned results
// follow the order of job.Targets with duplicates removed.
//
// Only sections that grow and carry jewelry attributes can take a target.
// Any other section fails on its own, with ErrInvalidID for fixed keys or
// ErrNotJewelry, and is never written.
//
// Returns ErrNoTargets for an empty target list and ErrInvalidSubtype when
// the shared attributes select no sub-bundle. Neither starts any work.
func (f *FanOut) Distribute(ctx context.Context, job Job) ([]Result, error) {
	targets := dedupe(job.Targets)
	if len(targets) == 0 {
		return nil, types.ErrNoTargets
	}
	jewelry, err := job.Shared.Variant()
	if err != nil {
		return nil, err
	}
	edits := job.Shared.Edits
	edits.Jewelry = jewelry

	results := make([]Result, len(targets))
	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			results[i] = f.one(ctx, target, job.File, edits)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Status == Failed {
			failed++
		}
	}
	f.logger.Info("distribution finished",
		zap.String("file", job.File.Name),
		zap.Strings("targets", targets),
		zap.Int("failed", failed))
	return results, nil
}

func (f *FanOut) one(ctx context.Context, sectionID string, file types.File, edits types.Edits) Result {
	res := Result{SectionID: sectionID, Status: Failed}

	sec, ok := f.sections.Section(sectionID)
	if !ok {
		res.Err = fmt.Errorf("%w: %s", types.ErrSectionNotFound, sectionID)
		return res
	}
	if !sec.AllowAdd {
		res.Err = fmt.Errorf("%w: %s has fixed keys", types.ErrInvalidID, sec.ID)
		return res
	}
	if !sec.HasJewelryFields {
		res.Err = fmt.Errorf("%w: %s", types.ErrNotJewelry, sec.ID)
		return res
	}
	existing, err := f.keys.Keys(ctx, sec.ID)
	if err != nil {
		res.Err = err
		return res
	}
	res.SlotKey = slotkey.NextKeys(existing, sec.KeyPrefix, 1)[0]

	slot, err := f.ingester.Ingest(ctx, ingest.Request{
		SectionID: sec.ID,
		SlotKey:   res.SlotKey,
		File:      file,
		Edits:     edits,
	})
	if err != nil {
		f.logger.Warn("distribution target failed",
			zap.String("section", sec.ID), zap.String("key", res.SlotKey), zap.Error(err))
		res.Err = err
		return res
	}
	res.Status = Success
	res.Slot = slot
	return res
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
