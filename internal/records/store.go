// Package records is the content record store: the single read/write path to
// slots, addressed by (section, slot key), over a types.PersistenceAPI.
package records

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/internal/slotkey"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Sections resolves section definitions. *registry.Registry implements it.
type Sections interface {
	Section(id string) (types.Section, bool)
}

// Store wraps a PersistenceAPI. Every failure of the underlying API is
// reported as ErrSave together with the section and key involved.
type Store struct {
	api      types.PersistenceAPI
	sections Sections
	logger   *zap.Logger
}

// New returns a Store. A nil logger discards output.
func New(api types.PersistenceAPI, sections Sections, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, sections: sections, logger: logger}
}

func (s *Store) section(id string) (types.Section, error) {
	sec, ok := s.sections.Section(id)
	if !ok {
		return types.Section{}, fmt.Errorf("%w: %s", types.ErrSectionNotFound, id)
	}
	return sec, nil
}

// List returns the slots of a section in display order. Order is derived
// from the numeric key suffixes on every call.
func (s *Store) List(ctx context.Context, sectionID string) ([]types.Slot, error) {
	sec, err := s.section(sectionID)
	if err != nil {
		return nil, err
	}
	slots, err := s.api.ListSlots(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", types.ErrSave, sectionID, err)
	}

	byKey := make(map[string]types.Slot, len(slots))
	keys := make([]string, 0, len(slots))
	for _, sl := range slots {
		byKey[sl.SlotKey] = sl
		keys = append(keys, sl.SlotKey)
	}
	ordered := make([]types.Slot, 0, len(slots))
	for _, k := range slotkey.Normalize(keys, sec.KeyPrefix) {
		ordered = append(ordered, byKey[k])
	}
	return ordered, nil
}

// Keys returns the keys of the existing slots of a section in display order.
func (s *Store) Keys(ctx context.Context, sectionID string) ([]string, error) {
	slots, err := s.List(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(slots))
	for i, sl := range slots {
		keys[i] = sl.SlotKey
	}
	return keys, nil
}

// Get returns the slot stored at (sectionID, key) and whether it exists.
func (s *Store) Get(ctx context.Context, sectionID, key string) (types.Slot, bool, error) {
	slots, err := s.api.ListSlots(ctx, sectionID)
	if err != nil {
		return types.Slot{}, false, fmt.Errorf("%w: reading %s/%s: %w", types.ErrSave, sectionID, key, err)
	}
	for _, sl := range slots {
		if sl.SlotKey == key {
			return sl, true, nil
		}
	}
	return types.Slot{}, false, nil
}

// Merge upserts slot over the stored one. Metadata is combined with
// Metadata.Merge, and a blank Alt, Title or Description keeps the stored
// text, so a re-upload without edits only replaces the asset.
func (s *Store) Merge(ctx context.Context, slot types.Slot) (types.Slot, error) {
	existing, ok, err := s.Get(ctx, slot.SectionID, slot.SlotKey)
	if err != nil {
		return types.Slot{}, err
	}
	if ok {
		slot.Metadata = existing.Metadata.Merge(slot.Metadata)
		slot.Alt = cmp.Or(slot.Alt, existing.Alt)
		slot.Title = cmp.Or(slot.Title, existing.Title)
		slot.Description = cmp.Or(slot.Description, existing.Description)
	}
	return s.Put(ctx, slot)
}

// Put upserts slot, replacing the stored payload entirely.
func (s *Store) Put(ctx context.Context, slot types.Slot) (types.Slot, error) {
	stored, err := s.api.UpsertSlot(ctx, slot)
	if err != nil {
		return types.Slot{}, fmt.Errorf("%w: writing %s/%s: %w", types.ErrSave, slot.SectionID, slot.SlotKey, err)
	}
	s.logger.Debug("slot saved",
		zap.String("section", stored.SectionID),
		zap.String("key", stored.SlotKey),
		zap.String("id", stored.ID))
	return stored, nil
}

// Delete removes the slot at (sectionID, key). Returns ErrNotFound if there
// is none.
func (s *Store) Delete(ctx context.Context, sectionID, key string) error {
	existing, ok, err := s.Get(ctx, sectionID, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", types.ErrNotFound, sectionID, key)
	}
	if err := s.api.DeleteSlot(ctx, existing.ID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("%w: %s/%s", types.ErrNotFound, sectionID, key)
		}
		return fmt.Errorf("%w: deleting %s/%s: %w", types.ErrSave, sectionID, key, err)
	}
	s.logger.Debug("slot deleted", zap.String("section", sectionID), zap.String("key", key))
	return nil
}
