package registry

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// ListFields returns the field definitions of a section in display order.
// Sections without custom fields yield an empty list.
func (r *Registry) ListFields(sectionID string) []types.CustomFieldDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := r.state.fields[sectionID]
	out := make([]types.CustomFieldDefinition, len(defs))
	for i, d := range defs {
		d.Options = slices.Clone(d.Options)
		out[i] = d
	}
	return out
}

// customSection returns ErrSectionNotFound unless id names a user-created
// section in st.
func customSection(st *state, id string) error {
	if !slices.ContainsFunc(st.sections, func(s types.Section) bool { return s.ID == id }) {
		return fmt.Errorf("%w: %s has no custom fields", types.ErrSectionNotFound, id)
	}
	return nil
}

func fieldIndex(defs []types.CustomFieldDefinition, fieldID string) int {
	return slices.IndexFunc(defs, func(d types.CustomFieldDefinition) bool { return d.ID == fieldID })
}

// AddField appends a field of type fieldType with the default label for that
// type. The ID is derived from the label and the creation time.
func (r *Registry) AddField(ctx context.Context, sectionID, fieldType string) (types.CustomFieldDefinition, error) {
	if !types.IsValidFieldType(fieldType) {
		return types.CustomFieldDefinition{}, fmt.Errorf("%w: %q", types.ErrInvalidFieldType, fieldType)
	}

	var def types.CustomFieldDefinition
	err := r.mutate(ctx, func(st *state) error {
		if err := customSection(st, sectionID); err != nil {
			return err
		}
		defs := st.fields[sectionID]
		label := types.DefaultFieldLabel(fieldType)
		stamp := r.now().UnixMilli()
		id := types.Slugify(label) + "-" + strconv.FormatInt(stamp, 10)
		for fieldIndex(defs, id) >= 0 {
			stamp++
			id = types.Slugify(label) + "-" + strconv.FormatInt(stamp, 10)
		}
		def = types.CustomFieldDefinition{
			ID:      id,
			Label:   label,
			Type:    fieldType,
			Options: types.DefaultFieldOptions(fieldType),
		}
		st.fields[sectionID] = append(defs, def)
		return nil
	})
	if err != nil {
		return types.CustomFieldDefinition{}, err
	}
	r.logger.Debug("field added", zap.String("section", sectionID), zap.String("field", def.ID))
	return def, nil
}

// UpdateField applies patch to a field definition and returns the result.
// Switching a field to dropdown seeds the default options when none are
// given; switching to text drops its options.
func (r *Registry) UpdateField(ctx context.Context, sectionID, fieldID string, patch types.FieldPatch) (types.CustomFieldDefinition, error) {
	if patch.Type != nil && !types.IsValidFieldType(*patch.Type) {
		return types.CustomFieldDefinition{}, fmt.Errorf("%w: %q", types.ErrInvalidFieldType, *patch.Type)
	}

	var def types.CustomFieldDefinition
	err := r.mutate(ctx, func(st *state) error {
		if err := customSection(st, sectionID); err != nil {
			return err
		}
		defs := st.fields[sectionID]
		i := fieldIndex(defs, fieldID)
		if i < 0 {
			return fmt.Errorf("%w: %s in %s", types.ErrFieldNotFound, fieldID, sectionID)
		}
		d := defs[i]
		if patch.Label != nil {
			d.Label = *patch.Label
		}
		if patch.Type != nil && *patch.Type != d.Type {
			d.Type = *patch.Type
			d.Options = types.DefaultFieldOptions(d.Type)
		}
		if patch.Options != nil && d.Type == types.FieldTypeDropdown {
			d.Options = slices.Clone(patch.Options)
		}
		defs[i] = d
		def = d
		return nil
	})
	if err != nil {
		return types.CustomFieldDefinition{}, err
	}
	return def, nil
}

// RemoveField deletes a field definition. Values and visibility entries that
// reference it are left in place and simply no longer resolve.
func (r *Registry) RemoveField(ctx context.Context, sectionID, fieldID string) error {
	return r.mutate(ctx, func(st *state) error {
		if err := customSection(st, sectionID); err != nil {
			return err
		}
		defs := st.fields[sectionID]
		i := fieldIndex(defs, fieldID)
		if i < 0 {
			return fmt.Errorf("%w: %s in %s", types.ErrFieldNotFound, fieldID, sectionID)
		}
		st.fields[sectionID] = slices.Delete(defs, i, i+1)
		return nil
	})
}

// ReorderFields moves the field at from to position to. Other fields keep
// their relative order. Equal indexes are a no-op.
func (r *Registry) ReorderFields(ctx context.Context, sectionID string, from, to int) error {
	if from == to {
		r.mu.RLock()
		defer r.mu.RUnlock()
		st := r.state
		return customSection(&st, sectionID)
	}
	return r.mutate(ctx, func(st *state) error {
		if err := customSection(st, sectionID); err != nil {
			return err
		}
		defs := st.fields[sectionID]
		if from < 0 || from >= len(defs) || to < 0 || to >= len(defs) {
			return fmt.Errorf("%w: move %d to %d of %d fields", types.ErrInvalidIndex, from, to, len(defs))
		}
		d := defs[from]
		defs = slices.Delete(defs, from, from+1)
		st.fields[sectionID] = slices.Insert(defs, to, d)
		return nil
	})
}
