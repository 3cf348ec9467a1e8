package registry

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// checkRef verifies that ref names a defined field of a user-created section.
func checkRef(st *state, ref types.FieldRef) error {
	if err := customSection(st, ref.SectionID); err != nil {
		return err
	}
	if ref.SlotKey == "" {
		return types.ErrInvalidID
	}
	if fieldIndex(st.fields[ref.SectionID], ref.FieldID) < 0 {
		return fmt.Errorf("%w: %s", types.ErrFieldNotFound, ref)
	}
	return nil
}

// SetFieldValue records the value of one custom field for one slot. An empty
// value clears it.
func (r *Registry) SetFieldValue(ctx context.Context, ref types.FieldRef, value string) error {
	return r.mutate(ctx, func(st *state) error {
		if err := checkRef(st, ref); err != nil {
			return err
		}
		if value == "" {
			delete(st.values, ref.String())
		} else {
			st.values[ref.String()] = value
		}
		return nil
	})
}

// SetFieldVisibility records an explicit visibility for one field value.
// From then on it overrides the inferred visibility.
func (r *Registry) SetFieldVisibility(ctx context.Context, ref types.FieldRef, visible bool) error {
	return r.mutate(ctx, func(st *state) error {
		if err := checkRef(st, ref); err != nil {
			return err
		}
		st.visibility[ref.String()] = visible
		return nil
	})
}

// FieldValue returns the stored value, or "".
func (r *Registry) FieldValue(ref types.FieldRef) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.values[ref.String()]
}

// FieldVisible reports whether a field value is shown. Without an explicit
// record a field is visible iff it holds a non-empty value.
func (r *Registry) FieldVisible(ref types.FieldRef) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var explicit *bool
	if v, ok := r.state.visibility[ref.String()]; ok {
		explicit = &v
	}
	return types.Visible(r.state.values[ref.String()], explicit)
}

// ResolveCustomValues resolves the section's current field definitions for
// one slot. An edit wins over the stored value; fields whose resolved value
// is empty are left out. Values of removed fields are never returned.
func (r *Registry) ResolveCustomValues(sectionID, slotKey string, edits map[string]string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]string{}
	for _, d := range r.state.fields[sectionID] {
		ref := types.FieldRef{SectionID: sectionID, SlotKey: slotKey, FieldID: d.ID}
		v, ok := edits[d.ID]
		if !ok {
			v = r.state.values[ref.String()]
		}
		if v != "" {
			out[d.ID] = v
		}
	}
	return out
}
