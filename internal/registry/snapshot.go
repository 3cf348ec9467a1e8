package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Draft store keys. Each part of the registry is written under its own key
// so values can be looked up without decoding the section list.
const (
	KeySections   = "showcase/sections"
	KeyFields     = "showcase/fields"
	KeyValues     = "showcase/field-values"
	KeyVisibility = "showcase/field-visibility"
)

// state is the mutable part of the registry. Mutations operate on a clone
// and replace the live state only after the snapshot has been written.
type state struct {
	sections   []types.Section                          // user-created, creation order
	fields     map[string][]types.CustomFieldDefinition // by section ID
	values     map[string]string                        // by FieldRef.String()
	visibility map[string]bool                          // by FieldRef.String()
}

func newState() state {
	return state{
		sections:   []types.Section{},
		fields:     map[string][]types.CustomFieldDefinition{},
		values:     map[string]string{},
		visibility: map[string]bool{},
	}
}

func (s state) clone() state {
	out := state{
		sections:   slices.Clone(s.sections),
		fields:     make(map[string][]types.CustomFieldDefinition, len(s.fields)),
		values:     maps.Clone(s.values),
		visibility: maps.Clone(s.visibility),
	}
	for id, defs := range s.fields {
		cp := make([]types.CustomFieldDefinition, len(defs))
		for i, d := range defs {
			d.Options = slices.Clone(d.Options)
			cp[i] = d
		}
		out.fields[id] = cp
	}
	if out.values == nil {
		out.values = map[string]string{}
	}
	if out.visibility == nil {
		out.visibility = map[string]bool{}
	}
	return out
}

// part is one draft key together with its payload.
type part struct {
	key   string
	empty bool
	value any
}

func (s state) parts() []part {
	return []part{
		{KeySections, len(s.sections) == 0, s.sections},
		{KeyFields, len(s.fields) == 0, s.fields},
		{KeyValues, len(s.values) == 0, s.values},
		{KeyVisibility, len(s.visibility) == 0, s.visibility},
	}
}

// persist writes the parts of next that differ from prev. A key this
// registry has neither loaded nor written is unknown to it: an empty part is
// never written over a non-empty stored snapshot under such a key. Once a
// key is in sync, an empty part is a deliberate change and is written.
//
// The caller must hold r.mu.
func (r *Registry) persist(ctx context.Context, prev, next state) error {
	before := prev.parts()
	for i, p := range next.parts() {
		data, err := json.Marshal(p.value)
		if err != nil {
			return fmt.Errorf("%w: encoding draft %s: %w", types.ErrSave, p.key, err)
		}
		old, err := json.Marshal(before[i].value)
		if err == nil && bytes.Equal(data, old) {
			continue
		}

		if p.empty && !r.synced[p.key] {
			stored, ok, err := r.store.Get(ctx, p.key)
			if err != nil {
				return fmt.Errorf("%w: reading draft %s: %w", types.ErrSave, p.key, err)
			}
			if ok && !emptySnapshot(stored) {
				r.logger.Debug("kept non-empty draft snapshot", zap.String("key", p.key))
				continue
			}
		}
		if err := r.store.Set(ctx, p.key, string(data)); err != nil {
			return fmt.Errorf("%w: writing draft %s: %w", types.ErrSave, p.key, err)
		}
		r.synced[p.key] = true
	}
	return nil
}

// emptySnapshot reports whether a stored draft holds no entries.
func emptySnapshot(s string) bool {
	switch s {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

// load decodes the stored snapshot. Missing keys read as empty.
func (r *Registry) load(ctx context.Context) (state, error) {
	st := newState()
	targets := map[string]any{
		KeySections:   &st.sections,
		KeyFields:     &st.fields,
		KeyValues:     &st.values,
		KeyVisibility: &st.visibility,
	}
	for _, p := range st.parts() {
		raw, ok, err := r.store.Get(ctx, p.key)
		if err != nil {
			return state{}, fmt.Errorf("reading draft %s: %w", p.key, err)
		}
		if !ok || emptySnapshot(raw) {
			continue
		}
		if err := json.Unmarshal([]byte(raw), targets[p.key]); err != nil {
			return state{}, fmt.Errorf("%w: draft %s: %v", types.ErrInvalidData, p.key, err)
		}
	}

	// Built-ins always win an ID collision with a stored section.
	kept := st.sections[:0]
	for _, s := range st.sections {
		if isBuiltIn(s.ID) {
			r.logger.Warn("dropping stored section shadowing a built-in", zap.String("section", s.ID))
			continue
		}
		s.BuiltIn = false
		kept = append(kept, s)
	}
	st.sections = kept
	return st, nil
}
