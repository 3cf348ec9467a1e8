// Package registry holds the catalog of sections and the custom field schema
// of user-created sections. Built-in sections are fixed at process start;
// user-created sections, their field definitions, and their per-slot field
// values and visibility are persisted through a types.DraftStore.
package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Registry is safe for concurrent use. Construct it once and inject it.
type Registry struct {
	mu      sync.RWMutex
	store   types.DraftStore
	logger  *zap.Logger
	now     func() time.Time
	builtIn []types.Section
	state   state

	// synced holds the draft keys whose stored value this registry has
	// loaded or written.
	synced map[string]bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New returns a registry holding only the built-in sections. Call Load to
// read user-created sections from the draft store.
func New(store types.DraftStore, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
		builtIn: types.BuiltInSections(),
		state:   newState(),
		synced:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory state with the snapshot in the draft store.
func (r *Registry) Load(ctx context.Context) error {
	st, err := r.load(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.state = st
	for _, p := range st.parts() {
		r.synced[p.key] = true
	}
	r.mu.Unlock()
	r.logger.Debug("registry loaded",
		zap.Int("custom_sections", len(st.sections)),
		zap.Int("field_values", len(st.values)))
	return nil
}

// mutate applies fn to a copy of the state, persists the copy and only then
// makes it live.
func (r *Registry) mutate(ctx context.Context, fn func(*state) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := r.persist(ctx, r.state, next); err != nil {
		return err
	}
	r.state = next
	return nil
}

// ListSections returns the built-in sections in declaration order followed
// by user-created sections in creation order.
func (r *Registry) ListSections() []types.Section {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Section, 0, len(r.builtIn)+len(r.state.sections))
	out = append(out, r.builtIn...)
	out = append(out, r.state.sections...)
	for i := range out {
		out[i].Keys = slices.Clone(out[i].Keys)
	}
	return out
}

// Section looks up a section by ID.
func (r *Registry) Section(id string) (types.Section, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sectionLocked(id)
}

func (r *Registry) sectionLocked(id string) (types.Section, bool) {
	for _, s := range r.builtIn {
		if s.ID == id {
			s.Keys = slices.Clone(s.Keys)
			return s, true
		}
	}
	for _, s := range r.state.sections {
		if s.ID == id {
			return s, true
		}
	}
	return types.Section{}, false
}

// FirstBuiltIn returns the fallback selection.
func (r *Registry) FirstBuiltIn() types.Section {
	return r.builtIn[0]
}

// CreateSection adds a user-created section named name. The ID is the slug
// of name. Returns ErrInvalidName if the slug is empty and
// ErrDuplicateSection if any section already has that ID.
func (r *Registry) CreateSection(ctx context.Context, name string) (types.Section, error) {
	sec, err := types.NewCustomSection(name, r.now())
	if err != nil {
		return types.Section{}, err
	}

	err = r.mutate(ctx, func(st *state) error {
		if isBuiltIn(sec.ID) || slices.ContainsFunc(st.sections, func(s types.Section) bool { return s.ID == sec.ID }) {
			return fmt.Errorf("%w: %s", types.ErrDuplicateSection, sec.ID)
		}
		st.sections = append(st.sections, sec)
		return nil
	})
	if err != nil {
		return types.Section{}, err
	}
	r.logger.Info("section created", zap.String("section", sec.ID))
	return sec, nil
}

// DeleteSection removes a user-created section together with its field
// definitions and every value and visibility entry recorded for it. Unknown
// and built-in IDs are ignored. If sess has the deleted section selected it
// falls back to the first built-in section.
func (r *Registry) DeleteSection(ctx context.Context, id string, sess *Session) error {
	removed := false
	err := r.mutate(ctx, func(st *state) error {
		i := slices.IndexFunc(st.sections, func(s types.Section) bool { return s.ID == id })
		if i < 0 {
			return nil
		}
		st.sections = slices.Delete(st.sections, i, i+1)
		delete(st.fields, id)
		prefix := id + "/"
		for k := range st.values {
			if strings.HasPrefix(k, prefix) {
				delete(st.values, k)
			}
		}
		for k := range st.visibility {
			if strings.HasPrefix(k, prefix) {
				delete(st.visibility, k)
			}
		}
		removed = true
		return nil
	})
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	if sess != nil {
		sess.fallback(id, r.FirstBuiltIn().ID)
	}
	r.logger.Info("section deleted", zap.String("section", id))
	return nil
}

func isBuiltIn(id string) bool {
	for _, s := range types.BuiltInSections() {
		if s.ID == id {
			return true
		}
	}
	return false
}
