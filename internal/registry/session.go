package registry

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Session is the editor context of one operator: which section is currently
// selected. It replaces ambient "current section" state; pass it explicitly
// to operations that need it.
type Session struct {
	mu       sync.Mutex
	reg      *Registry
	selected string
}

// NewSession starts a session with the first built-in section selected.
func NewSession(reg *Registry) *Session {
	return &Session{reg: reg, selected: reg.FirstBuiltIn().ID}
}

// Selected returns the ID of the selected section.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select changes the selected section. Returns ErrSectionNotFound for IDs
// the registry does not know.
func (s *Session) Select(id string) error {
	if _, ok := s.reg.Section(id); !ok {
		return fmt.Errorf("%w: %s", types.ErrSectionNotFound, id)
	}
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	return nil
}

func (s *Session) fallback(deleted, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == deleted {
		s.selected = to
	}
}
