package types

import "time"

// Slot is one addressable content item within a section. Identity is the
// pair (SectionID, SlotKey); ID is assigned by the persistence layer.
type Slot struct {
	ID          string    `json:"id"`
	SectionID   string    `json:"section"`
	SlotKey     string    `json:"image_key"`
	URL         string    `json:"url"`
	Kind        AssetKind `json:"kind"`
	Alt         string    `json:"alt"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Metadata    Metadata  `json:"metadata"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Content is the exchangeable payload of a slot: everything except its
// identity and timestamps.
type Content struct {
	URL         string
	Kind        AssetKind
	Alt         string
	Title       string
	Description string
	Metadata    Metadata
}

// Content returns a copy of the slot's payload.
func (s Slot) Content() Content {
	return Content{
		URL:         s.URL,
		Kind:        s.Kind,
		Alt:         s.Alt,
		Title:       s.Title,
		Description: s.Description,
		Metadata:    s.Metadata.Clone(),
	}
}

// WithContent returns a copy of the slot carrying c in place of its own
// payload. Identity fields are kept.
func (s Slot) WithContent(c Content) Slot {
	s.URL = c.URL
	s.Kind = c.Kind
	s.Alt = c.Alt
	s.Title = c.Title
	s.Description = c.Description
	s.Metadata = c.Metadata.Clone()
	return s
}

// Validate checks the identity fields required by every persistence
// backend.
func (s Slot) Validate() error {
	if s.SectionID == "" || s.SlotKey == "" {
		return ErrInvalidID
	}
	return nil
}
