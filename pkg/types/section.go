package types

import (
	"regexp"
	"strings"
	"time"
)

// Slot key prefixes used by the built-in sections.
const (
	PrefixSlide      = "slide"
	PrefixCollection = "collection"
	PrefixProduct    = "product"
)

// Defaults applied to sections created at runtime by an operator.
const (
	CustomSectionPrefix    = PrefixSlide
	CustomSectionSlotCount = 4
)

// Section is a named, schema-bearing bucket of content slots.
type Section struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name"`
	KeyPrefix        string    `json:"key_prefix"`
	DefaultSlotCount int       `json:"default_slot_count"`
	AllowAdd         bool      `json:"allow_add"`
	HasHeroFields    bool      `json:"has_hero_fields"`
	HasProductFields bool      `json:"has_product_fields"`
	HasJewelryFields bool      `json:"has_jewelry_fields"`
	Keys             []string  `json:"keys,omitempty"` // Fixed keys for non-addable sections.
	BuiltIn          bool      `json:"built_in"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserCreated reports whether the section was created at runtime and may
// carry custom fields.
func (s Section) UserCreated() bool {
	return !s.BuiltIn
}

// builtInSections is the fixed catalog declared at process start. Order is
// significant: ListSections returns built-ins in exactly this order and the
// first entry is the fallback selection.
var builtInSections = []Section{
	{ID: "hero", DisplayName: "Hero Slides", KeyPrefix: PrefixSlide, DefaultSlotCount: 12, AllowAdd: true, HasHeroFields: true},
	{ID: "collections", DisplayName: "Collections", KeyPrefix: PrefixCollection, DefaultSlotCount: 6, AllowAdd: true},
	{ID: "featured", DisplayName: "Featured Products", KeyPrefix: PrefixProduct, HasProductFields: true,
		Keys: []string{"featured-main", "featured-left", "featured-right"}},
	{ID: "products", DisplayName: "Products", KeyPrefix: PrefixProduct, DefaultSlotCount: 8, AllowAdd: true, HasProductFields: true},
	{ID: "rings", DisplayName: "Rings", KeyPrefix: PrefixProduct, DefaultSlotCount: 8, AllowAdd: true, HasProductFields: true, HasJewelryFields: true},
	{ID: "earrings", DisplayName: "Earrings", KeyPrefix: PrefixProduct, DefaultSlotCount: 8, AllowAdd: true, HasProductFields: true, HasJewelryFields: true},
	{ID: "necklaces", DisplayName: "Necklaces", KeyPrefix: PrefixProduct, DefaultSlotCount: 8, AllowAdd: true, HasProductFields: true, HasJewelryFields: true},
	{ID: "bracelets", DisplayName: "Bracelets", KeyPrefix: PrefixProduct, DefaultSlotCount: 8, AllowAdd: true, HasProductFields: true, HasJewelryFields: true},
}

// BuiltInSections returns a copy of the built-in catalog in declaration order.
func BuiltInSections() []Section {
	out := make([]Section, len(builtInSections))
	for i, s := range builtInSections {
		s.BuiltIn = true
		s.Keys = append([]string(nil), s.Keys...)
		out[i] = s
	}
	return out
}

// NewCustomSection builds a user-created section for the given display name.
// Returns ErrInvalidName if the name normalizes to an empty slug.
func NewCustomSection(name string, now time.Time) (Section, error) {
	id := Slugify(name)
	if id == "" {
		return Section{}, ErrInvalidName
	}
	return Section{
		ID:               id,
		DisplayName:      strings.TrimSpace(name),
		KeyPrefix:        CustomSectionPrefix,
		DefaultSlotCount: CustomSectionSlotCount,
		AllowAdd:         true,
		CreatedAt:        now.UTC(),
	}, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name, collapses every run of non-alphanumeric
// characters into a single hyphen, and trims leading and trailing hyphens.
// Example: "Festive   Picks!!" -> "festive-picks".
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
