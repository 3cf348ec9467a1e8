package types

import (
	"encoding/json"
	"maps"
)

// Metadata is the flat record stored with a slot. Its shape depends on the
// owning section's capability flags; it is always produced from the closed
// set of variants below and combined with Merge.
type Metadata map[string]any

// Common metadata keys present on every ingested slot.
const (
	MetaWidth   = "width"
	MetaHeight  = "height"
	MetaAssetID = "assetId"
)

// MetaCustomFields holds the resolved custom field values of a user-created
// section as a nested string map keyed by field ID.
const MetaCustomFields = "customFields"

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	maps.Copy(out, m)
	return out
}

// Merge returns a new record holding every key of m overlaid with every key
// of patch. Keys of m that patch does not mention are preserved, and so are
// keys patch sets to the empty string: an edit left blank is not an edit.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := m.Clone()
	for k, v := range patch {
		if s, ok := v.(string); ok && s == "" {
			if _, exists := out[k]; exists {
				continue
			}
		}
		out[k] = v
	}
	return out
}

// String returns the value of key as a string, or "" if absent or not a
// string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns the value of key as an int. Values that went through JSON
// decoding arrive as float64 or json.Number and are converted.
func (m Metadata) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// CustomValues returns the nested custom field map, tolerating both the
// in-memory and the JSON-decoded representation.
func (m Metadata) CustomValues() map[string]string {
	out := map[string]string{}
	switch v := m[MetaCustomFields].(type) {
	case map[string]string:
		maps.Copy(out, v)
	case map[string]any:
		for k, raw := range v {
			if s, ok := raw.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// VariantKind names one member of the closed set of metadata variants.
type VariantKind string

const (
	VariantCommon  VariantKind = "common"
	VariantHero    VariantKind = "hero"
	VariantProduct VariantKind = "product"
	VariantJewelry VariantKind = "jewelry"
	VariantCustom  VariantKind = "custom"
)

// Variant contributes a fixed group of keys to a slot's metadata record.
type Variant interface {
	Kind() VariantKind
	Fields() Metadata
}

// CommonFields are written for every ingested asset.
type CommonFields struct {
	Width   int
	Height  int
	AssetID string
}

func (CommonFields) Kind() VariantKind { return VariantCommon }

func (c CommonFields) Fields() Metadata {
	return Metadata{MetaWidth: c.Width, MetaHeight: c.Height, MetaAssetID: c.AssetID}
}

// HeroVariant carries the overlay copy of a hero slide.
type HeroVariant struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	CTAText    string `json:"cta_text"`
	CTALink    string `json:"cta_link"`
}

func (HeroVariant) Kind() VariantKind { return VariantHero }

func (h HeroVariant) Fields() Metadata {
	return Metadata{
		"heading":    h.Heading,
		"subheading": h.Subheading,
		"ctaText":    h.CTAText,
		"ctaLink":    h.CTALink,
	}
}

// ProductVariant carries merchandising data for a product tile.
type ProductVariant struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
	Link  string `json:"link"`
}

func (ProductVariant) Kind() VariantKind { return VariantProduct }

func (p ProductVariant) Fields() Metadata {
	return Metadata{
		"productName": p.Name,
		"price":       p.Price,
		"sku":         p.SKU,
		"productLink": p.Link,
	}
}

// JewelryVariant carries jewelry attributes. Only the sub-bundle selected by
// Subtype is written; the other two are never emitted.
type JewelryVariant struct {
	JewelryType string             `json:"jewelry_type"`
	Category    string             `json:"category"`
	Subtype     string             `json:"subtype"`
	Diamond     *DiamondAttributes `json:"diamond,omitempty"`
	Gold        *GoldAttributes    `json:"gold,omitempty"`
	Polki       *PolkiAttributes   `json:"polki,omitempty"`
}

func (JewelryVariant) Kind() VariantKind { return VariantJewelry }

func (j JewelryVariant) Fields() Metadata {
	m := Metadata{
		"jewelryType": j.JewelryType,
		"category":    j.Category,
		"subtype":     j.Subtype,
	}
	switch j.Subtype {
	case SubtypeDiamond:
		if j.Diamond != nil {
			maps.Copy(m, j.Diamond.fields())
		}
	case SubtypeGold:
		if j.Gold != nil {
			maps.Copy(m, j.Gold.fields())
		}
	case SubtypePolki:
		if j.Polki != nil {
			maps.Copy(m, j.Polki.fields())
		}
	}
	return m
}

// CustomVariant holds the resolved, non-empty custom field values of a
// user-created section.
type CustomVariant struct {
	Values map[string]string
}

func (CustomVariant) Kind() VariantKind { return VariantCustom }

func (c CustomVariant) Fields() Metadata {
	values := make(map[string]string, len(c.Values))
	for k, v := range c.Values {
		if v != "" {
			values[k] = v
		}
	}
	return Metadata{MetaCustomFields: values}
}

// Edits are the operator-edited fields submitted with an upload.
type Edits struct {
	Alt         string            `json:"alt"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Hero        HeroVariant       `json:"hero"`
	Product     ProductVariant    `json:"product"`
	Jewelry     JewelryVariant    `json:"jewelry"`
	Custom      map[string]string `json:"custom,omitempty"`
}

// VariantsFor selects the variants a section's capability flags admit.
// custom is consulted only for user-created sections and must already be
// resolved against the section's field definitions.
func VariantsFor(section Section, asset Asset, edits Edits, custom map[string]string) []Variant {
	variants := []Variant{CommonFields{Width: asset.Width, Height: asset.Height, AssetID: asset.AssetID}}
	if section.HasHeroFields {
		variants = append(variants, edits.Hero)
	}
	if section.HasProductFields {
		variants = append(variants, edits.Product)
	}
	if section.HasJewelryFields {
		variants = append(variants, edits.Jewelry)
	}
	if section.UserCreated() {
		variants = append(variants, CustomVariant{Values: custom})
	}
	return variants
}

// BuildMetadata folds variants into a single record, later variants winning
// on key collisions.
func BuildMetadata(variants ...Variant) Metadata {
	m := Metadata{}
	for _, v := range variants {
		maps.Copy(m, v.Fields())
	}
	return m
}
