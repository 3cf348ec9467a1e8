package types

import "fmt"

// Jewelry attribute subtypes. Exactly one is selected per distribution.
const (
	SubtypeDiamond = "diamond"
	SubtypeGold    = "gold"
	SubtypePolki   = "polki"
)

// DiamondAttributes describe the stones of a diamond piece.
type DiamondAttributes struct {
	Carat   string `json:"carat"`
	Clarity string `json:"clarity"`
	Color   string `json:"color"`
	Cut     string `json:"cut"`
}

func (d DiamondAttributes) fields() Metadata {
	return Metadata{
		"diamondCarat":   d.Carat,
		"diamondClarity": d.Clarity,
		"diamondColor":   d.Color,
		"diamondCut":     d.Cut,
	}
}

// GoldAttributes describe the metal of a plain gold piece.
type GoldAttributes struct {
	Purity string `json:"purity"`
	Weight string `json:"weight"`
	Color  string `json:"color"`
}

func (g GoldAttributes) fields() Metadata {
	return Metadata{
		"goldPurity": g.Purity,
		"goldWeight": g.Weight,
		"goldColor":  g.Color,
	}
}

// PolkiAttributes describe uncut polki stone work.
type PolkiAttributes struct {
	Weight  string `json:"weight"`
	Setting string `json:"setting"`
}

func (p PolkiAttributes) fields() Metadata {
	return Metadata{
		"polkiWeight":  p.Weight,
		"polkiSetting": p.Setting,
	}
}

// SharedAttributes is the attribute bundle applied to every target of a
// distribution job.
type SharedAttributes struct {
	JewelryType string            `json:"jewelry_type"`
	Category    string            `json:"category"`
	Subtype     string            `json:"subtype"`
	Diamond     DiamondAttributes `json:"diamond"`
	Gold        GoldAttributes    `json:"gold"`
	Polki       PolkiAttributes   `json:"polki"`
	Edits       Edits             `json:"edits"`
}

// Variant returns the jewelry variant carrying only the sub-bundle selected
// by Subtype. Returns ErrInvalidSubtype for any other subtype.
func (a SharedAttributes) Variant() (JewelryVariant, error) {
	v := JewelryVariant{JewelryType: a.JewelryType, Category: a.Category, Subtype: a.Subtype}
	switch a.Subtype {
	case SubtypeDiamond:
		d := a.Diamond
		v.Diamond = &d
	case SubtypeGold:
		g := a.Gold
		v.Gold = &g
	case SubtypePolki:
		p := a.Polki
		v.Polki = &p
	default:
		return JewelryVariant{}, fmt.Errorf("%w: %q", ErrInvalidSubtype, a.Subtype)
	}
	return v, nil
}
