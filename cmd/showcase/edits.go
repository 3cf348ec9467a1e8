package main

import (
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// editFlags binds the operator-edited fields of an upload.
type editFlags struct {
	edits  types.Edits
	custom map[string]string
}

func (e *editFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&e.edits.Alt, "alt", "", "alt text")
	fs.StringVar(&e.edits.Title, "title", "", "title")
	fs.StringVar(&e.edits.Description, "description", "", "description")

	fs.StringVar(&e.edits.Hero.Heading, "heading", "", "hero heading")
	fs.StringVar(&e.edits.Hero.Subheading, "subheading", "", "hero subheading")
	fs.StringVar(&e.edits.Hero.CTAText, "cta-text", "", "hero call-to-action text")
	fs.StringVar(&e.edits.Hero.CTALink, "cta-link", "", "hero call-to-action link")

	fs.StringVar(&e.edits.Product.Name, "product-name", "", "product name")
	fs.StringVar(&e.edits.Product.Price, "price", "", "product price")
	fs.StringVar(&e.edits.Product.SKU, "sku", "", "product SKU")
	fs.StringVar(&e.edits.Product.Link, "product-link", "", "product link")

	fs.StringToStringVar(&e.custom, "custom", nil, "custom field values of a user-created section (field-id=value,...)")
}

func (e *editFlags) value() types.Edits {
	out := e.edits
	if len(e.custom) > 0 {
		out.Custom = e.custom
	}
	return out
}

// jewelryFlags binds the shared jewelry attribute bundle.
type jewelryFlags struct {
	attrs types.SharedAttributes
}

func (j *jewelryFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&j.attrs.JewelryType, "jewelry-type", "", "jewelry type (ring, earring, ...)")
	fs.StringVar(&j.attrs.Category, "category", "", "jewelry category")
	fs.StringVar(&j.attrs.Subtype, "subtype", "", "attribute subtype: diamond, gold or polki")

	fs.StringVar(&j.attrs.Diamond.Carat, "carat", "", "diamond carat")
	fs.StringVar(&j.attrs.Diamond.Clarity, "clarity", "", "diamond clarity")
	fs.StringVar(&j.attrs.Diamond.Color, "diamond-color", "", "diamond color")
	fs.StringVar(&j.attrs.Diamond.Cut, "cut", "", "diamond cut")

	fs.StringVar(&j.attrs.Gold.Purity, "purity", "", "gold purity")
	fs.StringVar(&j.attrs.Gold.Weight, "gold-weight", "", "gold weight")
	fs.StringVar(&j.attrs.Gold.Color, "gold-color", "", "gold color")

	fs.StringVar(&j.attrs.Polki.Weight, "polki-weight", "", "polki weight")
	fs.StringVar(&j.attrs.Polki.Setting, "setting", "", "polki setting")
}

// shared returns the bundle carrying edits.
func (j *jewelryFlags) shared(edits types.Edits) types.SharedAttributes {
	out := j.attrs
	out.Edits = edits
	return out
}
