package types

// Custom field types.
const (
	FieldTypeText     = "text"
	FieldTypeDropdown = "dropdown"
)

// validFieldTypes is the set of recognized custom field types.
var validFieldTypes = map[string]bool{
	FieldTypeText:     true,
	FieldTypeDropdown: true,
}

// IsValidFieldType reports whether t is a recognized custom field type.
func IsValidFieldType(t string) bool {
	return validFieldTypes[t]
}

// DefaultFieldLabel returns the label given to a newly added field of type t.
func DefaultFieldLabel(t string) string {
	switch t {
	case FieldTypeDropdown:
		return "New Dropdown"
	default:
		return "New Text Field"
	}
}

// DefaultFieldOptions returns the initial option list for type t. Text fields
// have none.
func DefaultFieldOptions(t string) []string {
	if t == FieldTypeDropdown {
		return []string{"Option 1", "Option 2"}
	}
	return nil
}

// CustomFieldDefinition is an operator-defined metadata field of a
// user-created section. Its position in the section's list is meaningful.
type CustomFieldDefinition struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// FieldPatch carries a partial update of a field definition. Nil members are
// left unchanged.
type FieldPatch struct {
	Label   *string  `json:"label,omitempty"`
	Type    *string  `json:"type,omitempty"`
	Options []string `json:"options,omitempty"`
}

// FieldRef addresses one custom field value of one slot.
type FieldRef struct {
	SectionID string
	SlotKey   string
	FieldID   string
}

// String renders the reference in the form used as a draft snapshot key.
func (r FieldRef) String() string {
	return r.SectionID + "/" + r.SlotKey + "/" + r.FieldID
}

// Visible applies the visibility inference rule. Without an explicit record
// a field is visible iff it holds a non-empty value; an explicit record
// always wins.
func Visible(value string, explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	return value != ""
}
