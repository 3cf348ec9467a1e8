package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisible(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name     string
		value    string
		explicit *bool
		want     bool
	}{
		{name: "legacy value without record is visible", value: "gold", want: true},
		{name: "legacy empty value without record is hidden", value: "", want: false},
		{name: "explicit hidden wins over value", value: "gold", explicit: &no, want: false},
		{name: "explicit visible wins over empty value", value: "", explicit: &yes, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.value, tt.explicit))
		})
	}
}

func TestFieldDefaults(t *testing.T) {
	assert.True(t, IsValidFieldType(FieldTypeText))
	assert.True(t, IsValidFieldType(FieldTypeDropdown))
	assert.False(t, IsValidFieldType("number"))

	assert.Equal(t, "New Text Field", DefaultFieldLabel(FieldTypeText))
	assert.Equal(t, "New Dropdown", DefaultFieldLabel(FieldTypeDropdown))
	assert.Nil(t, DefaultFieldOptions(FieldTypeText))
	assert.Len(t, DefaultFieldOptions(FieldTypeDropdown), 2)
}

func TestFieldRefString(t *testing.T) {
	ref := FieldRef{SectionID: "festive-picks", SlotKey: "slide-2", FieldID: "finish-1"}
	assert.Equal(t, "festive-picks/slide-2/finish-1", ref.String())
}
