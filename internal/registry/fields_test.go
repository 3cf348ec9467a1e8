package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func fieldIDs(defs []types.CustomFieldDefinition) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}

func TestAddField(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	sec, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)

	text, err := reg.AddField(ctx, sec.ID, types.FieldTypeText)
	require.NoError(t, err)
	assert.Equal(t, "New Text Field", text.Label)
	assert.Equal(t, "new-text-field-1740830400000", text.ID)
	assert.Empty(t, text.Options)

	// Same label and timestamp: the ID is bumped until unique.
	text2, err := reg.AddField(ctx, sec.ID, types.FieldTypeText)
	require.NoError(t, err)
	assert.Equal(t, "new-text-field-1740830400001", text2.ID)

	dd, err := reg.AddField(ctx, sec.ID, types.FieldTypeDropdown)
	require.NoError(t, err)
	assert.Equal(t, "New Dropdown", dd.Label)
	assert.Equal(t, []string{"Option 1", "Option 2"}, dd.Options)

	assert.Equal(t, []string{text.ID, text2.ID, dd.ID}, fieldIDs(reg.ListFields(sec.ID)))
}

func TestAddFieldErrors(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	sec, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)

	_, err = reg.AddField(ctx, sec.ID, "checkbox")
	assert.ErrorIs(t, err, types.ErrInvalidFieldType)

	_, err = reg.AddField(ctx, "hero", types.FieldTypeText)
	assert.ErrorIs(t, err, types.ErrSectionNotFound)

	_, err = reg.AddField(ctx, "missing", types.FieldTypeText)
	assert.ErrorIs(t, err, types.ErrSectionNotFound)
}

func TestUpdateField(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	sec, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)
	f, err := reg.AddField(ctx, sec.ID, types.FieldTypeText)
	require.NoError(t, err)

	label := "Metal"
	dropdown := types.FieldTypeDropdown
	got, err := reg.UpdateField(ctx, sec.ID, f.ID, types.FieldPatch{Label: &label, Type: &dropdown})
	require.NoError(t, err)
	assert.Equal(t, "Metal", got.Label)
	assert.Equal(t, types.FieldTypeDropdown, got.Type)
	assert.Equal(t, []string{"Option 1", "Option 2"}, got.Options)
	assert.Equal(t, f.ID, got.ID, "ID is stable across edits")

	got, err = reg.UpdateField(ctx, sec.ID, f.ID, types.FieldPatch{Options: []string{"Gold", "Silver"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gold", "Silver"}, got.Options)

	text := types.FieldTypeText
	got, err = reg.UpdateField(ctx, sec.ID, f.ID, types.FieldPatch{Type: &text})
	require.NoError(t, err)
	assert.Empty(t, got.Options)

	assert.Equal(t, []types.CustomFieldDefinition{got}, reg.ListFields(sec.ID))

	_, err = reg.UpdateField(ctx, sec.ID, "nope", types.FieldPatch{Label: &label})
	assert.ErrorIs(t, err, types.ErrFieldNotFound)

	bad := "radio"
	_, err = reg.UpdateField(ctx, sec.ID, f.ID, types.FieldPatch{Type: &bad})
	assert.ErrorIs(t, err, types.ErrInvalidFieldType)
}

func TestReorderFields(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []int
		wantErr  error
	}{
		{"same index is a no-op", 1, 1, []int{0, 1, 2, 3}, nil},
		{"move first to last", 0, 3, []int{1, 2, 3, 0}, nil},
		{"move last to first", 3, 0, []int{3, 0, 1, 2}, nil},
		{"move middle down", 1, 2, []int{0, 2, 1, 3}, nil},
		{"from out of range", 4, 0, []int{0, 1, 2, 3}, types.ErrInvalidIndex},
		{"negative to", 0, -1, []int{0, 1, 2, 3}, types.ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t)
			ctx := context.Background()
			sec, err := reg.CreateSection(ctx, "Bridal")
			require.NoError(t, err)

			var ids []string
			for range 4 {
				f, err := reg.AddField(ctx, sec.ID, types.FieldTypeText)
				require.NoError(t, err)
				ids = append(ids, f.ID)
			}

			err = reg.ReorderFields(ctx, sec.ID, tt.from, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			want := make([]string, len(tt.want))
			for i, idx := range tt.want {
				want[i] = ids[idx]
			}
			assert.Equal(t, want, fieldIDs(reg.ListFields(sec.ID)))
		})
	}
}

func TestRemoveFieldToleratesOrphanedValues(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()
	sec, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)
	f, err := reg.AddField(ctx, sec.ID, types.FieldTypeText)
	require.NoError(t, err)

	ref := types.FieldRef{SectionID: sec.ID, SlotKey: "slide-1", FieldID: f.ID}
	require.NoError(t, reg.SetFieldValue(ctx, ref, "kept"))
	require.NoError(t, reg.SetFieldVisibility(ctx, ref, true))

	require.NoError(t, reg.RemoveField(ctx, sec.ID, f.ID))
	assert.Empty(t, reg.ListFields(sec.ID))
	assert.Equal(t, "kept", reg.FieldValue(ref), "orphaned value stays in storage")
	assert.Empty(t, reg.ResolveCustomValues(sec.ID, "slide-1", nil))

	// Removing the last field still persists, and reloading with the orphan works.
	reloaded := New(store)
	require.NoError(t, reloaded.Load(ctx))
	assert.Empty(t, reloaded.ListFields(sec.ID))
	assert.Equal(t, "kept", reloaded.FieldValue(ref))

	assert.ErrorIs(t, reg.RemoveField(ctx, sec.ID, f.ID), types.ErrFieldNotFound)
}
