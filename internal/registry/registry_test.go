package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// memStore is an in-memory DraftStore.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestRegistry(t *testing.T) (*Registry, *memStore) {
	t.Helper()
	store := newMemStore()
	reg := New(store, WithClock(fixedClock()))
	require.NoError(t, reg.Load(context.Background()))
	return reg, store
}

func sectionIDs(secs []types.Section) []string {
	ids := make([]string, len(secs))
	for i, s := range secs {
		ids[i] = s.ID
	}
	return ids
}

func TestListSectionsOrder(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.CreateSection(ctx, "Winter Sale")
	require.NoError(t, err)
	_, err = reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"hero", "collections", "featured", "products", "rings", "earrings", "necklaces", "bracelets",
		"winter-sale", "bridal",
	}, sectionIDs(reg.ListSections()))
}

func TestCreateSection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr error
	}{
		{"collapses runs and trims", "Festive   Picks!!", "festive-picks", nil},
		{"leading symbols", "  --New Arrivals", "new-arrivals", nil},
		{"empty slug", "!!!", "", types.ErrInvalidName},
		{"blank", "   ", "", types.ErrInvalidName},
		{"collides with built-in", "HERO", "", types.ErrDuplicateSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t)
			sec, err := reg.CreateSection(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, sec.ID)
			assert.False(t, sec.BuiltIn)
			assert.Equal(t, types.CustomSectionPrefix, sec.KeyPrefix)
			assert.Equal(t, types.CustomSectionSlotCount, sec.DefaultSlotCount)
			assert.True(t, sec.AllowAdd)
		})
	}
}

func TestCreateSectionTwiceIsDuplicate(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	sec, err := reg.CreateSection(ctx, "Festive   Picks!!")
	require.NoError(t, err)
	assert.Equal(t, "festive-picks", sec.ID)

	_, err = reg.CreateSection(ctx, "festive picks")
	assert.ErrorIs(t, err, types.ErrDuplicateSection)
	assert.Len(t, reg.ListSections(), len(types.BuiltInSections())+1)
}

func TestDeleteSectionCascades(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	keep, err := reg.CreateSection(ctx, "Keep")
	require.NoError(t, err)
	gone, err := reg.CreateSection(ctx, "Gone")
	require.NoError(t, err)

	keepField, err := reg.AddField(ctx, keep.ID, types.FieldTypeText)
	require.NoError(t, err)
	goneField, err := reg.AddField(ctx, gone.ID, types.FieldTypeText)
	require.NoError(t, err)

	keepRef := types.FieldRef{SectionID: keep.ID, SlotKey: "slide-1", FieldID: keepField.ID}
	goneRef := types.FieldRef{SectionID: gone.ID, SlotKey: "slide-1", FieldID: goneField.ID}
	require.NoError(t, reg.SetFieldValue(ctx, keepRef, "a"))
	require.NoError(t, reg.SetFieldValue(ctx, goneRef, "b"))
	require.NoError(t, reg.SetFieldVisibility(ctx, goneRef, false))

	sess := NewSession(reg)
	require.NoError(t, sess.Select(gone.ID))

	require.NoError(t, reg.DeleteSection(ctx, gone.ID, sess))

	_, ok := reg.Section(gone.ID)
	assert.False(t, ok)
	assert.Empty(t, reg.ListFields(gone.ID))
	assert.Empty(t, reg.FieldValue(goneRef))
	assert.Equal(t, "a", reg.FieldValue(keepRef))
	assert.Equal(t, "hero", sess.Selected(), "selection falls back to the first built-in")
}

func TestDeleteSectionIgnoresBuiltInAndUnknown(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	sess := NewSession(reg)
	require.NoError(t, sess.Select("rings"))

	require.NoError(t, reg.DeleteSection(ctx, "rings", sess))
	require.NoError(t, reg.DeleteSection(ctx, "no-such-section", sess))

	_, ok := reg.Section("rings")
	assert.True(t, ok)
	assert.Equal(t, "rings", sess.Selected())
}

func TestSessionSelectUnknown(t *testing.T) {
	reg, _ := newTestRegistry(t)
	sess := NewSession(reg)
	assert.ErrorIs(t, sess.Select("nope"), types.ErrSectionNotFound)
	assert.Equal(t, "hero", sess.Selected())
}

func TestPersistAndReload(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	reg := New(store, WithClock(fixedClock()))
	require.NoError(t, reg.Load(ctx))
	sec, err := reg.CreateSection(ctx, "Festive Picks")
	require.NoError(t, err)
	field, err := reg.AddField(ctx, sec.ID, types.FieldTypeDropdown)
	require.NoError(t, err)
	ref := types.FieldRef{SectionID: sec.ID, SlotKey: "slide-2", FieldID: field.ID}
	require.NoError(t, reg.SetFieldValue(ctx, ref, "Option 2"))
	require.NoError(t, reg.SetFieldVisibility(ctx, ref, false))

	reloaded := New(store)
	require.NoError(t, reloaded.Load(ctx))

	got, ok := reloaded.Section(sec.ID)
	require.True(t, ok)
	assert.Equal(t, sec.DisplayName, got.DisplayName)
	assert.True(t, got.CreatedAt.Equal(sec.CreatedAt))
	assert.Equal(t, []types.CustomFieldDefinition{field}, reloaded.ListFields(sec.ID))
	assert.Equal(t, "Option 2", reloaded.FieldValue(ref))
	assert.False(t, reloaded.FieldVisible(ref))
}

func TestEmptySnapshotNeverOverwritesStored(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	stored := `[{"id":"saved","display_name":"Saved","key_prefix":"slide","default_slot_count":4,"allow_add":true}]`
	store.data[KeySections] = stored
	store.data[KeyFields] = `{"saved":[{"id":"f-1","label":"Tone","type":"text"}]}`
	store.data[KeyValues] = `{"saved/slide-1/f-1":"Rose"}`
	store.data[KeyVisibility] = `{"saved/slide-1/f-1":false}`

	// A registry that never loaded the snapshot holds empty lists.
	reg := New(store)
	require.NoError(t, reg.DeleteSection(ctx, "anything", nil))
	_, err := reg.CreateSection(ctx, "!!!")
	require.ErrorIs(t, err, types.ErrInvalidName)

	assert.Equal(t, stored, store.data[KeySections])
	assert.Contains(t, store.data[KeyFields], "f-1")
	assert.Equal(t, `{"saved/slide-1/f-1":"Rose"}`, store.data[KeyValues])
	assert.Equal(t, `{"saved/slide-1/f-1":false}`, store.data[KeyVisibility])

	require.NoError(t, reg.Load(ctx))
	_, ok := reg.Section("saved")
	assert.True(t, ok)
	ref := types.FieldRef{SectionID: "saved", SlotKey: "slide-1", FieldID: "f-1"}
	assert.Equal(t, "Rose", reg.FieldValue(ref))
	assert.False(t, reg.FieldVisible(ref))
}

func TestUnchangedStateWritesNothing(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()
	_, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)

	store.failSet = errors.New("store must not be written")
	assert.NoError(t, reg.DeleteSection(ctx, "hero", nil))
	assert.NoError(t, reg.DeleteSection(ctx, "unknown", nil))
}

func TestDeleteLastSectionPersists(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	reg := New(store, WithClock(fixedClock()))
	require.NoError(t, reg.Load(ctx))
	sec, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)
	field, err := reg.AddField(ctx, sec.ID, types.FieldTypeText)
	require.NoError(t, err)
	ref := types.FieldRef{SectionID: sec.ID, SlotKey: "slide-1", FieldID: field.ID}
	require.NoError(t, reg.SetFieldValue(ctx, ref, "Ivory"))
	require.NoError(t, reg.SetFieldVisibility(ctx, ref, false))

	require.NoError(t, reg.DeleteSection(ctx, sec.ID, nil))
	assert.Equal(t, "[]", store.data[KeySections])

	reloaded := New(store)
	require.NoError(t, reloaded.Load(ctx))
	_, ok := reloaded.Section(sec.ID)
	assert.False(t, ok)
	assert.Empty(t, reloaded.ListFields(sec.ID))
	assert.Empty(t, reloaded.FieldValue(ref))
}

func TestEmptySnapshotWrittenWhenNothingStored(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	reg := New(store)

	sec, err := reg.CreateSection(ctx, "Bridal")
	require.NoError(t, err)
	require.NoError(t, reg.DeleteSection(ctx, sec.ID, nil))
	assert.Equal(t, "[]", store.data[KeySections])
}

func TestLoadDropsSectionsShadowingBuiltIns(t *testing.T) {
	store := newMemStore()
	store.data[KeySections] = `[{"id":"hero","display_name":"Fake"},{"id":"bridal","display_name":"Bridal","built_in":true}]`

	reg := New(store)
	require.NoError(t, reg.Load(context.Background()))

	hero, ok := reg.Section("hero")
	require.True(t, ok)
	assert.Equal(t, "Hero Slides", hero.DisplayName)

	bridal, ok := reg.Section("bridal")
	require.True(t, ok)
	assert.False(t, bridal.BuiltIn)
}

func TestLoadRejectsCorruptSnapshot(t *testing.T) {
	store := newMemStore()
	store.data[KeyFields] = `{not json`

	err := New(store).Load(context.Background())
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	reg, store := newTestRegistry(t)
	store.failSet = errors.New("disk full")

	_, err := reg.CreateSection(context.Background(), "Bridal")
	assert.ErrorIs(t, err, types.ErrSave)

	_, ok := reg.Section("bridal")
	assert.False(t, ok)
}
