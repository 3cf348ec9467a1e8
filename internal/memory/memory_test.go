package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func TestSlotsUpsertKeepsIdentity(t *testing.T) {
	s := NewSlots()
	ctx := context.Background()

	a, err := s.UpsertSlot(ctx, types.Slot{SectionID: "hero", SlotKey: "slide-1", URL: "a.jpg"})
	require.NoError(t, err)
	b, err := s.UpsertSlot(ctx, types.Slot{SectionID: "hero", SlotKey: "slide-1", URL: "b.webm"})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, types.KindVideo, b.Kind)

	slots, err := s.ListSlots(ctx, "hero")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "b.webm", slots[0].URL)
	assert.Equal(t, 1, s.Calls(OpList))
	assert.Equal(t, 2, s.Calls(OpUpsert))
	assert.Equal(t, 3, s.TotalCalls())
}

func TestSlotsFailureHook(t *testing.T) {
	s := NewSlots()
	ctx := context.Background()
	boom := errors.New("boom")

	sl, err := s.UpsertSlot(ctx, types.Slot{SectionID: "hero", SlotKey: "slide-1", URL: "a.jpg"})
	require.NoError(t, err)

	s.FailWith(func(op Op, _, key string) error {
		if op == OpDelete && key == "slide-1" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, s.DeleteSlot(ctx, sl.ID), boom)

	s.FailWith(nil)
	require.NoError(t, s.DeleteSlot(ctx, sl.ID))
	assert.ErrorIs(t, s.DeleteSlot(ctx, sl.ID), types.ErrNotFound)
}

func TestAssetsUpload(t *testing.T) {
	a := NewAssets()
	ctx := context.Background()

	asset, err := a.Upload(ctx, types.File{Name: "ring.PNG", Data: []byte("x")}, "rings")
	require.NoError(t, err)
	assert.Regexp(t, `^memory://rings/[0-9a-f-]{36}\.png$`, asset.URL)
	assert.Equal(t, asset.AssetID, asset.URL[len("memory://rings/"):len(asset.URL)-len(".png")])

	a.FailWith(func(_ types.File, folder string) error {
		if folder == "earrings" {
			return errors.New("quota")
		}
		return nil
	})
	_, err = a.Upload(ctx, types.File{Name: "e.png"}, "earrings")
	assert.Error(t, err)
	assert.Equal(t, []string{"rings"}, a.Uploads())
}

func TestDrafts(t *testing.T) {
	d := NewDrafts()
	ctx := context.Background()

	_, ok, err := d.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Set(ctx, "k", "v"))
	v, ok, err := d.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
