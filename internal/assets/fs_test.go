package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFSUpload_WritesFileAndReportsDimensions(t *testing.T) {
	dir := t.TempDir()
	store := NewFS(dir, "/assets/")
	data := pngBytes(t, 40, 25)

	asset, err := store.Upload(context.Background(), types.File{Name: "Ring.PNG", Data: data}, "showcase/rings")
	require.NoError(t, err)

	assert.Equal(t, 40, asset.Width)
	assert.Equal(t, 25, asset.Height)
	assert.NotEmpty(t, asset.AssetID)
	assert.True(t, strings.HasPrefix(asset.URL, "/assets/showcase/rings/"+asset.AssetID), asset.URL)
	assert.True(t, strings.HasSuffix(asset.URL, ".png"), asset.URL)

	got, err := os.ReadFile(filepath.Join(dir, "showcase", "rings", asset.AssetID+".png"))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(filepath.Join(dir, "showcase", "rings"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFSUpload_UnknownDimensions(t *testing.T) {
	store := NewFS(t.TempDir(), "https://cdn.example.com/media")

	tests := []types.File{
		{Name: "clip.mp4", Data: []byte("not really a video")},
		{Name: "logo.svg", Data: []byte("<svg/>")},
		{Name: "broken.jpg", Data: []byte("garbage")},
	}
	for _, f := range tests {
		t.Run(f.Name, func(t *testing.T) {
			asset, err := store.Upload(context.Background(), f, "hero")
			require.NoError(t, err)
			assert.Zero(t, asset.Width)
			assert.Zero(t, asset.Height)
			assert.True(t, strings.HasPrefix(asset.URL, "https://cdn.example.com/media/hero/"))
		})
	}
}

func TestFSUpload_DistinctKeys(t *testing.T) {
	store := NewFS(t.TempDir(), "")
	f := types.File{Name: "a.gif", Data: []byte("GIF89a")}

	a, err := store.Upload(context.Background(), f, "products")
	require.NoError(t, err)
	b, err := store.Upload(context.Background(), f, "products")
	require.NoError(t, err)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestFSUpload_FolderCannotEscapeRoot(t *testing.T) {
	dir := t.TempDir()
	store := NewFS(filepath.Join(dir, "root"), "/a")

	asset, err := store.Upload(context.Background(), types.File{Name: "x.png", Data: []byte("x")}, "../../etc")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "root", "etc", asset.AssetID+".png"))
}

func TestFSUpload_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFS(t.TempDir(), "").Upload(ctx, types.File{Name: "x.png"}, "hero")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "media/showcase/rings/a.png", joinKey("/media/", "showcase//rings", "a.png"))
	assert.Equal(t, "a.png", joinKey("", "", "a.png"))
	assert.Equal(t, "etc/a.png", joinKey("..", "../etc", "a.png"))
}

func TestEscapeKey(t *testing.T) {
	assert.Equal(t, "custom/festive%20picks/a.png", escapeKey("custom/festive picks/a.png"))
}
