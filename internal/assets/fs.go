package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// FS stores uploads under a local directory and addresses them relative to
// a base URL.
type FS struct {
	dir     string
	baseURL string
}

var _ types.AssetStore = (*FS)(nil)

// NewFS returns a store writing to dir. URLs are baseURL joined with the
// object key; baseURL may be a path ("/assets") or absolute
// ("https://cdn.example.com/media").
func NewFS(dir, baseURL string) *FS {
	return &FS{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory.
func (s *FS) Dir() string { return s.dir }

// Upload writes the file to <dir>/<folder>/<id><ext>.
func (s *FS) Upload(ctx context.Context, file types.File, folder string) (types.Asset, error) {
	if err := ctx.Err(); err != nil {
		return types.Asset{}, err
	}

	key, id := objectKey("", folder, file)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return types.Asset{}, fmt.Errorf("create asset folder: %w", err)
	}
	if err := writeFileAtomic(target, file.Data); err != nil {
		return types.Asset{}, err
	}

	w, h := dimensions(file)
	return types.Asset{
		URL:     s.baseURL + "/" + escapeKey(key),
		Width:   w,
		Height:  h,
		AssetID: id,
	}, nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it into place.
func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close asset: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename asset: %w", err)
	}
	return nil
}
