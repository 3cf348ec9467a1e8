package types

import (
	"fmt"
	"path"
	"strings"
)

// AssetKind is the media class of an uploaded asset, inferred from its
// extension.
type AssetKind string

const (
	KindImage AssetKind = "image"
	KindVideo AssetKind = "video"
)

// Size limits per asset kind.
const (
	MaxImageBytes int64 = 10 << 20
	MaxVideoBytes int64 = 50 << 20
)

// allowedExtensions is the upload allow-list.
var allowedExtensions = map[string]AssetKind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".avif": KindImage,
	".svg":  KindImage,
	".mp4":  KindVideo,
	".webm": KindVideo,
	".mov":  KindVideo,
	".m4v":  KindVideo,
	".ogg":  KindVideo,
}

// contentTypes maps allow-listed extensions to the MIME type sent to the
// asset store.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".m4v":  "video/x-m4v",
	".ogg":  "video/ogg",
}

// File is an operator-supplied upload held in memory. Data is re-readable so
// the same file can be uploaded once per distribution target.
type File struct {
	Name string
	Data []byte
}

// Size returns the file length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Ext returns the lowercased extension of the file name, including the dot.
func (f File) Ext() string {
	return strings.ToLower(path.Ext(f.Name))
}

// ContentType returns the MIME type for an allow-listed extension, or
// application/octet-stream.
func (f File) ContentType() string {
	if ct, ok := contentTypes[f.Ext()]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Validate checks the file against the allow-list and the kind-dependent size
// limit and returns the inferred kind.
func (f File) Validate() (AssetKind, error) {
	kind, ok := allowedExtensions[f.Ext()]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, f.Name)
	}
	limit := MaxImageBytes
	if kind == KindVideo {
		limit = MaxVideoBytes
	}
	if f.Size() > limit {
		return "", fmt.Errorf("%w: %s is %d bytes, limit for %s is %d", ErrFileTooLarge, f.Name, f.Size(), kind, limit)
	}
	return kind, nil
}

// KindFromURL infers the asset kind from the extension of a URL path. Query
// strings and fragments are ignored. Anything not recognized as video is
// treated as an image.
func KindFromURL(u string) AssetKind {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if allowedExtensions[strings.ToLower(path.Ext(u))] == KindVideo {
		return KindVideo
	}
	return KindImage
}

// Asset is what the asset store returns for an accepted upload.
type Asset struct {
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	AssetID string `json:"asset_id"`
}
