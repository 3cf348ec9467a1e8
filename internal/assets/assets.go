// Package assets implements the AssetStore used by the ingestion pipeline:
// a local directory served by `showcase serve`, or an S3 bucket.
package assets

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// objectKey returns "<prefix>/<folder>/<uuid><ext>" without empty segments.
// The id doubles as the asset ID.
func objectKey(prefix, folder string, file types.File) (key, id string) {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	id = u.String()
	return joinKey(prefix, folder, id+file.Ext()), id
}

func joinKey(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
			seg = strings.TrimSpace(seg)
			if seg == "" || seg == "." || seg == ".." {
				continue
			}
			segments = append(segments, seg)
		}
	}
	return path.Join(segments...)
}

// escapeKey percent-encodes each segment of key for use in a URL path.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// dimensions decodes the image header of data. Formats without a registered
// decoder (webp, avif, svg, video) report 0x0.
func dimensions(file types.File) (width, height int) {
	if types.KindFromURL(file.Name) != types.KindImage {
		return 0, 0
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
