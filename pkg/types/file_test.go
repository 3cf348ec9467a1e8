package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidate(t *testing.T) {
	tests := []struct {
		name     string
		file     File
		wantKind AssetKind
		wantErr  error
	}{
		{name: "small jpeg", file: File{Name: "ring.JPG", Data: make([]byte, 1024)}, wantKind: KindImage},
		{name: "image at limit", file: File{Name: "a.png", Data: make([]byte, MaxImageBytes)}, wantKind: KindImage},
		{name: "image over limit", file: File{Name: "a.png", Data: make([]byte, MaxImageBytes+1)}, wantErr: ErrFileTooLarge},
		{name: "video above image limit is fine", file: File{Name: "clip.mp4", Data: make([]byte, MaxImageBytes+1)}, wantKind: KindVideo},
		{name: "video over limit", file: File{Name: "clip.webm", Data: make([]byte, MaxVideoBytes+1)}, wantErr: ErrFileTooLarge},
		{name: "unsupported extension", file: File{Name: "notes.pdf", Data: []byte("x")}, wantErr: ErrUnsupportedType},
		{name: "no extension", file: File{Name: "README", Data: []byte("x")}, wantErr: ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := tt.file.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestFileContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", File{Name: "x.jpeg"}.ContentType())
	assert.Equal(t, "video/quicktime", File{Name: "x.MOV"}.ContentType())
	assert.Equal(t, "application/octet-stream", File{Name: "x.bin"}.ContentType())
}

func TestKindFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want AssetKind
	}{
		{"https://cdn.example.com/hero/slide.png", KindImage},
		{"https://cdn.example.com/hero/loop.MP4", KindVideo},
		{"https://cdn.example.com/hero/loop.webm?v=2#t=3", KindVideo},
		{"https://cdn.example.com/hero/unknown", KindImage},
		{"", KindImage},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromURL(tt.url))
		})
	}
}
