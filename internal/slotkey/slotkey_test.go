package slotkey

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func TestDefaultKeys(t *testing.T) {
	got := DefaultKeys(types.PrefixSlide, 12)
	assert.Len(t, got, 12)
	assert.Equal(t, "slide-1", got[0])
	assert.Equal(t, "slide-12", got[11])

	assert.Empty(t, DefaultKeys(types.PrefixSlide, 0))
	assert.NotNil(t, DefaultKeys(types.PrefixSlide, -3))
}

func TestNextKeys(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		prefix   string
		count    int
		want     []string
	}{
		{
			name:     "continues after the highest suffix",
			existing: []string{"slide-3", "slide-1"},
			prefix:   types.PrefixSlide,
			count:    2,
			want:     []string{"slide-4", "slide-5"},
		},
		{
			name:     "no existing keys starts at one",
			existing: nil,
			prefix:   types.PrefixProduct,
			count:    1,
			want:     []string{"product-1"},
		},
		{
			name:     "gaps are not refilled",
			existing: []string{"collection-9"},
			prefix:   types.PrefixCollection,
			count:    1,
			want:     []string{"collection-10"},
		},
		{
			name:     "other prefixes and malformed keys are ignored",
			existing: []string{"product-40", "slide-2", "slide-2b", "slide-", "slideshow-7"},
			prefix:   types.PrefixSlide,
			count:    1,
			want:     []string{"slide-3"},
		},
		{
			name:     "opaque prefix still allocates",
			existing: []string{"item-4"},
			prefix:   "item",
			count:    2,
			want:     []string{"item-5", "item-6"},
		},
		{
			name:     "zero count",
			existing: []string{"slide-1"},
			prefix:   types.PrefixSlide,
			count:    0,
			want:     []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextKeys(tt.existing, tt.prefix, tt.count))
		})
	}
}

func TestNextKeysMonotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 200 {
		n := r.IntN(20)
		existing := make([]string, 0, n)
		highest := 0
		for range n {
			s := 1 + r.IntN(100)
			if s > highest {
				highest = s
			}
			existing = append(existing, fmt.Sprintf("slide-%d", s))
		}
		// Drop a random subset, as if slots had been deleted; the
		// surviving maximum bounds the next suffix.
		survivors := existing[:0:0]
		survivorMax := 0
		for _, k := range existing {
			if r.IntN(3) == 0 {
				continue
			}
			survivors = append(survivors, k)
			if s, _ := Suffix(k, types.PrefixSlide); s > survivorMax {
				survivorMax = s
			}
		}

		next := NextKeys(survivors, types.PrefixSlide, 3)
		for _, k := range next {
			s, ok := Suffix(k, types.PrefixSlide)
			assert.True(t, ok, "trial %d: %s", trial, k)
			assert.Greater(t, s, survivorMax, "trial %d: %s reuses a suffix", trial, k)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		prefix string
		want   []string
	}{
		{
			name:   "numeric not lexical order",
			keys:   []string{"slide-10", "slide-2", "slide-1"},
			prefix: types.PrefixSlide,
			want:   []string{"slide-1", "slide-2", "slide-10"},
		},
		{
			name:   "unmatched keys follow in original order",
			keys:   []string{"banner", "product-3", "hero-alt", "product-1"},
			prefix: types.PrefixProduct,
			want:   []string{"product-1", "product-3", "banner", "hero-alt"},
		},
		{
			name:   "unknown prefix left untouched",
			keys:   []string{"featured-right", "featured-main", "item-2", "item-1"},
			prefix: "item",
			want:   []string{"featured-right", "featured-main", "item-2", "item-1"},
		},
		{
			name:   "empty input",
			keys:   nil,
			prefix: types.PrefixSlide,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.keys, tt.prefix))
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	keys := []string{"slide-2", "slide-1"}
	_ = Normalize(keys, types.PrefixSlide)
	assert.Equal(t, []string{"slide-2", "slide-1"}, keys)
}

func TestAddressable(t *testing.T) {
	sections := map[string]types.Section{}
	for _, s := range types.BuiltInSections() {
		sections[s.ID] = s
	}

	t.Run("empty hero uses the default layout", func(t *testing.T) {
		got := Addressable(sections["hero"], nil)
		assert.Equal(t, DefaultKeys(types.PrefixSlide, 12), got)
	})

	t.Run("populated section returns its keys in order", func(t *testing.T) {
		got := Addressable(sections["rings"], []string{"product-3", "product-1"})
		assert.Equal(t, []string{"product-1", "product-3"}, got)
	})

	t.Run("fixed-key section ignores stored keys", func(t *testing.T) {
		got := Addressable(sections["featured"], []string{"featured-left"})
		assert.Equal(t, []string{"featured-main", "featured-left", "featured-right"}, got)
	})
}
