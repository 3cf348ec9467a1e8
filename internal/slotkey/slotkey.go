// Package slotkey computes display order and fresh keys for the ordered
// content slots of a section. Every function is pure.
//
// A slot key has the form "<prefix>-<n>". Display order is derived from n
// each time slots are loaded, never stored, so two editors only need to agree
// on key naming.
package slotkey

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// orderedPrefixes are the prefixes whose keys are sorted numerically by
// Normalize. Keys under any other prefix are treated as opaque.
var orderedPrefixes = map[string]bool{
	types.PrefixSlide:      true,
	types.PrefixCollection: true,
	types.PrefixProduct:    true,
}

// pattern returns the matcher for "<prefix>-<digits>".
func pattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)
}

// Suffix returns the numeric suffix of key under prefix and whether key
// matches "<prefix>-<digits>" at all.
func Suffix(key, prefix string) (int, bool) {
	return suffix(pattern(prefix), key)
}

func suffix(re *regexp.Regexp, key string) (int, bool) {
	m := re.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Normalize returns keys in display order. For the known prefixes, keys
// matching "<prefix>-<digits>" come first in ascending numeric order and the
// rest follow in their original relative order. For any other prefix the keys
// are returned unchanged.
func Normalize(keys []string, prefix string) []string {
	out := append([]string(nil), keys...)
	if !orderedPrefixes[prefix] {
		return out
	}

	re := pattern(prefix)
	type numbered struct {
		key string
		n   int
	}
	var matched []numbered
	var rest []string
	for _, k := range out {
		if n, ok := suffix(re, k); ok {
			matched = append(matched, numbered{key: k, n: n})
		} else {
			rest = append(rest, k)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].n < matched[j].n })

	out = out[:0]
	for _, m := range matched {
		out = append(out, m.key)
	}
	return append(out, rest...)
}

// NextKeys returns count fresh keys numbered from one past the highest
// suffix among existing keys under prefix. Suffixes are never reused or
// compacted.
func NextKeys(existing []string, prefix string, count int) []string {
	re := pattern(prefix)
	highest := 0
	for _, k := range existing {
		if n, ok := suffix(re, k); ok && n > highest {
			highest = n
		}
	}
	return sequence(prefix, highest+1, count)
}

// DefaultKeys returns prefix-1 through prefix-count, the layout of a section
// with no slots yet.
func DefaultKeys(prefix string, count int) []string {
	return sequence(prefix, 1, count)
}

func sequence(prefix string, start, count int) []string {
	if count <= 0 {
		return []string{}
	}
	out := make([]string, count)
	for i := range count {
		out[i] = fmt.Sprintf("%s-%d", prefix, start+i)
	}
	return out
}

// Addressable returns the keys a section presents to an editor: the fixed
// keys of a non-addable section, the section's default layout when it has no
// slots yet, or its existing keys in display order.
func Addressable(section types.Section, existing []string) []string {
	if !section.AllowAdd && len(section.Keys) > 0 {
		return append([]string(nil), section.Keys...)
	}
	if len(existing) == 0 {
		return DefaultKeys(section.KeyPrefix, section.DefaultSlotCount)
	}
	return Normalize(existing, section.KeyPrefix)
}
