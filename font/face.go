/*
Package font loads the stroke-font catalog (§6.4), groups faces into
families, computes codepoint coverage and implements the deterministic
best-face selection algorithm (§4.1).

The catalog container format itself is treated as opaque: an index file
maps stable face ids to {path, display name}, and each referenced file
holds glyph stroke data indexed by codepoint plus per-face metrics. This
package depends on nothing about that format beyond those two shapes.

License: governed by the 3-Clause BSD license found in the module root.
*/
package font

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.font")
}

// Style is a bit in a face's style bitset.
type Style uint8

const (
	Regular Style = 0
	Bold    Style = 1 << 0
	Italic  Style = 1 << 1
)

// StyleSet is a set of Style bits.
type StyleSet uint8

func (s StyleSet) Has(st Style) bool {
	if st == Regular {
		return s == 0
	}
	return StyleSet(st)&s != 0
}

func (s StyleSet) popcount() int {
	n := 0
	for b := StyleSet(1); b != 0 && b <= 4; b <<= 1 {
		if s&b != 0 {
			n++
		}
	}
	return n
}

// Metrics carries the scalar font metrics used by the text layout engine.
type Metrics struct {
	UnitsPerEm float64
	Ascent     float64
	Descent    float64
	CapHeight  float64
	XHeight    float64
}

// Glyph is one stroke-font glyph: an advance width plus a set of polylines,
// all in font units.
type Glyph struct {
	Codepoint rune
	Advance   float64
	Strokes   [][]StrokePoint
}

// StrokePoint is a single vertex of a glyph stroke polyline, in font units.
type StrokePoint struct {
	X, Y float64
}

// Face is one stroke font variant: a stable id, a display name, its style
// bitset, metrics and its glyph table.
type Face struct {
	ID          string
	DisplayName string
	Source      string // opaque reference to where the stroke data came from
	Styles      StyleSet
	Metrics     Metrics
	Glyphs      map[rune]Glyph
	coverage    []rune // sorted, deduplicated, immutable after build
}

// Covers reports whether the face has a glyph for r.
func (f *Face) Covers(r rune) bool {
	_, ok := f.Glyphs[r]
	return ok
}

// Coverage returns the face's sorted, deduplicated codepoint coverage set.
func (f *Face) Coverage() []rune {
	if f.coverage == nil {
		f.buildCoverage()
	}
	return f.coverage
}

func (f *Face) buildCoverage() {
	cps := make([]rune, 0, len(f.Glyphs))
	for r := range f.Glyphs {
		cps = append(cps, r)
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i] < cps[j] })
	f.coverage = cps
}

// LineHeight returns the nominal single-line advance in font units,
// ascent+|descent|, falling back to UnitsPerEm if metrics are zeroed.
func (m Metrics) LineHeight() float64 {
	lh := m.Ascent - m.Descent
	if lh <= 0 {
		return m.UnitsPerEm
	}
	return lh
}

// Family groups faces that share a normalized name, e.g. "Futura Regular"
// and "Futura Bold" both belong to family key "futura".
type Family struct {
	Key         string
	DisplayName string
	Variants    []*Face
	// Capability is the union of every variant's style bits.
	Capability StyleSet
}

// normalizeFamilyKey strips a trailing style suffix and lower-cases the
// remainder, so "Futura Bold Italic" and "Futura" share a key.
func normalizeFamilyKey(displayName string) string {
	name := displayName
	suffixes := []string{
		" bold italic", " italic bold", " bold oblique", " oblique bold",
		" bold", " italic", " oblique", " regular",
	}
	lower := strings.ToLower(name)
	for {
		trimmed := false
		for _, suf := range suffixes {
			if strings.HasSuffix(lower, suf) {
				lower = strings.TrimSuffix(lower, suf)
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
	}
	return strings.TrimSpace(lower)
}

func styleFromName(displayName string) Style {
	lower := strings.ToLower(displayName)
	var s Style
	if strings.Contains(lower, "bold") {
		s |= Bold
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		s |= Italic
	}
	return s
}
