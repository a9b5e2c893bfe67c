/*
Package text shapes UTF-8 text (optionally carrying inline style spans)
into positioned glyph polylines using the stroke-font catalog (§4.2).

License: governed by the 3-Clause BSD license found in the module root.
*/
package text

import (
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/perr"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.text")
}

// Align is the horizontal line alignment mode.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// StyleBit is one bit of an inline style bitset.
type StyleBit uint8

const (
	StyleBold StyleBit = 1 << iota
	StyleItalic
	StyleUnderline
	StyleStrike
)

// Span marks [Start, Start+Length) bytes of the input buffer as carrying a
// style bitset.
type Span struct {
	Start, Length int
	Style         StyleBit
}

// Options configures one call to Layout.
type Options struct {
	FamilyHint     string
	PointSize      float64
	Units          geom.Unit
	FrameWidth     float64 // in Units
	Align          Align
	Hyphenate      bool
	BreakLongWords bool
	LineSpacing    float64 // multiplier, 0 defaults to 1.0

	// Language is a BCP-47 tag (e.g. "en", "de-DE") hinting which locale
	// the input is written in. The heuristic hyphenation table in
	// hyphenate.go only knows English affixes, so a Language that doesn't
	// match English disables hyphenation rather than mis-splitting words
	// on foreign-language text. Empty defaults to English.
	Language string
}

// LineInfo reports per-line layout metrics.
type LineInfo struct {
	ByteStart, ByteLen int
	Width              float64
	XOffset            float64
	BaselineY          float64
	Hyphenated         bool
}

// Stats reports rendering diagnostics; overflow/missing glyphs are
// reported here rather than as errors (§4.2).
type Stats struct {
	ResolvedFace   string
	Rendered       int
	Missing        int
	OverflowBreaks int
}

// Result is the output of Layout: positioned glyph polylines plus metrics.
type Result struct {
	Paths  geom.PathCollection
	BBox   geom.BBox
	Lines  []LineInfo
	Stats  Stats
}

// Layout shapes input into a Result using catalog for glyph lookup.
func Layout(catalog *font.Catalog, input string, spans []Span, opts Options) (Result, error) {
	if catalog == nil {
		return Result{}, perr.New(perr.Argument, "text layout requires a non-nil font catalog")
	}
	if input == "" {
		return Result{}, perr.New(perr.Argument, "text layout requires non-empty input")
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = 1.0
	}
	// Fold fullwidth/halfwidth variants (common in CJK-adjacent input) to
	// their canonical form before NFC normalization, so a stroke face only
	// needs to cover one of the two forms to match a given rune.
	normalized := norm.NFC.String(width.Fold.String(input))

	required := collectRunes(normalized)
	base := catalog.BestFace(required, opts.FamilyHint)
	if base == nil {
		return Result{}, perr.New(perr.Resource, "font catalog has no usable face")
	}
	fallback := font.NewFallbackResolver(catalog, base)

	scale := opts.PointSize * mmPerPt / base.Metrics.UnitsPerEm

	eng := &engine{
		catalog:    catalog,
		base:       base,
		fallback:   fallback,
		scale:      scale,
		opts:       opts,
		spans:      spans,
		lineHeight: base.Metrics.LineHeight() * scale * opts.LineSpacing,
	}
	return eng.run(normalized)
}

func collectRunes(s string) []rune {
	seen := map[rune]bool{}
	var out []rune
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

const mmPerPt = 25.4 / 72.0
