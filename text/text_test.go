package text

import (
	"testing"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/geom"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// buildTestCatalog assembles a tiny in-memory catalog covering ASCII
// letters and space, enough to exercise layout without touching disk.
func buildTestCatalog(t *testing.T) *font.Catalog {
	t.Helper()
	glyphs := map[rune]font.Glyph{}
	for r := rune('A'); r <= 'Z'; r++ {
		glyphs[r] = font.Glyph{Codepoint: r, Advance: 700, Strokes: [][]font.StrokePoint{{{X: 0, Y: 0}, {X: 600, Y: 700}}}}
	}
	for r := rune('a'); r <= 'z'; r++ {
		glyphs[r] = font.Glyph{Codepoint: r, Advance: 550, Strokes: [][]font.StrokePoint{{{X: 0, Y: 0}, {X: 500, Y: 500}}}}
	}
	glyphs[' '] = font.Glyph{Codepoint: ' ', Advance: 300}
	face := &font.Face{
		ID:          font.DefaultFaceID,
		DisplayName: "Futura Regular",
		Styles:      font.Regular,
		Metrics:     font.Metrics{UnitsPerEm: 1000, Ascent: 800, Descent: -200, CapHeight: 700, XHeight: 500},
		Glyphs:      glyphs,
	}
	return newTestCatalogWithFaces(face)
}

func TestLayoutSingleLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "plotdrive.text")
	defer teardown()
	cat := buildTestCatalog(t)

	res, err := Layout(cat, "Hello", nil, Options{PointSize: 14, Units: geom.Mm, FrameWidth: 190})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(res.Lines))
	}
	if res.Stats.Rendered != 5 {
		t.Fatalf("expected 5 rendered glyphs, got %d", res.Stats.Rendered)
	}
	if res.BBox.Dx() >= 190 {
		t.Fatalf("line width %v should be well under frame width", res.BBox.Dx())
	}
}

func TestLayoutRejectsEmptyInput(t *testing.T) {
	cat := buildTestCatalog(t)
	if _, err := Layout(cat, "", nil, Options{PointSize: 14}); err == nil {
		t.Fatalf("expected ArgumentError on empty input")
	}
	if _, err := Layout(nil, "hi", nil, Options{PointSize: 14}); err == nil {
		t.Fatalf("expected ArgumentError on nil catalog")
	}
}

func TestLineBreakingWrapsLongText(t *testing.T) {
	cat := buildTestCatalog(t)
	res, err := Layout(cat, "one two three four five six seven eight", nil,
		Options{PointSize: 14, Units: geom.Mm, FrameWidth: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Lines) < 2 {
		t.Fatalf("expected wrapping to produce multiple lines, got %d", len(res.Lines))
	}
}

func TestAlignmentOffsetsLines(t *testing.T) {
	cat := buildTestCatalog(t)
	left, _ := Layout(cat, "hi", nil, Options{PointSize: 14, Units: geom.Mm, FrameWidth: 100, Align: AlignLeft})
	right, _ := Layout(cat, "hi", nil, Options{PointSize: 14, Units: geom.Mm, FrameWidth: 100, Align: AlignRight})
	if left.Lines[0].XOffset >= right.Lines[0].XOffset {
		t.Fatalf("right-aligned line should start further right than left-aligned")
	}
}

func TestBreakLongWordsHardSplits(t *testing.T) {
	cat := buildTestCatalog(t)
	res, err := Layout(cat, "supercalifragilisticexpialidocious", nil,
		Options{PointSize: 14, Units: geom.Mm, FrameWidth: 15, BreakLongWords: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Lines) < 2 {
		t.Fatalf("expected a long word to be hard-split across lines")
	}
}

func newTestCatalogWithFaces(faces ...*font.Face) *font.Catalog {
	return font.NewTestCatalog(faces...)
}

func TestLanguageHintDisablesHyphenationForNonEnglish(t *testing.T) {
	cat := buildTestCatalog(t)
	word := "understanding" // matches the "un" prefix and "ing" suffix entries
	en, err := Layout(cat, word, nil,
		Options{PointSize: 14, Units: geom.Mm, FrameWidth: 20, Hyphenate: true, Language: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	de, err := Layout(cat, word, nil,
		Options{PointSize: 14, Units: geom.Mm, FrameWidth: 20, Hyphenate: true, Language: "de"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !en.Lines[0].Hyphenated {
		t.Fatalf("expected English hint to hyphenate the overlong word")
	}
	if de.Lines[0].Hyphenated {
		t.Fatalf("expected German hint to skip the English-only heuristic table")
	}
}

func TestFullwidthInputFoldsBeforeGlyphLookup(t *testing.T) {
	cat := buildTestCatalog(t)
	// U+FF21 FULLWIDTH LATIN CAPITAL LETTER A folds to ASCII 'A'.
	res, err := Layout(cat, string(rune(0xFF21)), nil, Options{PointSize: 14, Units: geom.Mm, FrameWidth: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stats.Missing != 0 || res.Stats.Rendered != 1 {
		t.Fatalf("expected the fullwidth rune to fold and render via the ASCII glyph, got %+v", res.Stats)
	}
}
