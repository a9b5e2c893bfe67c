package markdown

import (
	"testing"

	"github.com/axidraft/plotdrive/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func testCatalog(t *testing.T) *font.Catalog {
	t.Helper()
	glyphs := map[rune]font.Glyph{}
	for r := rune('a'); r <= 'z'; r++ {
		glyphs[r] = font.Glyph{Codepoint: r, Advance: 550, Strokes: [][]font.StrokePoint{{{X: 0, Y: 0}, {X: 400, Y: 500}}}}
	}
	for r := rune('A'); r <= 'Z'; r++ {
		glyphs[r] = font.Glyph{Codepoint: r, Advance: 700, Strokes: [][]font.StrokePoint{{{X: 0, Y: 0}, {X: 500, Y: 700}}}}
	}
	for _, r := range " .,0123456789-|" {
		if _, ok := glyphs[r]; !ok {
			glyphs[r] = font.Glyph{Codepoint: r, Advance: 300}
		}
	}
	face := &font.Face{
		ID:          font.DefaultFaceID,
		DisplayName: "Futura Regular",
		Styles:      font.Regular,
		Metrics:     font.Metrics{UnitsPerEm: 1000, Ascent: 800, Descent: -200, CapHeight: 700, XHeight: 500},
		Glyphs:      glyphs,
	}
	return font.NewTestCatalog(face)
}

func TestRenderHeadingAndParagraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "plotdrive.markdown")
	defer teardown()
	cat := testCatalog(t)

	src := "# Title\n\nSome body text here.\n"
	pc, stats, err := Render(cat, src, Options{BasePointPt: 12, FrameWidth: 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Blocks != 2 {
		t.Fatalf("expected 2 blocks, got %d", stats.Blocks)
	}
	if len(pc.Paths) == 0 {
		t.Fatalf("expected rendered paths")
	}
}

func TestRenderListIndentsNestedItems(t *testing.T) {
	cat := testCatalog(t)
	src := "- first\n  - nested\n- second\n"
	pc, stats, err := Render(cat, src, Options{BasePointPt: 12, FrameWidth: 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Blocks != 1 {
		t.Fatalf("expected a single list block, got %d", stats.Blocks)
	}
	if len(pc.Paths) == 0 {
		t.Fatalf("expected rendered paths")
	}
}

func TestRenderTableTruncatesExcessColumns(t *testing.T) {
	cat := testCatalog(t)
	var src string
	src = "a|b|c\n-|-|-\n1|2|3\n"
	_, stats, err := Render(cat, src, Options{BasePointPt: 12, FrameWidth: 150, MaxTableCols: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.TruncatedColumns {
		t.Fatalf("expected TruncatedColumns to be set")
	}
}

func TestRenderTableDrawsCellRectangles(t *testing.T) {
	cat := testCatalog(t)
	src := "a|b\n-|-\n1|2\n"
	pc, _, err := Render(cat, src, Options{BasePointPt: 12, FrameWidth: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closedRects := 0
	for _, p := range pc.Paths {
		if len(p) == 5 && p[0] == p[4] {
			closedRects++
		}
	}
	// one header row + one data row, 2 columns each.
	if closedRects != 4 {
		t.Fatalf("expected 4 closed cell rectangles, got %d", closedRects)
	}
}

func TestRenderTableConstrainsCellWidthToFrameOverCols(t *testing.T) {
	cat := testCatalog(t)
	src := "a|b\n-|-\n1|2\n"
	frame := 100.0
	pc, _, err := Render(cat, src, Options{BasePointPt: 12, FrameWidth: frame})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	colWidth := frame / 2
	for _, p := range pc.Paths {
		for _, pt := range p {
			if pt.X > colWidth*2+1e-6 {
				t.Fatalf("path point x=%.3f exceeds table frame width %.3f", pt.X, colWidth*2)
			}
		}
	}
}

func TestRenderBlockquoteDrawsBar(t *testing.T) {
	cat := testCatalog(t)
	src := "> quoted line\n"
	pc, _, err := Render(cat, src, Options{BasePointPt: 12, FrameWidth: 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foundBar := false
	for _, p := range pc.Paths {
		if len(p) == 2 && p[0].X == 0 && p[1].X == 0 {
			foundBar = true
		}
	}
	if !foundBar {
		t.Fatalf("expected a vertical blockquote bar among rendered paths")
	}
}

func TestParseInlineTogglesStyles(t *testing.T) {
	buf, spans := parseInline("plain **bold** and *em* text")
	if buf != "plain bold and em text" {
		t.Fatalf("unexpected normalized buffer: %q", buf)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
}

func TestParseInlineEscapeIsLiteral(t *testing.T) {
	buf, spans := parseInline(`\*not emphasis\*`)
	if buf != "*not emphasis*" {
		t.Fatalf("expected escaped asterisks to survive literally, got %q", buf)
	}
	if len(spans) != 0 {
		t.Fatalf("expected no spans from escaped markers, got %d", len(spans))
	}
}
