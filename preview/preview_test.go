package preview

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/axidraft/plotdrive/canvas"
	"github.com/axidraft/plotdrive/geom"
)

func testLayout() canvas.Layout {
	return canvas.Layout{
		Paths: geom.PathCollection{
			Units: geom.Mm,
			Paths: []geom.Path{{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 40}}},
		},
		Page: canvas.Page{PaperW: 210, PaperH: 297},
	}
}

func TestSVGEmitProducesWellFormedTags(t *testing.T) {
	out, err := SVG{}.Emit(testLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "</svg>") {
		t.Fatalf("missing svg root element: %s", s)
	}
	if !strings.Contains(s, "<polyline") {
		t.Fatalf("expected at least one polyline: %s", s)
	}
}

func TestSVGEmitRejectsEmptyPage(t *testing.T) {
	layout := testLayout()
	layout.Page = canvas.Page{}
	if _, err := (SVG{}).Emit(layout); err == nil {
		t.Fatalf("expected error for non-positive paper size")
	}
}

func TestPNGEmitProducesDecodablePNG(t *testing.T) {
	out, err := (PNG{DPI: 50}).Emit(testLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("expected decodable png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		t.Fatalf("expected non-empty image bounds, got %v", b)
	}
}
