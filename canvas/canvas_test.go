package canvas

import (
	"testing"

	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/perr"
)

func rectPaths(w, h float64) geom.PathCollection {
	return geom.PathCollection{
		Units: geom.Mm,
		Paths: []geom.Path{{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}},
	}
}

func TestComposeTranslatesToMarginOrigin(t *testing.T) {
	page := Page{PaperW: 210, PaperH: 297, MarginL: 10, MarginR: 10, MarginT: 10, MarginB: 10, BasePointPt: 12}
	layout, err := Compose(page, func(sizePt float64) (geom.PathCollection, error) {
		return rectPaths(50, 20), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bbox := layout.Paths.BBox()
	if bbox.MinX != 10 || bbox.MinY != 10 {
		t.Fatalf("expected content translated to margin origin, got (%.2f, %.2f)", bbox.MinX, bbox.MinY)
	}
}

func TestComposeRejectsNonPositiveWorkArea(t *testing.T) {
	page := Page{PaperW: 20, PaperH: 20, MarginL: 15, MarginR: 15, MarginT: 5, MarginB: 5, BasePointPt: 12}
	_, err := Compose(page, func(sizePt float64) (geom.PathCollection, error) {
		return rectPaths(1, 1), nil
	})
	if perr.KindOf(err) != perr.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestComposeRejectsNegativeMargins(t *testing.T) {
	page := Page{PaperW: 210, PaperH: 297, MarginL: -1, BasePointPt: 12}
	_, err := Compose(page, func(sizePt float64) (geom.PathCollection, error) {
		return rectPaths(1, 1), nil
	})
	if perr.KindOf(err) != perr.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestComposeFitToFrameRerendersAtSmallerSize(t *testing.T) {
	page := Page{PaperW: 100, PaperH: 100, MarginL: 0, MarginR: 0, MarginT: 0, MarginB: 0, FitToFrame: true, BasePointPt: 14}
	calls := 0
	layout, err := Compose(page, func(sizePt float64) (geom.PathCollection, error) {
		calls++
		// natural width scales linearly with sizePt; overflow at 14pt, fits after shrink.
		return rectPaths(sizePt*10, sizePt*2), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a re-render call for fit-to-frame, got %d calls", calls)
	}
	if !layout.Scaled {
		t.Fatalf("expected layout.Scaled to be true")
	}
	if layout.ResolvedPt >= page.BasePointPt {
		t.Fatalf("expected resolved point size to shrink from %.2f, got %.2f", page.BasePointPt, layout.ResolvedPt)
	}
	bbox := layout.Paths.BBox()
	if bbox.Dx() > 100*fitShrinkFactor+1e-6 {
		t.Fatalf("fitted content width %.4f exceeds frame*shrink", bbox.Dx())
	}
}

func TestComposeLandscapeSwapsFrameAxes(t *testing.T) {
	portrait := Page{PaperW: 100, PaperH: 200, BasePointPt: 12}
	landscape := portrait
	landscape.Orientation = Landscape

	pw, ph := frameSize(portrait)
	lw, lh := frameSize(landscape)
	if pw != lh || ph != lw {
		t.Fatalf("expected landscape to swap frame axes: portrait (%.1f,%.1f) landscape (%.1f,%.1f)", pw, ph, lw, lh)
	}
}
