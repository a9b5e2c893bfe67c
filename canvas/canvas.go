/*
Package canvas composes a rendered content layout onto a physical page:
deriving the printable frame from paper size, margins and orientation,
optionally re-rendering at a reduced point size to fit the frame, and
translating content to the margin origin (§4.4).

License: governed by the 3-Clause BSD license found in the module root.
*/
package canvas

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/perr"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.canvas")
}

// Orientation selects which physical axis of the paper becomes the content
// frame's width.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// Page describes one physical sheet: its paper dimensions (mm, given in
// the paper's natural portrait sense regardless of Orientation), margins
// (mm), orientation, and whether content should be scaled down to fit the
// printable frame.
type Page struct {
	PaperW, PaperH                     float64
	MarginL, MarginR, MarginT, MarginB float64
	Orientation                        Orientation
	FitToFrame                         bool
	BasePointPt                        float64
}

// RenderFunc produces page-local content paths (mm) at the given point
// size. The composer calls it once, and again at a reduced size when
// FitToFrame requires a re-render.
type RenderFunc func(sizePt float64) (geom.PathCollection, error)

// Layout is the result of Compose: content translated into page
// coordinates, the frame it was fit against, and the point size it was
// finally rendered at.
type Layout struct {
	Paths      geom.PathCollection
	Frame      geom.BBox
	Page       Page
	ResolvedPt float64
	Scaled     bool
}

// fitShrinkFactor leaves a small margin below the computed scale so
// fit-to-frame content never touches the frame edge exactly (§4.4).
const fitShrinkFactor = 0.985

// Compose derives the content frame from page, invokes render at
// page.BasePointPt, and — if FitToFrame is set and the content overflows
// the frame — re-invokes render at a uniformly reduced point size rather
// than scaling finished strokes, to preserve line quality.
func Compose(page Page, render RenderFunc) (Layout, error) {
	if page.MarginL < 0 || page.MarginR < 0 || page.MarginT < 0 || page.MarginB < 0 {
		return Layout{}, perr.New(perr.InvalidInput, "page margins must be non-negative")
	}
	frameW, frameH := frameSize(page)
	if frameW <= 0 || frameH <= 0 {
		return Layout{}, perr.New(perr.InvalidInput, "effective work area is non-positive (%.2f x %.2f mm)", frameW, frameH)
	}
	if page.BasePointPt <= 0 {
		page.BasePointPt = 12
	}

	sizePt := page.BasePointPt
	content, err := render(sizePt)
	if err != nil {
		return Layout{}, err
	}

	scaled := false
	bbox := content.BBox()
	if page.FitToFrame && !bbox.Empty() && (bbox.Dx() > frameW || bbox.Dy() > frameH) {
		s := minFloat(frameW/bbox.Dx(), frameH/bbox.Dy()) * fitShrinkFactor
		sizePt = sizePt * s
		tracer().Infof("fit-to-frame: rescaling from %.2fpt by factor %.4f to %.2fpt", page.BasePointPt, s, sizePt)
		content, err = render(sizePt)
		if err != nil {
			return Layout{}, err
		}
		bbox = content.BBox()
		scaled = true
	}

	originX := page.MarginL - bbox.MinX
	originY := page.MarginT - bbox.MinY
	translated := content.Translate(originX, originY)

	frame := geom.BBox{
		MinX: page.MarginL, MinY: page.MarginT,
		MaxX: page.MarginL + frameW, MaxY: page.MarginT + frameH,
	}
	return Layout{Paths: translated, Frame: frame, Page: page, ResolvedPt: sizePt, Scaled: scaled}, nil
}

// FrameSize exposes frameSize for callers that need the printable frame
// dimensions before invoking Compose, such as a renderer choosing a
// wrap width.
func FrameSize(page Page) (w, h float64) {
	return frameSize(page)
}

// frameSize derives the printable frame from the page's paper size,
// margins and orientation. PaperW/PaperH are given in the paper's
// portrait sense; Landscape swaps which physical axis becomes the
// frame's width.
func frameSize(page Page) (w, h float64) {
	paperW, paperH := page.PaperW, page.PaperH
	if page.Orientation == Landscape {
		paperW, paperH = paperH, paperW
	}
	return paperW - page.MarginL - page.MarginR, paperH - page.MarginT - page.MarginB
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
