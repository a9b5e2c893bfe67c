package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"

	"github.com/axidraft/plotdrive/canvas"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/perr"
)

const (
	defaultPNGDPI           = 96.0
	defaultPNGStrokeWidthMm = 0.3
	mmPerInch               = 25.4
)

// PNG rasterizes a layout's strokes onto an image.Gray canvas at a
// configurable DPI, encoding the result as PNG. Each stroke segment of
// width w becomes a thin filled quad fed to the rasterizer, since
// vector.Rasterizer only fills closed contours — adapted from
// ot-tools/tools.go's renderGlyphPNG/renderGlyphRunPNG, which drive the
// same rasterizer from filled glyph outlines instead of stroke segments.
type PNG struct {
	StrokeWidthMm float64
	DPI           float64
}

func (p PNG) Emit(layout canvas.Layout) ([]byte, error) {
	dpi := p.DPI
	if dpi <= 0 {
		dpi = defaultPNGDPI
	}
	strokeW := p.StrokeWidthMm
	if strokeW <= 0 {
		strokeW = defaultPNGStrokeWidthMm
	}
	paper := layout.Page
	if paper.PaperW <= 0 || paper.PaperH <= 0 {
		return nil, perr.New(perr.InvalidInput, "page has non-positive paper dimensions")
	}

	pxPerMm := dpi / mmPerInch
	width := int(math.Ceil(paper.PaperW * pxPerMm))
	height := int(math.Ceil(paper.PaperH * pxPerMm))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Over
	halfW := float32(strokeW * pxPerMm / 2)
	for _, path := range layout.Paths.Paths {
		for i := 0; i+1 < len(path); i++ {
			drawStrokeQuad(rast, path[i], path[i+1], halfW, pxPerMm)
		}
	}

	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(gray, gray.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	rast.Draw(gray, gray.Bounds(), image.NewUniform(color.Gray{Y: 0}), image.Point{})

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, perr.Wrap(perr.Internal, err, "encoding preview png")
	}
	return buf.Bytes(), nil
}

// drawStrokeQuad feeds a thin rectangle around segment a->b to rast, in
// pixel space, so that a filled-contour rasterizer can render a stroke.
func drawStrokeQuad(rast *vector.Rasterizer, a, b geom.Point, halfWidth float32, pxPerMm float64) {
	ax, ay := float32(a.X*pxPerMm), float32(a.Y*pxPerMm)
	bx, by := float32(b.X*pxPerMm), float32(b.Y*pxPerMm)
	dx, dy := bx-ax, by-ay
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*halfWidth, dx/length*halfWidth

	rast.MoveTo(ax+nx, ay+ny)
	rast.LineTo(bx+nx, by+ny)
	rast.LineTo(bx-nx, by-ny)
	rast.LineTo(ax-nx, ay-ny)
	rast.ClosePath()
}
