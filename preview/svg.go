package preview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/axidraft/plotdrive/canvas"
	"github.com/axidraft/plotdrive/perr"
)

// SVG is a minimal hand-rolled SVG writer: one <polyline> per path, in a
// viewBox matching the page frame. There is no vector SVG encoder anywhere
// in the corpus (see DESIGN.md); coordinates are the only dynamic content
// and never require escaping, so a plain strings.Builder suffices.
type SVG struct {
	StrokeWidthMm float64
}

const defaultSVGStrokeWidthMm = 0.3

func (s SVG) Emit(layout canvas.Layout) ([]byte, error) {
	strokeW := s.StrokeWidthMm
	if strokeW <= 0 {
		strokeW = defaultSVGStrokeWidthMm
	}
	paper := layout.Page
	if paper.PaperW <= 0 || paper.PaperH <= 0 {
		return nil, perr.New(perr.InvalidInput, "page has non-positive paper dimensions")
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%smm" height="%smm" viewBox="0 0 %s %s">`+"\n",
		fmtMm(paper.PaperW), fmtMm(paper.PaperH), fmtMm(paper.PaperW), fmtMm(paper.PaperH))
	fmt.Fprintf(&b, `<g fill="none" stroke="black" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round">`+"\n", fmtMm(strokeW))

	for _, p := range layout.Paths.Paths {
		if len(p) == 0 {
			continue
		}
		b.WriteString(`<polyline points="`)
		for i, pt := range p {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(fmtMm(pt.X))
			b.WriteByte(',')
			b.WriteString(fmtMm(pt.Y))
		}
		b.WriteString(`"/>` + "\n")
	}
	b.WriteString("</g>\n</svg>\n")
	return []byte(b.String()), nil
}

func fmtMm(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
