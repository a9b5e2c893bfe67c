/*
Package markdown renders a strict Markdown subset (§4.3) into page-local
geometry by repeatedly invoking the text layout engine per block.

License: governed by the 3-Clause BSD license found in the module root.
*/
package markdown

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/text"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.markdown")
}

// Options configures one Render call.
type Options struct {
	FamilyHint   string
	BasePointPt  float64 // paragraph/body point size, also drives block_gap
	FrameWidth   float64 // mm
	MaxTableCols int     // 0 defaults to 128
	Language     string  // BCP-47 hint, see text.Options.Language
}

// Stats reports rendering diagnostics.
type Stats struct {
	Blocks           int
	TextStats        text.Stats
	TruncatedColumns bool
}

const maxTableColsHardCap = 128

var headingSize = map[int]float64{1: 24, 2: 18, 3: 14}

// Render parses src and lays it out, returning the composed page-local
// path collection (mm) plus diagnostics. It never fails on malformed
// Markdown; blocks it cannot classify fall through to paragraph handling.
func Render(catalog *font.Catalog, src string, opts Options) (geom.PathCollection, Stats, error) {
	if opts.BasePointPt <= 0 {
		opts.BasePointPt = 12
	}
	if opts.MaxTableCols <= 0 || opts.MaxTableCols > maxTableColsHardCap {
		opts.MaxTableCols = maxTableColsHardCap
	}

	blocks := parseBlocks(src)
	var stats Stats
	out := geom.PathCollection{Units: geom.Mm}
	y := 0.0
	blockGap := 0.5 * opts.BasePointPt * 25.4 / 72.0

	for _, b := range blocks {
		pc, blockStats, err := b.render(catalog, opts)
		if err != nil {
			return geom.PathCollection{}, stats, err
		}
		stats.Blocks++
		stats.TextStats.Rendered += blockStats.TextStats.Rendered
		stats.TextStats.Missing += blockStats.TextStats.Missing
		stats.TextStats.OverflowBreaks += blockStats.TextStats.OverflowBreaks
		stats.TruncatedColumns = stats.TruncatedColumns || blockStats.TruncatedColumns
		if pc.Hash() == emptyHash {
			continue
		}
		h := pc.BBox().Dy()
		translated := pc.Translate(0, y)
		out = out.Append(translated)
		y += h + blockGap
	}
	return out, stats, nil
}

var emptyHash = geom.PathCollection{Units: geom.Mm}.Hash()
