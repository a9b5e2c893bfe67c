package markdown

import (
	"fmt"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/text"
)

const (
	bulletGapMm        = 4.0 // horizontal gap between a bullet/numeral and its text
	listIndentMm       = 6.0 // per-nesting-level indent
	quoteBarWidthMm    = 1.0 // blockquote vertical bar thickness
	quoteGutterMm      = 2.0 // gap between the bar and the quoted text
	tableCellPaddingMm = 1.5 // padding between a cell's rectangle and its text, all sides
)

func renderParagraphLike(catalog *font.Catalog, raw string, pointSize float64, opts Options, xOffset float64) (geom.PathCollection, Stats, error) {
	if raw == "" {
		return geom.PathCollection{Units: geom.Mm}, Stats{}, nil
	}
	normalized, spans := parseInline(raw)
	res, err := text.Layout(catalog, normalized, spans, text.Options{
		FamilyHint:  opts.FamilyHint,
		PointSize:   pointSize,
		Units:       geom.Mm,
		FrameWidth:  maxFloat(opts.FrameWidth-xOffset, 1),
		Align:       text.AlignLeft,
		Hyphenate:   true,
		LineSpacing: 1.0,
		Language:    opts.Language,
	})
	if err != nil {
		return geom.PathCollection{}, Stats{}, err
	}
	return res.Paths.Translate(xOffset, 0), Stats{TextStats: res.Stats}, nil
}

func renderBlockquote(catalog *font.Catalog, b block, opts Options) (geom.PathCollection, Stats, error) {
	textPaths, stats, err := renderParagraphLike(catalog, b.text, opts.BasePointPt, opts, quoteBarWidthMm+quoteGutterMm)
	if err != nil {
		return geom.PathCollection{}, Stats{}, err
	}
	h := textPaths.BBox().Dy()
	if h <= 0 {
		h = opts.BasePointPt * 25.4 / 72.0
	}
	bar := geom.Path{{X: 0, Y: 0}, {X: 0, Y: h}}
	out := geom.PathCollection{Units: geom.Mm, Paths: []geom.Path{bar}}
	return out.Append(textPaths), stats, nil
}

func renderList(catalog *font.Catalog, b block, opts Options) (geom.PathCollection, Stats, error) {
	out := geom.PathCollection{Units: geom.Mm}
	var stats Stats
	y := 0.0
	for _, item := range b.items {
		indent := float64(item.level) * listIndentMm
		marker := "-"
		if item.number > 0 {
			marker = fmt.Sprintf("%d.", item.number)
		}
		markerPaths, markerStats, err := renderParagraphLike(catalog, marker, opts.BasePointPt, opts, indent)
		if err != nil {
			return geom.PathCollection{}, Stats{}, err
		}
		itemOpts := opts
		itemOpts.FrameWidth = opts.FrameWidth - indent - bulletGapMm
		bodyPaths, bodyStats, err := renderParagraphLike(catalog, item.text, opts.BasePointPt, itemOpts, indent+bulletGapMm)
		if err != nil {
			return geom.PathCollection{}, Stats{}, err
		}
		rowHeight := maxFloat(markerPaths.BBox().Dy(), bodyPaths.BBox().Dy())
		if rowHeight <= 0 {
			rowHeight = opts.BasePointPt * 25.4 / 72.0
		}
		out = out.Append(markerPaths.Translate(0, y))
		out = out.Append(bodyPaths.Translate(0, y))
		stats.TextStats.Rendered += markerStats.TextStats.Rendered + bodyStats.TextStats.Rendered
		stats.TextStats.Missing += markerStats.TextStats.Missing + bodyStats.TextStats.Missing
		stats.TextStats.OverflowBreaks += markerStats.TextStats.OverflowBreaks + bodyStats.TextStats.OverflowBreaks
		y += rowHeight + rowHeight*0.3
	}
	return out, stats, nil
}

// renderTable renders a GFM-subset table in two passes: the first measures
// each cell within a fixed column width of frame/cols (capped at
// MaxTableCols columns), the second translates each cell's glyph paths so
// its top aligns with the row top and draws the cell's bounding rectangle
// (§4.3 step 6).
func renderTable(catalog *font.Catalog, b block, opts Options) (geom.PathCollection, Stats, error) {
	tbl := b.table
	var stats Stats
	cols := len(tbl.header)
	truncated := false
	if cols > opts.MaxTableCols {
		cols = opts.MaxTableCols
		truncated = true
	}

	colWidth := opts.FrameWidth / float64(cols)
	cellOpts := opts
	cellOpts.FrameWidth = maxFloat(colWidth-2*tableCellPaddingMm, 1)
	measure := func(s string) (geom.PathCollection, Stats, error) {
		return renderParagraphLike(catalog, s, opts.BasePointPt, cellOpts, 0)
	}

	headerPaths := make([]geom.PathCollection, cols)
	for c := 0; c < cols; c++ {
		pc, cs, err := measure(tbl.header[c])
		if err != nil {
			return geom.PathCollection{}, Stats{}, err
		}
		headerPaths[c] = pc
		stats.TextStats.Rendered += cs.TextStats.Rendered
	}
	rowPaths := make([][]geom.PathCollection, len(tbl.rows))
	for r, row := range tbl.rows {
		rowPaths[r] = make([]geom.PathCollection, cols)
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			pc, cs, err := measure(cell)
			if err != nil {
				return geom.PathCollection{}, Stats{}, err
			}
			rowPaths[r][c] = pc
			stats.TextStats.Rendered += cs.TextStats.Rendered
		}
	}

	colX := make([]float64, cols)
	for c := 0; c < cols; c++ {
		colX[c] = float64(c) * colWidth
	}

	out := geom.PathCollection{Units: geom.Mm}
	y := 0.0
	headerHeight := rowHeightOf(headerPaths, opts.BasePointPt)
	for c, pc := range headerPaths {
		out = out.Append(pc.Translate(colX[c]+tableCellPaddingMm, y+tableCellPaddingMm))
		out = out.Append(geom.PathCollection{Units: geom.Mm, Paths: []geom.Path{cellRect(colX[c], y, colWidth, headerHeight)}})
	}
	y += headerHeight

	for _, row := range rowPaths {
		h := rowHeightOf(row, opts.BasePointPt)
		for c, pc := range row {
			out = out.Append(pc.Translate(colX[c]+tableCellPaddingMm, y+tableCellPaddingMm))
			out = out.Append(geom.PathCollection{Units: geom.Mm, Paths: []geom.Path{cellRect(colX[c], y, colWidth, h)}})
		}
		y += h
	}

	stats.TruncatedColumns = truncated
	return out, stats, nil
}

// cellRect returns a closed rectangular polyline for one table cell's
// border, in the table's local coordinate space.
func cellRect(x, y, w, h float64) geom.Path {
	return geom.Path{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
		{X: x, Y: y},
	}
}

// rowHeightOf returns the row's content height clamped below by one
// line-height plus 2×padding (§4.3 step 6), so an empty or short row
// still gets a drawable cell rectangle.
func rowHeightOf(cells []geom.PathCollection, basePt float64) float64 {
	h := 0.0
	for _, c := range cells {
		h = maxFloat(h, c.BBox().Dy())
	}
	floor := basePt*25.4/72.0 + 2*tableCellPaddingMm
	return maxFloat(h+2*tableCellPaddingMm, floor)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
