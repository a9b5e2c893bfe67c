package text

import (
	"strings"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/geom"
)

type engine struct {
	catalog    *font.Catalog
	base       *font.Face
	fallback   *font.FallbackResolver
	scale      float64
	opts       Options
	spans      []Span
	lineHeight float64
}

// word is a run of non-space bytes plus the single space (if any) that
// follows it, so line breaking stays word-granular (§4.2 step 4).
type word struct {
	start, length int // byte range of the word itself, no trailing space
	hasSpace      bool
}

func splitWords(s string) []word {
	var words []word
	i := 0
	n := len(s)
	for i < n {
		for i < n && isBreakingSpace(rune(s[i])) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && !isBreakingSpace(rune(s[i])) {
			_, sz := decodeRune(s[i:])
			i += sz
		}
		w := word{start: start, length: i - start}
		j := i
		for j < n && isBreakingSpace(rune(s[j])) {
			j++
		}
		w.hasSpace = j > i
		words = append(words, w)
		i = j
	}
	return words
}

func decodeRune(s string) (rune, int) {
	for i, r := range s {
		_ = i
		return r, len(string(r))
	}
	return 0, 1
}

func isBreakingSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

func (e *engine) run(normalized string) (Result, error) {
	res := Result{Stats: Stats{ResolvedFace: e.base.DisplayName}}
	frameWidthUnits := e.opts.FrameWidth
	if e.opts.Units == geom.Inch {
		frameWidthUnits *= 25.4
	}

	lines := e.breakLines(normalized, frameWidthUnits, &res.Stats)

	var all geom.PathCollection
	all.Units = geom.Mm
	baselineY := e.base.Metrics.Ascent * e.scale

	for _, ln := range lines {
		lineText := normalized[ln.byteStart : ln.byteStart+ln.byteLen]
		paths, width, decorations := e.shapeLine(lineText, ln.byteStart, baselineY, &res.Stats)

		xOffset := e.alignOffset(width, frameWidthUnits)
		translated := paths.Translate(xOffset, 0)
		all = all.Append(translated)
		for _, d := range decorations {
			d = d.Translate(xOffset, 0)
			all = all.Append(d)
		}

		res.Lines = append(res.Lines, LineInfo{
			ByteStart:  ln.byteStart,
			ByteLen:    ln.byteLen,
			Width:      width,
			XOffset:    xOffset,
			BaselineY:  baselineY,
			Hyphenated: ln.hyphenated,
		})
		baselineY += e.lineHeight
	}
	res.Paths = all
	res.BBox = all.BBox()
	if e.opts.Units == geom.Inch {
		res.Paths = geom.ConvertUnits(res.Paths, geom.Inch)
		res.BBox = res.Paths.BBox()
	}
	return res, nil
}

func (e *engine) alignOffset(lineWidth, frameWidth float64) float64 {
	if frameWidth <= 0 {
		return 0
	}
	switch e.opts.Align {
	case AlignCenter:
		return (frameWidth - lineWidth) / 2
	case AlignRight:
		return frameWidth - lineWidth
	default:
		return 0
	}
}

type brokenLine struct {
	byteStart, byteLen int
	hyphenated         bool
}

// breakLines implements §4.2 step 4: greedy, word-granular line breaking
// with hyphenation / hard-split / overflow for over-long words.
func (e *engine) breakLines(s string, frameWidth float64, stats *Stats) []brokenLine {
	var lines []brokenLine
	words := splitWords(s)
	if len(words) == 0 {
		return nil
	}
	spaceWidth := e.advanceOf(' ')

	lineStart := 0
	lineWidth := 0.0
	lineHasContent := false

	flush := func(end int) {
		if end > lineStart {
			lines = append(lines, brokenLine{byteStart: lineStart, byteLen: end - lineStart})
		}
	}

	i := 0
	for i < len(words) {
		w := words[i]
		wordStr := s[w.start : w.start+w.length]
		wordWidth := e.measure(wordStr)

		if frameWidth > 0 && wordWidth > frameWidth {
			if lineHasContent {
				flush(words[i-1].start + words[i-1].length)
				lineStart = w.start
				lineWidth = 0
				lineHasContent = false
			}
			parts, hyph := e.splitOverlongWord(wordStr, frameWidth, stats)
			offset := w.start
			for pi, part := range parts {
				partLen := len(part)
				isLast := pi == len(parts)-1
				hyphenated := hyph && !isLast
				if hyphenated {
					partLen-- // the appended "-" is not in the input buffer
				}
				lines = append(lines, brokenLine{byteStart: offset, byteLen: partLen, hyphenated: hyphenated})
				offset += partLen
			}
			lineStart = offset
			lineWidth = 0
			lineHasContent = false
			i++
			continue
		}

		extra := wordWidth
		if lineHasContent {
			extra += spaceWidth
		}
		if frameWidth > 0 && lineHasContent && lineWidth+extra > frameWidth {
			flush(words[i-1].start + words[i-1].length)
			lineStart = w.start
			lineWidth = wordWidth
			lineHasContent = true
		} else {
			lineWidth += extra
			lineHasContent = true
		}
		i++
	}
	if lineHasContent {
		flush(words[len(words)-1].start + words[len(words)-1].length)
	}
	return lines
}

// splitOverlongWord breaks a single word that alone exceeds frameWidth,
// either on a soft hyphenation point or at a hard character boundary.
func (e *engine) splitOverlongWord(word string, frameWidth float64, stats *Stats) ([]string, bool) {
	if e.opts.Hyphenate && languageAllowsHyphenation(e.opts.Language) {
		if points := hyphenationPoints(word); len(points) > 0 {
			parts := make([]string, 0, len(points)+1)
			prev := 0
			for _, p := range points {
				parts = append(parts, word[prev:p]+"-")
				prev = p
			}
			parts = append(parts, word[prev:])
			return parts, true
		}
	}
	if e.opts.BreakLongWords {
		var parts []string
		start := 0
		width := 0.0
		for i, r := range word {
			rw := e.advanceOf(r)
			if width+rw > frameWidth && i > start {
				parts = append(parts, word[start:i])
				start = i
				width = 0
			}
			width += rw
		}
		parts = append(parts, word[start:])
		return parts, false
	}
	stats.OverflowBreaks++
	return []string{word}, false
}

func (e *engine) measure(s string) float64 {
	var w float64
	for _, r := range s {
		w += e.advanceOf(r)
	}
	return w
}

func (e *engine) advanceOf(r rune) float64 {
	face := e.fallback.FaceFor(r)
	if face == nil {
		return 0
	}
	if g, ok := face.Glyphs[r]; ok {
		return g.Advance * e.scale
	}
	return face.Metrics.UnitsPerEm * 0.5 * e.scale
}

// shapeLine emits glyph polylines for one already-broken line, returning
// the assembled paths, total advance width, and any decoration paths
// (underline/strike) computed from active spans.
func (e *engine) shapeLine(s string, byteOffset int, baselineY float64, stats *Stats) (geom.PathCollection, float64, []geom.PathCollection) {
	var out geom.PathCollection
	out.Units = geom.Mm
	penX := 0.0

	type run struct {
		start, end int
		style      StyleBit
	}
	var decoRuns []run
	var curStyle StyleBit
	curStart := 0

	for idx, r := range s {
		absPos := byteOffset + idx
		style := e.styleAt(absPos)
		if style != curStyle {
			if idx > curStart {
				decoRuns = append(decoRuns, run{start: curStart, end: idx, style: curStyle})
			}
			curStyle = style
			curStart = idx
		}
		face := e.selectFace(r, style)
		if face == nil {
			continue
		}
		g, ok := face.Glyphs[r]
		if !ok {
			stats.Missing++
			penX += e.advanceOf(r)
			continue
		}
		stats.Rendered++
		slant := 0.0
		if style&StyleItalic != 0 && !face.Styles.Has(font.Italic) {
			slant = 0.22 // synthesize an oblique when no italic variant exists
		}
		for _, stroke := range g.Strokes {
			path := make(geom.Path, 0, len(stroke))
			for _, p := range stroke {
				x := penX + (p.X+p.Y*slant)*e.scale
				y := baselineY - p.Y*e.scale
				path = append(path, geom.Point{X: x, Y: y})
			}
			out.Paths = append(out.Paths, path)
			if style&StyleBold != 0 && !face.Styles.Has(font.Bold) {
				// synthesize emphasis: duplicate the stroke offset by a
				// hairline so the pen effectively double-strikes it.
				dup := make(geom.Path, len(path))
				for i, p := range path {
					dup[i] = geom.Point{X: p.X + 0.15, Y: p.Y}
				}
				out.Paths = append(out.Paths, dup)
			}
		}
		penX += g.Advance * e.scale
	}
	if len(s) > curStart {
		decoRuns = append(decoRuns, run{start: curStart, end: len(s), style: curStyle})
	}

	var decorations []geom.PathCollection
	runPenX := 0.0
	ri := 0
	penX2 := 0.0
	for idx, r := range s {
		if ri < len(decoRuns) && idx == decoRuns[ri].start {
			runPenX = penX2
		}
		penX2 += e.advanceOf(r)
		if ri < len(decoRuns) && idx+len(string(r)) == decoRuns[ri].end {
			rn := decoRuns[ri]
			if rn.style&StyleUnderline != 0 {
				decorations = append(decorations, decorationLine(runPenX, penX2, baselineY+e.underlineOffset()))
			}
			if rn.style&StyleStrike != 0 {
				decorations = append(decorations, decorationLine(runPenX, penX2, baselineY-e.strikeOffset()))
			}
			ri++
		}
	}
	return out, penX, decorations
}

func decorationLine(x0, x1, y float64) geom.PathCollection {
	return geom.PathCollection{Units: geom.Mm, Paths: []geom.Path{{{X: x0, Y: y}, {X: x1, Y: y}}}}
}

func (e *engine) underlineOffset() float64 {
	return 0.08 * e.base.Metrics.UnitsPerEm * e.scale / e.base.Metrics.UnitsPerEm * 1.0 * 1.0 * 1.2
}

func (e *engine) strikeOffset() float64 {
	return e.base.Metrics.XHeight * e.scale * 0.4
}

func (e *engine) styleAt(bytePos int) StyleBit {
	var s StyleBit
	for _, sp := range e.spans {
		if bytePos >= sp.Start && bytePos < sp.Start+sp.Length {
			s |= sp.Style
		}
	}
	return s
}

func (e *engine) selectFace(r rune, style StyleBit) *font.Face {
	base := e.fallback.FaceFor(r)
	if base == nil {
		return nil
	}
	if style&(StyleBold|StyleItalic) == 0 {
		return base
	}
	wantBold := style&StyleBold != 0
	wantItalic := style&StyleItalic != 0
	key := familyKeyOf(base)
	for _, f := range e.catalog.Families() {
		if f.Key != key {
			continue
		}
		for _, v := range f.Variants {
			if v.Styles.Has(font.Bold) == wantBold && v.Styles.Has(font.Italic) == wantItalic && v.Covers(r) {
				return v
			}
		}
	}
	return base
}

func familyKeyOf(f *font.Face) string {
	// Families are keyed by normalized display name; reuse the same
	// normalization the catalog applies so lookups agree.
	return strings.ToLower(strings.TrimSpace(trimStyleWords(f.DisplayName)))
}

func trimStyleWords(s string) string {
	lower := strings.ToLower(s)
	for _, suf := range []string{" bold italic", " italic bold", " bold", " italic", " oblique", " regular"} {
		lower = strings.TrimSuffix(lower, suf)
	}
	return lower
}
