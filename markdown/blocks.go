package markdown

import (
	"strconv"
	"strings"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/geom"
)

type blockKind int

const (
	kindParagraph blockKind = iota
	kindHeading
	kindBlockquote
	kindUnorderedList
	kindOrderedList
	kindTable
)

type listItem struct {
	text   string
	level  int
	number int // 0 for unordered
}

type block struct {
	kind    blockKind
	level   int // heading level 1-3
	text    string
	items   []listItem
	table   *tableBlock
}

type tableBlock struct {
	header []string
	align  []colAlign
	rows   [][]string
}

type colAlign int

const (
	alignDefault colAlign = iota
	alignLeft
	alignRight
	alignCenter
)

// parseBlocks is the top-down block parser of §4.3 step 1: it peeks each
// block type in a fixed priority order and falls through to paragraph
// handling for anything it cannot classify.
func parseBlocks(src string) []block {
	lines := strings.Split(strings.ReplaceAll(src, "\t", "    "), "\n")
	var blocks []block
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		switch {
		case isHeading(lines[i]):
			b, n := parseHeading(lines[i])
			blocks = append(blocks, b)
			i += n
		case isBlockquote(lines[i]):
			b, n := parseBlockquote(lines[i:])
			blocks = append(blocks, b)
			i += n
		case isOrderedListItem(lines[i]):
			b, n := parseOrderedList(lines[i:])
			blocks = append(blocks, b)
			i += n
		case isUnorderedListItem(lines[i]):
			b, n := parseUnorderedList(lines[i:])
			blocks = append(blocks, b)
			i += n
		case isTableStart(lines[i:]):
			b, n := parseTable(lines[i:])
			blocks = append(blocks, b)
			i += n
		default:
			b, n := parseParagraph(lines[i:])
			blocks = append(blocks, b)
			i += n
		}
	}
	return blocks
}

func isHeading(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "#")
}

func parseHeading(line string) (block, int) {
	t := strings.TrimSpace(line)
	level := 0
	for level < len(t) && t[level] == '#' {
		level++
	}
	if level > 3 {
		level = 3
	}
	body := strings.TrimSpace(t[min(level, len(t)):])
	return block{kind: kindHeading, level: level, text: body}, 1
}

func isBlockquote(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ">")
}

func parseBlockquote(lines []string) (block, int) {
	var parts []string
	n := 0
	for n < len(lines) && isBlockquote(lines[n]) {
		t := strings.TrimSpace(lines[n])
		t = strings.TrimPrefix(t, ">")
		parts = append(parts, strings.TrimSpace(t))
		n++
	}
	return block{kind: kindBlockquote, text: strings.Join(parts, " ")}, n
}

func isUnorderedListItem(line string) bool {
	t := strings.TrimLeft(line, " ")
	return strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") || strings.HasPrefix(t, "+ ")
}

func parseUnorderedList(lines []string) (block, int) {
	var items []listItem
	n := 0
	for n < len(lines) && isUnorderedListItem(lines[n]) {
		indent := leadingSpaces(lines[n])
		t := strings.TrimLeft(lines[n], " ")
		t = t[2:]
		items = append(items, listItem{text: strings.TrimSpace(t), level: indent / 2})
		n++
	}
	return block{kind: kindUnorderedList, items: items}, n
}

func isOrderedListItem(line string) bool {
	t := strings.TrimLeft(line, " ")
	dot := strings.IndexByte(t, '.')
	if dot <= 0 || dot+1 >= len(t) || t[dot+1] != ' ' {
		return false
	}
	_, err := strconv.Atoi(t[:dot])
	return err == nil
}

func parseOrderedList(lines []string) (block, int) {
	var items []listItem
	n := 0
	counters := map[int]int{}
	for n < len(lines) && isOrderedListItem(lines[n]) {
		indent := leadingSpaces(lines[n])
		level := indent / 2
		t := strings.TrimLeft(lines[n], " ")
		dot := strings.IndexByte(t, '.')
		num, _ := strconv.Atoi(t[:dot])
		_ = num
		counters[level]++
		items = append(items, listItem{text: strings.TrimSpace(t[dot+1:]), level: level, number: counters[level]})
		n++
	}
	return block{kind: kindOrderedList, items: items}, n
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func isTableStart(lines []string) bool {
	if len(lines) < 2 {
		return false
	}
	if !strings.Contains(lines[0], "|") {
		return false
	}
	return isSeparatorRow(lines[1])
}

func isSeparatorRow(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.Contains(t, "-") {
		return false
	}
	cells := splitTableRow(t)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, ":")
		c = strings.TrimSuffix(c, ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}

func splitTableRow(line string) []string {
	t := strings.TrimSpace(line)
	t = strings.TrimPrefix(t, "|")
	t = strings.TrimSuffix(t, "|")
	return strings.Split(t, "|")
}

func parseTable(lines []string) (block, int) {
	header := mapTrim(splitTableRow(lines[0]))
	aligns := parseAligns(splitTableRow(lines[1]))
	n := 2
	var rows [][]string
	for n < len(lines) && strings.Contains(lines[n], "|") && strings.TrimSpace(lines[n]) != "" {
		rows = append(rows, mapTrim(splitTableRow(lines[n])))
		n++
	}
	return block{kind: kindTable, table: &tableBlock{header: header, align: aligns, rows: rows}}, n
}

func parseAligns(cells []string) []colAlign {
	out := make([]colAlign, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(c)
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[i] = alignCenter
		case right:
			out[i] = alignRight
		case left:
			out[i] = alignLeft
		default:
			out[i] = alignDefault
		}
	}
	return out
}

func mapTrim(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func parseParagraph(lines []string) (block, int) {
	var parts []string
	n := 0
	for n < len(lines) {
		line := lines[n]
		if strings.TrimSpace(line) == "" {
			break
		}
		if n > 0 && (isHeading(line) || isBlockquote(line) || isUnorderedListItem(line) ||
			isOrderedListItem(line) || isTableStart(lines[n:])) {
			break
		}
		parts = append(parts, strings.TrimSpace(line))
		n++
	}
	if n == 0 {
		n = 1
	}
	return block{kind: kindParagraph, text: strings.Join(parts, " ")}, n
}

func (b block) render(catalog *font.Catalog, opts Options) (geom.PathCollection, Stats, error) {
	switch b.kind {
	case kindHeading:
		return renderParagraphLike(catalog, b.text, headingSize[b.level], opts, 0)
	case kindBlockquote:
		return renderBlockquote(catalog, b, opts)
	case kindUnorderedList, kindOrderedList:
		return renderList(catalog, b, opts)
	case kindTable:
		return renderTable(catalog, b, opts)
	default:
		return renderParagraphLike(catalog, b.text, opts.BasePointPt, opts, 0)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
