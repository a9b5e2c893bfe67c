package markdown

import (
	"strings"

	"github.com/axidraft/plotdrive/text"
)

const maxInlineNestingDepth = 16

// parseInline turns Markdown inline markers into a normalized text buffer
// plus style spans (§4.3 step 2). Each style has a single toggle: "*" and
// "_" both toggle Italic and "**" and "__" both toggle Bold, so either
// marker of a pair closes the other ("*_x_*" leaves x unstyled). Markers
// are never written to the buffer; an opening marker that is never closed
// is dropped and the text after it stays unstyled.
func parseInline(s string) (string, []text.Span) {
	type active struct {
		style StyleBit
		start int
	}
	runes := []rune(s)
	var buf strings.Builder
	var openStack []active
	var spans []text.Span

	isActive := func(st StyleBit) int {
		for i := len(openStack) - 1; i >= 0; i-- {
			if openStack[i].style == st {
				return i
			}
		}
		return -1
	}

	i := 0
	for i < len(runes) {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			buf.WriteRune(runes[i+1])
			i += 2
			continue
		}
		if i+1 < len(runes) {
			two := string(runes[i : i+2])
			var st StyleBit
			switch two {
			case "**", "__":
				st = text.StyleBold
			case "~~":
				st = text.StyleStrike
			case "++":
				st = text.StyleUnderline
			}
			if st != 0 {
				if idx := isActive(st); idx >= 0 {
					spans = append(spans, text.Span{Start: openStack[idx].start, Length: buf.Len() - openStack[idx].start, Style: openStack[idx].style})
					openStack = append(openStack[:idx], openStack[idx+1:]...)
				} else if len(openStack) < maxInlineNestingDepth {
					openStack = append(openStack, active{style: st, start: buf.Len()})
				}
				i += 2
				continue
			}
		}
		if r == '*' || r == '_' {
			st := text.StyleItalic
			if idx := isActive(st); idx >= 0 {
				spans = append(spans, text.Span{Start: openStack[idx].start, Length: buf.Len() - openStack[idx].start, Style: openStack[idx].style})
				openStack = append(openStack[:idx], openStack[idx+1:]...)
			} else if len(openStack) < maxInlineNestingDepth {
				openStack = append(openStack, active{style: st, start: buf.Len()})
			}
			i++
			continue
		}
		buf.WriteRune(r)
		i++
	}
	// Any markers left open never close; their text was already written to
	// buf, so nothing further to flush other than leaving them unstyled.
	return buf.String(), spans
}

// StyleBit mirrors text.StyleBit so block rendering files don't need to
// import text solely for the constant names.
type StyleBit = text.StyleBit
