package text

import (
	"strings"

	"golang.org/x/text/language"
)

// hyphenationMatcher resolves a BCP-47 language hint to whichever of its
// supported tags is closest; only the English-family entry is supported
// since the heuristic affix table below is English-specific.
var hyphenationMatcher = language.NewMatcher([]language.Tag{language.English})

// languageAllowsHyphenation reports whether tag (empty defaults to
// English) resolves to the English-family entry in hyphenationMatcher.
// Unsupported languages skip hyphenation rather than splitting foreign
// words on English prefixes/suffixes that don't apply to them.
func languageAllowsHyphenation(tag string) bool {
	if tag == "" {
		return true
	}
	parsed, _, confidence := hyphenationMatcher.Match(language.Make(tag))
	return confidence > language.No && parsed == language.English
}

// hyphenationPoints returns byte offsets within word where a soft hyphen
// break may be inserted. This is "soft break on hard-coded hyphenation
// opportunities" per the Open Questions decision in SPEC_FULL.md: no
// dictionary is shipped, only a small heuristic table of common
// prefixes/suffixes plus a vowel-cluster fallback.
func hyphenationPoints(word string) []int {
	if len([]rune(word)) < 6 {
		return nil
	}
	lower := strings.ToLower(word)

	var points []int
	for _, suf := range commonSuffixes {
		if strings.HasSuffix(lower, suf) && len(word) > len(suf)+2 {
			points = append(points, len(word)-len(suf))
			break
		}
	}
	for _, pre := range commonPrefixes {
		if strings.HasPrefix(lower, pre) && len(word) > len(pre)+2 {
			points = append(points, len(pre))
			break
		}
	}
	if len(points) == 0 {
		points = vowelClusterBreaks(word)
	}
	return dedupeSortedInts(points)
}

var commonPrefixes = []string{"un", "re", "pre", "dis", "over", "under", "inter"}
var commonSuffixes = []string{"ing", "tion", "sion", "ment", "ness", "able", "ible", "ed", "ly"}

// vowelClusterBreaks finds boundaries between a vowel and the following
// consonant as a crude syllable-edge heuristic, skipping the first and
// last two characters so a break point is never at the very edge of the
// word.
func vowelClusterBreaks(word string) []int {
	runes := []rune(word)
	var points []int
	byteOffset := 0
	offsets := make([]int, len(runes)+1)
	for i, r := range runes {
		offsets[i] = byteOffset
		byteOffset += len(string(r))
	}
	offsets[len(runes)] = byteOffset
	for i := 2; i < len(runes)-2; i++ {
		if isVowel(runes[i]) && !isVowel(runes[i+1]) {
			points = append(points, offsets[i+1])
		}
	}
	if len(points) > 1 {
		mid := points[len(points)/2]
		return []int{mid}
	}
	return points
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}

func dedupeSortedInts(in []int) []int {
	if len(in) == 0 {
		return in
	}
	seen := map[int]bool{}
	out := in[:0:0]
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	// simple insertion sort; these slices are tiny
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
