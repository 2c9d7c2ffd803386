// internal/detect/normalize.go
package detect

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalized holds a folded copy of a text plus an index-translation table
// mapping each normalized rune back to the rune offset it came from in the
// original text. The table is what lets the matcher report offsets in
// original-text coordinates even though matching runs on folded text.
type normalized struct {
	runes []rune
	src   []int
}

// normalizeText lowercases, folds accented characters to their base letters
// (NFD decomposition with combining marks stripped), collapses whitespace
// runs to a single space, and trims. Each emitted rune records the rune
// offset of the original character it came from.
func normalizeText(text string) normalized {
	n := normalized{
		runes: make([]rune, 0, len(text)),
		src:   make([]int, 0, len(text)),
	}

	pos := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			// Collapse runs; leading whitespace emits nothing.
			if len(n.runes) > 0 && n.runes[len(n.runes)-1] != ' ' {
				n.runes = append(n.runes, ' ')
				n.src = append(n.src, pos)
			}
			pos++
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if unicode.Is(unicode.Mn, d) {
				continue
			}
			n.runes = append(n.runes, unicode.ToLower(d))
			n.src = append(n.src, pos)
		}
		pos++
	}

	// Whitespace collapsing can leave one trailing space.
	if l := len(n.runes); l > 0 && n.runes[l-1] == ' ' {
		n.runes = n.runes[:l-1]
		n.src = n.src[:l-1]
	}

	return n
}

// Normalize canonicalizes raw text for comparison. Deterministic and total:
// empty input yields the empty string.
func Normalize(text string) string {
	return string(normalizeText(text).runes)
}
