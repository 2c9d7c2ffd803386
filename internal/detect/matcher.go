// internal/detect/matcher.go
package detect

import (
	"sort"
	"unicode"

	"github.com/geo-agent/geo-workflows/internal/models"
)

// FindMatches scans the original answer text for occurrences of the brand's
// aliases and returns non-overlapping matches ordered by start offset.
// Matching happens on normalized text; offsets are translated back to rune
// positions in the original text. Empty aliases never match, and duplicate
// aliases collapse during overlap de-duplication.
func FindMatches(originalText string, brand models.Brand, mode models.MatchMode) []models.Match {
	text := normalizeText(originalText)

	var all []models.Match
	for _, alias := range brand.Aliases {
		needle := normalizeText(alias).runes
		if len(needle) == 0 {
			continue
		}
		all = append(all, scanAlias(text, needle, brand.Name, mode)...)
	}

	return dedupeOverlaps(all)
}

// scanAlias walks the normalized text left to right. After a hit at p with
// length L the scan resumes at p+L, so one alias never overlaps itself.
func scanAlias(text normalized, needle []rune, brandName string, mode models.MatchMode) []models.Match {
	var matches []models.Match
	for p := 0; p+len(needle) <= len(text.runes); {
		if !runesEqual(text.runes[p:p+len(needle)], needle) {
			p++
			continue
		}
		if mode == models.MatchModeExactOnly && !onWordBoundary(text.runes, p, len(needle)) {
			p++
			continue
		}
		matches = append(matches, models.Match{
			BrandName:   brandName,
			StartOffset: text.src[p],
			EndOffset:   text.src[p+len(needle)-1] + 1,
		})
		p += len(needle)
	}
	return matches
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// onWordBoundary reports whether the span [p, p+l) sits between
// non-alphanumeric characters (or string boundaries) in the normalized text.
// Spaces inside the span are fine; multi-word aliases match as phrases.
func onWordBoundary(text []rune, p, l int) bool {
	if p > 0 && isWordRune(text[p-1]) {
		return false
	}
	if p+l < len(text) && isWordRune(text[p+l]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// dedupeOverlaps merges the per-alias match sets of one brand. Matches are
// ordered by start offset (longer first on ties) and any match overlapping an
// earlier-kept span is dropped, so a short alias nested inside an already
// counted phrase alias does not double count.
func dedupeOverlaps(matches []models.Match) []models.Match {
	if len(matches) < 2 {
		return matches
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].StartOffset != matches[j].StartOffset {
			return matches[i].StartOffset < matches[j].StartOffset
		}
		return matches[i].EndOffset > matches[j].EndOffset
	})

	kept := matches[:1]
	for _, m := range matches[1:] {
		if m.StartOffset < kept[len(kept)-1].EndOffset {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
