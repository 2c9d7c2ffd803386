// internal/detect/summary.go
package detect

import "github.com/geo-agent/geo-workflows/internal/models"

// Summarize reduces one answer's matches to per-brand totals and first
// occurrence offsets. Brands without matches are absent from the result;
// callers read a missing key as zero occurrences.
func Summarize(matches map[string][]models.Match) models.AnswerSummary {
	summary := models.AnswerSummary{}
	for brand, ms := range matches {
		if len(ms) == 0 {
			continue
		}
		row := models.BrandSummary{Total: len(ms), FirstIndex: ms[0].StartOffset}
		for _, m := range ms[1:] {
			if m.StartOffset < row.FirstIndex {
				row.FirstIndex = m.StartOffset
			}
		}
		summary[brand] = row
	}
	return summary
}

// DetectAnswer runs matching and summarization for a single answer text.
// Brands are counted independently; overlapping spans from different brands
// are not suppressed against each other.
func DetectAnswer(answerText string, brands []models.Brand, mode models.MatchMode) models.AnswerSummary {
	matches := make(map[string][]models.Match, len(brands))
	for _, b := range brands {
		if ms := FindMatches(answerText, b, mode); len(ms) > 0 {
			matches[b.Name] = ms
		}
	}
	return Summarize(matches)
}
