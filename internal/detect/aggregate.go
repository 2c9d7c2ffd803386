// internal/detect/aggregate.go
package detect

import "github.com/geo-agent/geo-workflows/internal/models"

// DefaultLeadWindowChars is the lead window used when a request leaves it
// unset: a mention counts as "lead" when its first occurrence starts within
// this many characters of the answer.
const DefaultLeadWindowChars = 300

// Aggregate rolls per-answer summaries into campaign-level brand metrics.
// Every name in brandNames gets a row even with zero mentions; brands that
// only appear in summaries are included too. An empty summary slice yields
// zero rates rather than an error, and SOV is omitted entirely when no brand
// was mentioned at all. Aggregation is a pure reduction: running it twice on
// the same input produces identical metrics.
func Aggregate(summaries []models.AnswerSummary, brandNames []string, leadWindowChars int) models.CampaignMetrics {
	if leadWindowChars <= 0 {
		leadWindowChars = DefaultLeadWindowChars
	}

	names := make(map[string]struct{}, len(brandNames))
	for _, n := range brandNames {
		names[n] = struct{}{}
	}
	for _, s := range summaries {
		for b := range s {
			names[b] = struct{}{}
		}
	}

	n := len(summaries)
	byBrand := make(map[string]models.BrandMetrics, len(names))
	totals := make(map[string]int, len(names))
	grandTotal := 0

	for b := range names {
		withMention, inLead, total := 0, 0, 0
		firstSum := 0.0
		for _, s := range summaries {
			row, ok := s[b]
			if !ok {
				continue
			}
			withMention++
			total += row.Total
			firstSum += float64(row.FirstIndex)
			if row.FirstIndex < leadWindowChars {
				inLead++
			}
		}

		var bm models.BrandMetrics
		bm.PromptsWithMention = withMention
		bm.TotalMentions = total
		if n > 0 {
			bm.MentionRate = float64(withMention) / float64(n)
			bm.LeadMentionRate = float64(inLead) / float64(n)
		}
		if withMention > 0 {
			bm.AvgFirstIndex = firstSum / float64(withMention)
		}

		byBrand[b] = bm
		totals[b] = total
		grandTotal += total
	}

	metrics := models.CampaignMetrics{NPrompts: n, ByBrand: byBrand}
	if grandTotal > 0 {
		sov := make(map[string]float64, len(totals))
		for b, t := range totals {
			sov[b] = float64(t) / float64(grandTotal)
		}
		metrics.SOV = sov
	}
	return metrics
}
