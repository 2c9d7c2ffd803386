// internal/detect/report.go
package detect

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/geo-agent/geo-workflows/internal/models"
)

const defaultMaxConcurrency = 4

// RunReport executes the full detection pipeline for a batch of answers.
// Answers are independent, so per-answer detection runs on a bounded worker
// pool; the aggregation is a single pass once every summary is in. The
// per_prompt slice preserves input order 1:1 with the request's answers.
//
// The core is total on well-formed input: validation of brands, match mode
// and lead window belongs to the caller.
func RunReport(ctx context.Context, req *models.DetectionRequest) *models.DetectionReport {
	results := make([]models.PromptResult, len(req.Answers))

	limit := req.MaxConcurrency
	if limit <= 0 {
		limit = defaultMaxConcurrency
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ans := range req.Answers {
		g.Go(func() error {
			results[i] = models.PromptResult{
				Prompt:     ans.PromptText,
				AnswerText: ans.AnswerText,
				Summary:    DetectAnswer(ans.AnswerText, req.Brands, req.MatchMode),
			}
			return nil
		})
	}
	// Workers never return errors; the group is only a concurrency bound.
	_ = g.Wait()

	summaries := make([]models.AnswerSummary, len(results))
	for i, r := range results {
		summaries[i] = r.Summary
	}

	names := make([]string, 0, len(req.Brands))
	for _, b := range req.Brands {
		names = append(names, b.Name)
	}

	return &models.DetectionReport{
		PerPrompt: results,
		Metrics:   Aggregate(summaries, names, req.LeadWindowChars),
	}
}
