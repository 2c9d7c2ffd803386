// services/detection_service_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/geo-agent/geo-workflows/internal/models"
	"github.com/geo-agent/geo-workflows/services"
	"github.com/geo-agent/geo-workflows/services/testutil"
)

func TestDetectionServiceValidation(t *testing.T) {
	svc := services.NewDetectionService(testutil.SampleConfig())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *models.DetectionRequest
		wantErr bool
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: true,
		},
		{
			name: "unknown match mode",
			req: &models.DetectionRequest{
				Answers:   []models.Answer{{AnswerText: "hello"}},
				Brands:    testutil.SampleBrands(),
				MatchMode: "fuzzy",
			},
			wantErr: true,
		},
		{
			name: "negative lead window",
			req: &models.DetectionRequest{
				Answers:         []models.Answer{{AnswerText: "hello"}},
				Brands:          testutil.SampleBrands(),
				LeadWindowChars: -1,
			},
			wantErr: true,
		},
		{
			name: "brand with empty name",
			req: &models.DetectionRequest{
				Answers: []models.Answer{{AnswerText: "hello"}},
				Brands:  []models.Brand{{Name: " ", Aliases: []string{"x"}}},
			},
			wantErr: true,
		},
		{
			name: "brand with no aliases",
			req: &models.DetectionRequest{
				Answers: []models.Answer{{AnswerText: "hello"}},
				Brands:  []models.Brand{{Name: "Acme"}},
			},
			wantErr: true,
		},
		{
			name: "empty answers is valid",
			req: &models.DetectionRequest{
				Answers: nil,
				Brands:  testutil.SampleBrands(),
			},
			wantErr: false,
		},
		{
			name: "empty match mode defaults to exact",
			req: &models.DetectionRequest{
				Answers: []models.Answer{{AnswerText: "hello"}},
				Brands:  testutil.SampleBrands(),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Run(ctx, tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectionServiceEmptyModeDefaultsToExact(t *testing.T) {
	svc := services.NewDetectionService(testutil.SampleConfig())

	// An omitted match mode must behave as exact_only: a mid-word hit like
	// "acmeist" does not count.
	req := &models.DetectionRequest{
		Answers: []models.Answer{{AnswerText: "The acmeist movement"}},
		Brands:  []models.Brand{{Name: "ACME", Aliases: []string{"acme"}}},
	}

	report, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if req.MatchMode != models.MatchModeExactOnly {
		t.Errorf("MatchMode normalized to %q, want %q", req.MatchMode, models.MatchModeExactOnly)
	}
	if summary, ok := report.PerPrompt[0].Summary["ACME"]; ok {
		t.Errorf("empty match mode behaved as substring: %d matches, want none", summary.Total)
	}

	// Substring mode, asked for explicitly, does count the mid-word hit
	req.MatchMode = models.MatchModeSubstring
	report, err = svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if report.PerPrompt[0].Summary["ACME"].Total != 1 {
		t.Errorf("substring mode Total = %d, want 1", report.PerPrompt[0].Summary["ACME"].Total)
	}
}

func TestDetectionServiceRun(t *testing.T) {
	svc := services.NewDetectionService(testutil.SampleConfig())

	req := &models.DetectionRequest{
		Answers: []models.Answer{
			{PromptText: "best pizza?", AnswerText: "Seven Seventy is great, and Pizza Palace is close."},
			{PromptText: "where to order?", AnswerText: "Try the new place downtown."},
		},
		Brands: testutil.SampleBrands(),
	}

	report, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(report.PerPrompt) != 2 {
		t.Fatalf("expected 2 per-prompt results, got %d", len(report.PerPrompt))
	}
	if report.Metrics.NPrompts != 2 {
		t.Errorf("NPrompts = %d, want 2", report.Metrics.NPrompts)
	}

	target := report.Metrics.ByBrand["Seven Seventy"]
	if target.PromptsWithMention != 1 {
		t.Errorf("PromptsWithMention = %d, want 1", target.PromptsWithMention)
	}
	if target.MentionRate != 0.5 {
		t.Errorf("MentionRate = %v, want 0.5", target.MentionRate)
	}

	// Defaults should have been applied from config, not mutated into an error
	if req.LeadWindowChars != 300 {
		t.Errorf("LeadWindowChars default = %d, want 300", req.LeadWindowChars)
	}
}
