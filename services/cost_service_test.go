// services/cost_service_test.go
package services_test

import (
	"math"
	"testing"

	"github.com/geo-agent/geo-workflows/services"
)

func TestCalculateCost(t *testing.T) {
	svc := services.NewCostService()

	tests := []struct {
		name         string
		provider     string
		model        string
		inputTokens  int
		outputTokens int
		websearch    bool
		want         float64
	}{
		{
			name:         "gpt-4.1 without websearch",
			provider:     "openai",
			model:        "gpt-4.1",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         15.00,
		},
		{
			name:         "gpt-4.1 with websearch surcharge",
			provider:     "openai",
			model:        "gpt-4.1",
			inputTokens:  1_000_000,
			outputTokens: 0,
			websearch:    true,
			want:         3.00 + 0.035,
		},
		{
			name:         "claude sonnet",
			provider:     "anthropic",
			model:        "claude-sonnet-4-20250514",
			inputTokens:  500_000,
			outputTokens: 100_000,
			want:         1.50 + 1.50,
		},
		{
			name:         "unknown model falls back to gpt-4.1 pricing",
			provider:     "openai",
			model:        "gpt-99",
			inputTokens:  1_000_000,
			outputTokens: 0,
			want:         3.00,
		},
		{
			name:         "ollama is free",
			provider:     "ollama",
			model:        "llama3:8b",
			inputTokens:  5_000_000,
			outputTokens: 5_000_000,
			want:         0.0,
		},
		{
			name:         "zero tokens",
			provider:     "openai",
			model:        "gpt-4.1",
			inputTokens:  0,
			outputTokens: 0,
			want:         0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CalculateCost(tt.provider, tt.model, tt.inputTokens, tt.outputTokens, tt.websearch)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateCost() = %v, want %v", got, tt.want)
			}
		})
	}
}
