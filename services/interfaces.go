// services/interfaces.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"github.com/geo-agent/geo-workflows/internal/models"
)

// AIProvider interface for different AI models
type AIProvider interface {
	RunQuestion(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error)
	GetProviderName() string
}

// AIResponse contains the response from an AI provider
type AIResponse struct {
	Response     string   `json:"response"`
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	Cost         float64  `json:"cost"`
	Citations    []string `json:"citations,omitempty"`
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, webSearch bool) float64
}

// DetectionService runs the brand-mention detection contract: validation at
// the boundary, then the total detection core.
type DetectionService interface {
	Run(ctx context.Context, req *models.DetectionRequest) (*models.DetectionReport, error)
}

// AnswerCache is a content-addressed read-through cache for provider answers.
// Keys are derived from (provider, model, prompt), so entries never need
// invalidation.
type AnswerCache interface {
	Get(ctx context.Context, provider, model, prompt string) (*AIResponse, error)
	Set(ctx context.Context, provider, model, prompt string, resp *AIResponse) error
}

// CreateCampaignInput is the payload for registering a new campaign.
type CreateCampaignInput struct {
	CompanyID       uuid.UUID `json:"company_id"`
	Prompts         []string  `json:"prompts"`
	Model           string    `json:"model"`
	RunsPerPrompt   int       `json:"runs_per_prompt"`
	MatchMode       string    `json:"match_mode"`
	LeadWindowChars int       `json:"lead_window_chars"`
	Scheduled       bool      `json:"scheduled"`
}

// CampaignRunSummary is the result of executing a campaign's prompt matrix.
type CampaignRunSummary struct {
	CampaignID       uuid.UUID               `json:"campaign_id"`
	TotalRuns        int                     `json:"total_runs"`
	CompletedRuns    int                     `json:"completed_runs"`
	FailedRuns       int                     `json:"failed_runs"`
	TotalCost        float64                 `json:"total_cost"`
	Visibility       float64                 `json:"visibility"`
	Metrics          *models.CampaignMetrics `json:"metrics,omitempty"`
	ProcessingErrors []string                `json:"processing_errors,omitempty"`
}

type CampaignService interface {
	CreateCampaign(ctx context.Context, input *CreateCampaignInput) (*models.Campaign, error)
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error)
	RunCampaign(ctx context.Context, campaignID uuid.UUID) (*CampaignRunSummary, error)
	CampaignMetrics(ctx context.Context, campaignID uuid.UUID) (*models.CampaignMetrics, error)
	ScheduledCampaignIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PromptService interface {
	GeneratePrompts(ctx context.Context, businessType, location string, count int) ([]string, error)
}

type ExportService interface {
	ExportCampaignCSV(ctx context.Context, campaignID uuid.UUID) (string, error)
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
