// workflows/campaign_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/models"
	"github.com/geo-agent/geo-workflows/services"
)

type CampaignProcessor struct {
	campaignService services.CampaignService
	exportService   services.ExportService
	client          inngestgo.Client
	cfg             *config.Config
}

func NewCampaignProcessor(
	campaignService services.CampaignService,
	exportService services.ExportService,
	cfg *config.Config,
) *CampaignProcessor {
	return &CampaignProcessor{
		campaignService: campaignService,
		exportService:   exportService,
		cfg:             cfg,
	}
}

func (p *CampaignProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// ProcessCampaign executes a campaign's prompt matrix as a durable workflow:
// load the campaign, run every prompt through the model and the mention
// detector, then export the results.
func (p *CampaignProcessor) ProcessCampaign() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-campaign",
			Name:    "Process Campaign - Brand Visibility Pipeline",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("campaign.process", nil),
		func(ctx context.Context, input inngestgo.Input[CampaignProcessEvent]) (any, error) {
			campaignID, err := uuid.Parse(input.Event.Data.CampaignID)
			if err != nil {
				return nil, fmt.Errorf("invalid campaign ID: %w", err)
			}
			fmt.Printf("[ProcessCampaign] Starting brand visibility pipeline for campaign: %s\n", campaignID)

			// Step 1: Validate the campaign exists before burning provider budget
			campaign, err := step.Run(ctx, "load-campaign", func(ctx context.Context) (*models.Campaign, error) {
				c, err := p.campaignService.GetCampaign(ctx, campaignID)
				if err != nil {
					return nil, fmt.Errorf("failed to load campaign: %w", err)
				}
				fmt.Printf("[ProcessCampaign] Loaded campaign %s: model=%s, runs_per_prompt=%d\n",
					c.CampaignID, c.Model, c.RunsPerPrompt)
				return c, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 1 failed: %w", err)
			}

			// Step 2: Execute Prompt Matrix & Store Runs
			summary, err := step.Run(ctx, "run-prompt-matrix", func(ctx context.Context) (*services.CampaignRunSummary, error) {
				fmt.Printf("[ProcessCampaign] Step 2: Executing prompt matrix\n")
				result, err := p.campaignService.RunCampaign(ctx, campaignID)
				if err != nil {
					return nil, fmt.Errorf("failed to run campaign: %w", err)
				}

				fmt.Printf("[ProcessCampaign] Completed %d/%d runs, visibility %.1f, cost $%.4f\n",
					result.CompletedRuns, result.TotalRuns, result.Visibility, result.TotalCost)
				return result, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 2 failed: %w", err)
			}

			// Step 3: Export Results to CSV
			exportPath, err := step.Run(ctx, "export-results", func(ctx context.Context) (string, error) {
				if summary.CompletedRuns == 0 {
					return "", nil // Nothing to export
				}
				path, err := p.exportService.ExportCampaignCSV(ctx, campaignID)
				if err != nil {
					return "", fmt.Errorf("failed to export campaign: %w", err)
				}
				return path, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 3 failed: %w", err)
			}

			finalResult := map[string]interface{}{
				"campaign_id":  campaignID.String(),
				"model":        campaign.Model,
				"status":       "completed",
				"pipeline":     "brand_visibility",
				"run_summary":  summary,
				"export_path":  exportPath,
				"completed_at": time.Now().UTC(),
			}

			fmt.Printf("[ProcessCampaign] Pipeline complete for campaign %s\n", campaignID)

			return finalResult, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create ProcessCampaign function: %w", err))
	}
	return fn
}

// Event types
type CampaignProcessEvent struct {
	CampaignID  string `json:"campaign_id"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}
