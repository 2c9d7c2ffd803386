// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/geo-agent/geo-workflows/services"
)

type ScheduledProcessor struct {
	campaignService services.CampaignService
	client          inngestgo.Client
}

func NewScheduledProcessor(campaignService services.CampaignService) *ScheduledProcessor {
	return &ScheduledProcessor{
		campaignService: campaignService,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// DailyCampaignProcessor re-runs every campaign flagged as scheduled so its
// visibility metrics track model answer drift over time.
func (p *ScheduledProcessor) DailyCampaignProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-campaign-processor",
			Name: "Daily Campaign Processor - Scheduled Re-runs",
		},
		inngestgo.CronTrigger("0 2 * * *"), // Every day at 2 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			// Step 1: Get campaigns flagged for recurring runs
			campaignIDs, err := step.Run(ctx, "get-scheduled-campaigns", func(ctx context.Context) ([]uuid.UUID, error) {
				return p.campaignService.ScheduledCampaignIDs(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get scheduled campaigns: %w", err)
			}

			if len(campaignIDs) == 0 {
				fmt.Printf("[DailyCampaignProcessor] No scheduled campaigns today\n")
				return map[string]interface{}{"campaigns_triggered": 0}, nil
			}

			fmt.Printf("[DailyCampaignProcessor] Triggering %d scheduled campaigns\n", len(campaignIDs))

			// Step 2: Fan out one processing event per campaign so each run
			// gets its own retries and failure isolation.
			triggered, err := step.Run(ctx, "trigger-campaign-events", func(ctx context.Context) (int, error) {
				count := 0
				for _, id := range campaignIDs {
					evt := inngestgo.Event{
						Name: "campaign.process",
						Data: map[string]interface{}{
							"campaign_id":  id.String(),
							"triggered_by": "daily_schedule",
						},
					}
					if _, err := p.client.Send(ctx, evt); err != nil {
						fmt.Printf("[DailyCampaignProcessor] Failed to trigger campaign %s: %v\n", id, err)
						continue
					}
					count++
				}
				return count, nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to trigger campaign events: %w", err)
			}

			return map[string]interface{}{
				"campaigns_scheduled": len(campaignIDs),
				"campaigns_triggered": triggered,
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create DailyCampaignProcessor function: %w", err))
	}
	return fn
}
