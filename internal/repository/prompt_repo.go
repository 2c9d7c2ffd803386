// internal/repository/prompt_repo.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/geo-agent/geo-workflows/internal/models"
)

type promptRepository struct {
	db *sqlx.DB
}

func NewPromptRepository(db *sqlx.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) CreateBatch(ctx context.Context, prompts []*models.CampaignPrompt) error {
	if len(prompts) == 0 {
		return nil
	}

	query := `
		INSERT INTO campaign_prompts (campaign_prompt_id, campaign_id, prompt_text, order_index)
		VALUES (:campaign_prompt_id, :campaign_id, :prompt_text, :order_index)`

	if _, err := r.db.NamedExecContext(ctx, query, prompts); err != nil {
		return fmt.Errorf("failed to create campaign prompts: %w", err)
	}
	return nil
}

func (r *promptRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*models.CampaignPrompt, error) {
	var prompts []*models.CampaignPrompt
	query := `SELECT * FROM campaign_prompts WHERE campaign_id = $1 ORDER BY order_index ASC`

	if err := r.db.SelectContext(ctx, &prompts, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list campaign prompts: %w", err)
	}
	return prompts, nil
}
