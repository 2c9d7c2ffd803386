// internal/repository/campaign_repo.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/geo-agent/geo-workflows/internal/models"
)

type campaignRepository struct {
	db *sqlx.DB
}

func NewCampaignRepository(db *sqlx.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (
			campaign_id, company_id, model, match_mode, lead_window_chars,
			runs_per_prompt, status, total_runs, completed_runs, visibility,
			scheduled, created_at, updated_at
		) VALUES (
			:campaign_id, :company_id, :model, :match_mode, :lead_window_chars,
			:runs_per_prompt, :status, :total_runs, :completed_runs, :visibility,
			:scheduled, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	query := `SELECT * FROM campaigns WHERE campaign_id = $1`

	if err := r.db.GetContext(ctx, &campaign, query, campaignID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("campaign %s not found", campaignID)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, campaignID uuid.UUID, status string) error {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE campaign_id = $2`

	if _, err := r.db.ExecContext(ctx, query, status, campaignID); err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	return nil
}

func (r *campaignRepository) UpdateProgress(ctx context.Context, campaignID uuid.UUID, completedRuns int) error {
	query := `UPDATE campaigns SET completed_runs = $1, updated_at = NOW() WHERE campaign_id = $2`

	if _, err := r.db.ExecContext(ctx, query, completedRuns, campaignID); err != nil {
		return fmt.Errorf("failed to update campaign progress: %w", err)
	}
	return nil
}

func (r *campaignRepository) SetVisibility(ctx context.Context, campaignID uuid.UUID, visibility float64) error {
	query := `UPDATE campaigns SET visibility = $1, updated_at = NOW() WHERE campaign_id = $2`

	if _, err := r.db.ExecContext(ctx, query, visibility, campaignID); err != nil {
		return fmt.Errorf("failed to set campaign visibility: %w", err)
	}
	return nil
}

// ListScheduled returns campaigns flagged for recurring re-runs, oldest first.
func (r *campaignRepository) ListScheduled(ctx context.Context) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	query := `SELECT * FROM campaigns WHERE scheduled = TRUE ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &campaigns, query); err != nil {
		return nil, fmt.Errorf("failed to list scheduled campaigns: %w", err)
	}
	return campaigns, nil
}
