// internal/repository/run_repo.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/geo-agent/geo-workflows/internal/models"
)

type runRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (
			run_id, campaign_id, campaign_prompt_id, run_index, model,
			response_text, appear_answer, appear_lead, first_pos, brand_hits,
			comp_hits, sources, cost, created_at
		) VALUES (
			:run_id, :campaign_id, :campaign_prompt_id, :run_index, :model,
			:response_text, :appear_answer, :appear_lead, :first_pos, :brand_hits,
			:comp_hits, :sources, :cost, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *runRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*models.Run, error) {
	var runs []*models.Run
	query := `
		SELECT r.* FROM runs r
		JOIN campaign_prompts p ON p.campaign_prompt_id = r.campaign_prompt_id
		WHERE r.campaign_id = $1
		ORDER BY p.order_index ASC, r.run_index ASC`

	if err := r.db.SelectContext(ctx, &runs, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DeleteByCampaign clears previous results before a scheduled re-run.
func (r *runRepository) DeleteByCampaign(ctx context.Context, campaignID uuid.UUID) error {
	query := `DELETE FROM runs WHERE campaign_id = $1`

	if _, err := r.db.ExecContext(ctx, query, campaignID); err != nil {
		return fmt.Errorf("failed to delete runs: %w", err)
	}
	return nil
}
