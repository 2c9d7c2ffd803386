// internal/repository/interfaces.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/geo-agent/geo-workflows/internal/models"
)

// CompanyRepository manages tracked companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
}

// CampaignRepository manages campaign rows and their lifecycle fields.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID uuid.UUID, status string) error
	UpdateProgress(ctx context.Context, campaignID uuid.UUID, completedRuns int) error
	SetVisibility(ctx context.Context, campaignID uuid.UUID, visibility float64) error
	ListScheduled(ctx context.Context) ([]*models.Campaign, error)
}

// PromptRepository manages campaign prompts in input order.
type PromptRepository interface {
	CreateBatch(ctx context.Context, prompts []*models.CampaignPrompt) error
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*models.CampaignPrompt, error)
}

// RunRepository manages executed runs and their detection results.
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*models.Run, error)
	DeleteByCampaign(ctx context.Context, campaignID uuid.UUID) error
}

// Manager bundles the repositories behind a single dependency.
type Manager struct {
	Companies CompanyRepository
	Campaigns CampaignRepository
	Prompts   PromptRepository
	Runs      RunRepository
}

func NewManager(db *sqlx.DB) *Manager {
	return &Manager{
		Companies: NewCompanyRepository(db),
		Campaigns: NewCampaignRepository(db),
		Prompts:   NewPromptRepository(db),
		Runs:      NewRunRepository(db),
	}
}
