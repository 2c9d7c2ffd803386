// internal/repository/company_repo.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/geo-agent/geo-workflows/internal/models"
)

type companyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (company_id, name, variants, competitors, created_at)
		VALUES (:company_id, :name, :variants, :competitors, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	var company models.Company
	query := `SELECT * FROM companies WHERE company_id = $1`

	if err := r.db.GetContext(ctx, &company, query, companyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("company %s not found", companyID)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}
