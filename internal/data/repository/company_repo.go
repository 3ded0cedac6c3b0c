package repository

import (
	"context"
	"fmt"

	"agenda-booking/internal/data/entity"
	"agenda-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CompanyRepository is read-only: company management lives elsewhere.
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}

type companyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCompanyRepository(db database.PgxIface, log *zap.Logger) CompanyRepository {
	return &companyRepository{
		db:  db,
		log: log.With(zap.String("repository", "company")),
	}
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	query := `SELECT id, name, email, city, created_at, updated_at FROM companies WHERE id = $1`

	var company entity.Company
	err := r.db.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Email,
		&company.City,
		&company.CreatedAt,
		&company.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find company by ID",
			zap.Error(err),
			zap.String("company_id", id.String()),
		)
		return nil, fmt.Errorf("find company by ID %s: %w", id.String(), err)
	}

	return &company, nil
}
