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

// ClientRepository is read-only here: client CRUD belongs to the
// storefront, reconciliation only resolves payer identities.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	FindByEmail(ctx context.Context, email string) (*entity.Client, error)
}

type clientRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewClientRepository(db database.PgxIface, log *zap.Logger) ClientRepository {
	return &clientRepository{
		db:  db,
		log: log.With(zap.String("repository", "client")),
	}
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	query := `SELECT id, name, email, cpf, city, created_at, updated_at FROM clients WHERE id = $1`

	var client entity.Client
	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.CPF,
		&client.City,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find client by ID",
			zap.Error(err),
			zap.String("client_id", id.String()),
		)
		return nil, fmt.Errorf("find client by ID %s: %w", id.String(), err)
	}

	return &client, nil
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*entity.Client, error) {
	query := `SELECT id, name, email, cpf, city, created_at, updated_at FROM clients WHERE email = $1`

	var client entity.Client
	err := r.db.QueryRow(ctx, query, email).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.CPF,
		&client.City,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find client by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find client by email %s: %w", email, err)
	}

	return &client, nil
}
