package postgres

import (
	"context"
	"errors"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/infrastructure/db"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CompanyRepository struct {
	db  db.Querier
	log *zap.Logger
}

func NewCompanyRepository(db db.Querier, log *zap.Logger) *CompanyRepository {
	if db == nil {
		log.Fatal("database querier is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &CompanyRepository{
		db:  db,
		log: log,
	}
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entities.Company, error) {
	query := `SELECT id, name, contact_email, contact_phone, website, address, city
		FROM companies WHERE id = $1`

	company := entities.Company{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.ContactEmail,
		&company.ContactPhone,
		&company.Website,
		&company.Address,
		&company.City,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exceptions.NotFound(exceptions.ResourceCompany, id)
		}
		r.log.Error("failed to get company", zap.Error(err))
		return nil, err
	}
	return &company, nil
}
