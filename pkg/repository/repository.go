package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"xmr_faucet_back/models"
)

type Journal interface {
	CreateDisbursement(ctx context.Context, d models.Disbursement) (int64, error)
	RecentDisbursements(ctx context.Context, limit int) ([]models.Disbursement, error)
}

type Repository struct {
	Journal
}

// NewRepository stores the journal in Postgres when db is set and in memory otherwise.
func NewRepository(db *sqlx.DB) *Repository {
	if db == nil {
		return &Repository{Journal: NewJournalMemory(defaultMemoryCapacity)}
	}
	return &Repository{Journal: NewJournalPostgres(db)}
}
