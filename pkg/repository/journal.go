package repository

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"xmr_faucet_back/models"
)

type JournalPostgres struct {
	db *sqlx.DB
}

func NewJournalPostgres(db *sqlx.DB) *JournalPostgres {
	return &JournalPostgres{db: db}
}

func (r *JournalPostgres) CreateDisbursement(ctx context.Context, d models.Disbursement) (int64, error) {
	var id int64
	query := `
        INSERT INTO disbursements (address, amount, fee, tx_hash, retried)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err := r.db.QueryRowxContext(ctx, query,
		d.Address,
		strconv.FormatUint(d.Amount, 10),
		strconv.FormatUint(d.Fee, 10),
		d.TxHash,
		d.Retried,
	).Scan(&id)
	return id, errors.Wrap(err, "insert disbursement")
}

func (r *JournalPostgres) RecentDisbursements(ctx context.Context, limit int) ([]models.Disbursement, error) {
	var out []models.Disbursement
	query := `SELECT id, address, amount, fee, tx_hash, retried, created_at FROM disbursements ORDER BY id DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, errors.Wrap(err, "select disbursements")
	}
	return out, nil
}
