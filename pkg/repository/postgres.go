package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
}

func (cfg Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBName, cfg.Password, cfg.SSLMode)
}

const schema = `
CREATE TABLE IF NOT EXISTS disbursements (
    id         BIGSERIAL PRIMARY KEY,
    address    TEXT           NOT NULL,
    amount     NUMERIC(20, 0) NOT NULL,
    fee        NUMERIC(20, 0) NOT NULL,
    tx_hash    TEXT           NOT NULL UNIQUE,
    retried    BOOLEAN        NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ    NOT NULL DEFAULT now()
)`

func NewPostgresDB(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// Migrate creates the journal table if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "create disbursements table")
}
