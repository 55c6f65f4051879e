package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmr_faucet_back/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestJournalPostgresCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJournalPostgres(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO disbursements")).
		WithArgs("9addr", "1000000000000", "30000000", "abc123", true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.CreateDisbursement(context.Background(), models.Disbursement{
		Address: "9addr",
		Amount:  1_000_000_000_000,
		Fee:     30_000_000,
		TxHash:  "abc123",
		Retried: true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalPostgresRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJournalPostgres(db)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, address, amount, fee, tx_hash, retried, created_at FROM disbursements")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "amount", "fee", "tx_hash", "retried", "created_at"}).
			AddRow(2, "9b", "2000000000000", "1", "h2", false, created).
			AddRow(1, "9a", "1000000000000", "1", "h1", true, created))

	got, err := repo.RecentDisbursements(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "h2", got[0].TxHash)
	assert.Equal(t, uint64(2_000_000_000_000), got[0].Amount)
	assert.True(t, got[1].Retried)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalMemory(t *testing.T) {
	repo := NewJournalMemory(3)
	ctx := context.Background()

	for _, hash := range []string{"a", "b", "c", "d"} {
		_, err := repo.CreateDisbursement(ctx, models.Disbursement{TxHash: hash})
		require.NoError(t, err)
	}

	got, err := repo.RecentDisbursements(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].TxHash)
	assert.Equal(t, int64(4), got[0].ID)
	assert.Equal(t, "b", got[2].TxHash)
	assert.False(t, got[0].CreatedAt.IsZero())

	got, err = repo.RecentDisbursements(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewRepositoryWithoutDB(t *testing.T) {
	repo := NewRepository(nil)
	_, ok := repo.Journal.(*JournalMemory)
	assert.True(t, ok)
}
