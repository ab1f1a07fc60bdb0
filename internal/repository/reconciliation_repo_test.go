package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciliationEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS reconciliation_log").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresReconciliationRepository(db, quietLogger())
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconciliationRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO reconciliation_log").
		WithArgs("checkout", "u1", "c2", "", "1 of 3 entries deleted", "status 500").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	repo := NewPostgresReconciliationRepository(db, quietLogger())
	err = repo.Record(context.Background(), domain.ReconciliationRecord{
		Operation: "checkout",
		UserID:    "u1",
		CartID:    "c2",
		Detail:    "1 of 3 entries deleted",
		Cause:     "status 500",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconciliationRecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO reconciliation_log").WillReturnError(errors.New("connection reset"))

	repo := NewPostgresReconciliationRepository(db, quietLogger())
	err = repo.Record(context.Background(), domain.ReconciliationRecord{Operation: "remove", UserID: "u1"})
	assert.ErrorContains(t, err, "could not record reconciliation entry")
}

func TestReconciliationList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "operation", "user_id", "cart_id", "product_id", "detail", "cause", "created_at"}).
		AddRow(int64(2), "remove", "u1", "c1", "p1", "stock restored, delete failed", "status 500", created).
		AddRow(int64(1), "add", "u2", "", "p9", "stock reserved, cart create failed", "timeout", created)
	mock.ExpectQuery("SELECT id, operation, user_id").WithArgs(50).WillReturnRows(rows)

	repo := NewPostgresReconciliationRepository(db, quietLogger())
	records, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, "p9", records[1].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogReconciliationRecorder(t *testing.T) {
	rec := NewLogReconciliationRecorder(quietLogger())
	assert.NoError(t, rec.Record(context.Background(), domain.ReconciliationRecord{Operation: "checkout"}))
}
