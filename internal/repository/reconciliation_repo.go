package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const reconciliationSchema = `
CREATE TABLE IF NOT EXISTS reconciliation_log (
    id          BIGSERIAL PRIMARY KEY,
    operation   TEXT NOT NULL,
    user_id     TEXT NOT NULL,
    cart_id     TEXT NOT NULL DEFAULT '',
    product_id  TEXT NOT NULL DEFAULT '',
    detail      TEXT NOT NULL,
    cause       TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// ReconciliationRepository stores partial multi-step failures so an operator
// can repair cart and stock by hand.
type ReconciliationRepository interface {
	domain.ReconciliationRecorder
	EnsureSchema(ctx context.Context) error
	List(ctx context.Context, limit int) ([]domain.ReconciliationRecord, error)
}

type postgresReconciliationRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresReconciliationRepository(db *sql.DB, logger *logrus.Logger) ReconciliationRepository {
	return &postgresReconciliationRepository{db: db, log: logger}
}

func (r *postgresReconciliationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, reconciliationSchema); err != nil {
		r.log.Errorf("Failed to create reconciliation_log table: %v", err)
		return fmt.Errorf("could not create reconciliation schema: %w", err)
	}
	return nil
}

func (r *postgresReconciliationRepository) Record(ctx context.Context, rec domain.ReconciliationRecord) error {
	query := `
        INSERT INTO reconciliation_log (operation, user_id, cart_id, product_id, detail, cause)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := r.db.QueryRowContext(ctx, query,
		rec.Operation, rec.UserID, rec.CartID, rec.ProductID, rec.Detail, rec.Cause,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to insert reconciliation record for user %s: %v", rec.UserID, err)
		return fmt.Errorf("could not record reconciliation entry: %w", err)
	}
	r.log.Warnf("Reconciliation entry %d recorded: %s for user %s", rec.ID, rec.Operation, rec.UserID)
	return nil
}

func (r *postgresReconciliationRepository) List(ctx context.Context, limit int) ([]domain.ReconciliationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, operation, user_id, cart_id, product_id, detail, cause, created_at
        FROM reconciliation_log
        ORDER BY id DESC
        LIMIT $1
    `
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.log.Errorf("Failed to query reconciliation log: %v", err)
		return nil, fmt.Errorf("could not list reconciliation entries: %w", err)
	}
	defer rows.Close()

	records := []domain.ReconciliationRecord{}
	for rows.Next() {
		var rec domain.ReconciliationRecord
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.UserID, &rec.CartID,
			&rec.ProductID, &rec.Detail, &rec.Cause, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not scan reconciliation entry: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation entries: %w", err)
	}
	return records, nil
}

type logReconciliationRecorder struct {
	log *logrus.Logger
}

// NewLogReconciliationRecorder is used when no database is configured; the
// record only reaches the process log.
func NewLogReconciliationRecorder(logger *logrus.Logger) domain.ReconciliationRecorder {
	return &logReconciliationRecorder{log: logger}
}

func (r *logReconciliationRecorder) Record(_ context.Context, rec domain.ReconciliationRecord) error {
	r.log.WithFields(logrus.Fields{
		"operation":  rec.Operation,
		"user_id":    rec.UserID,
		"cart_id":    rec.CartID,
		"product_id": rec.ProductID,
		"cause":      rec.Cause,
	}).Error("CRITICAL: manual reconciliation required: " + rec.Detail)
	return nil
}
