package repository

import (
	"context"
	"database/sql"
	"errors"

	"parkassist/internal/models"
)

// ErrPaymentNotFound indicates that a session has no payment record.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository handles read access to payment records.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository returns repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetBySessionID returns the payment record for a session. A session has
// at most one payment row visible here.
func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID int64) (*models.Payment, error) {
	const query = `
		SELECT id, session_id, station_id, method, amount_cents, approved, processor_ref, created_at
		FROM payments
		WHERE session_id = $1
		LIMIT 1
	`
	var p models.Payment
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&p.ID,
		&p.SessionID,
		&p.StationID,
		&p.Method,
		&p.AmountCents,
		&p.Approved,
		&p.ProcessorRef,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}
