package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"parkassist/internal/models"
	"parkassist/internal/repository"
)

// Errors re-exported from the repository layer for callers matching on
// the service boundary.
var (
	ErrPaymentNotFound = repository.ErrPaymentNotFound
	ErrNoActiveSession = repository.ErrNoActiveSession
)

// PaymentDeclinedError reports a payment record that exists but was not
// approved. It never satisfies closure.
type PaymentDeclinedError struct {
	SessionID int64
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment for session %d was declined", e.SessionID)
}

// OutstandingBalanceError reports that the session is not fully paid.
type OutstandingBalanceError struct {
	Cents int64
}

func (e *OutstandingBalanceError) Error() string {
	return fmt.Sprintf("outstanding balance of %s", FormatAmount(e.Cents))
}

// FormatAmount renders minor currency units with two decimals.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// PaymentStore is the read contract the reconciliation flow needs from
// payment storage.
type PaymentStore interface {
	GetBySessionID(ctx context.Context, sessionID int64) (*models.Payment, error)
}

// SettleOptions selects how strict reconciliation is. The lost-ticket
// flow checks the balance only; the payment-failed flow additionally
// requires an approved payment record.
type SettleOptions struct {
	RequirePayment bool
}

// CloseInput carries the fields recorded on the session at closure.
// Plate scopes the update to the most recent active session for that
// plate; ExitPlate is what gets stored in the exit plate field.
type CloseInput struct {
	Plate       string
	ExitPlate   string
	ExitStation int
	ExitTime    time.Time
}

// Reconciler validates payment sufficiency and performs the one-way
// active to exited transition.
type Reconciler struct {
	sessions SessionStore
	payments PaymentStore
	logger   *zap.Logger
}

// NewReconciler builds reconciler.
func NewReconciler(sessions SessionStore, payments PaymentStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{sessions: sessions, payments: payments, logger: logger}
}

// SettleAndClose checks that the session is settled and closes it. Any
// unmet condition is returned as a distinct error and leaves the session
// untouched; an unpaid balance blocks closure regardless of the payment's
// approved flag.
func (r *Reconciler) SettleAndClose(ctx context.Context, session *models.Session, opts SettleOptions, input CloseInput) error {
	if opts.RequirePayment {
		payment, err := r.payments.GetBySessionID(ctx, session.ID)
		if err != nil {
			if errors.Is(err, repository.ErrPaymentNotFound) {
				r.logger.Info("no payment record", zap.Int64("session_id", session.ID))
				return err
			}
			return fmt.Errorf("fetch payment: %w", err)
		}
		if !payment.Approved {
			r.logger.Info("payment declined", zap.Int64("session_id", session.ID))
			return &PaymentDeclinedError{SessionID: session.ID}
		}
	}

	if outstanding := session.OutstandingCents(); outstanding > 0 {
		r.logger.Info("outstanding balance blocks closure",
			zap.Int64("session_id", session.ID),
			zap.Int64("outstanding_cents", outstanding))
		return &OutstandingBalanceError{Cents: outstanding}
	}

	if err := r.sessions.CloseSession(ctx, input.Plate, input.ExitPlate, input.ExitStation, input.ExitTime); err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			r.logger.Info("no active session to close", zap.String("license_plate", input.Plate))
			return err
		}
		return fmt.Errorf("close session: %w", err)
	}

	r.logger.Info("session closed",
		zap.Int64("session_id", session.ID),
		zap.String("exit_plate", input.ExitPlate),
		zap.Int("exit_station", input.ExitStation))
	return nil
}
