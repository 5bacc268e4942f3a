package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"parkassist/internal/models"
)

// TestSessionRepository_Integration connects to a real PostgreSQL via
// DATABASE_URL and verifies the lookup and closure semantics against
// actual SQL, including the one-way status transition.
func TestSessionRepository_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := NewSessionRepository(db)
	plate := uniquePlate()
	base := time.Now().UTC().Truncate(time.Second)

	older := seedSession(ctx, t, db, plate, base.Add(-2*time.Hour), 1, 1500, 1500)
	latest := seedSession(ctx, t, db, plate, base.Add(-30*time.Minute), 1, 800, 800)

	t.Run("lookup is case-insensitive and prefers the latest entry", func(t *testing.T) {
		found, err := repo.GetActiveByPlate(ctx, strings.ToLower(plate))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found.ID != latest {
			t.Fatalf("expected session %d, got %d", latest, found.ID)
		}
	})

	t.Run("unknown plate yields ErrSessionNotFound", func(t *testing.T) {
		if _, err := repo.GetActiveByPlate(ctx, uniquePlate()); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("entry window is inclusive on both bounds", func(t *testing.T) {
		sessions, err := repo.ListActiveByEntryWindowAndStation(ctx, base.Add(-2*time.Hour), base.Add(-30*time.Minute), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !containsSessionID(sessions, older) || !containsSessionID(sessions, latest) {
			t.Fatalf("expected both boundary sessions in the window, got %d rows", len(sessions))
		}
	})

	t.Run("closure targets only the latest active session", func(t *testing.T) {
		exitTime := time.Now().UTC()
		if err := repo.CloseSession(ctx, plate, plate, 2, exitTime); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var status string
		var exitStation sql.NullInt64
		if err := db.QueryRowContext(ctx,
			`SELECT status, exit_station FROM parking_sessions WHERE id = $1`, latest,
		).Scan(&status, &exitStation); err != nil {
			t.Fatalf("read back: %v", err)
		}
		if status != "exited" || !exitStation.Valid || exitStation.Int64 != 2 {
			t.Fatalf("latest session not closed correctly: status=%s exit_station=%v", status, exitStation)
		}

		// The older visit with the same plate stays active.
		if err := db.QueryRowContext(ctx,
			`SELECT status FROM parking_sessions WHERE id = $1`, older,
		).Scan(&status); err != nil {
			t.Fatalf("read back: %v", err)
		}
		if status != "active" {
			t.Fatalf("older session must stay active, got %s", status)
		}

		// A second closure falls through to the older session; a third
		// finds nothing left to close.
		if err := repo.CloseSession(ctx, plate, plate, 2, exitTime); err != nil {
			t.Fatalf("unexpected error closing older session: %v", err)
		}
		if err := repo.CloseSession(ctx, plate, plate, 2, exitTime); !errors.Is(err, ErrNoActiveSession) {
			t.Fatalf("expected ErrNoActiveSession, got %v", err)
		}
	})
}

func TestPaymentRepository_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payments := NewPaymentRepository(db)

	plate := uniquePlate()
	sessionID := seedSession(ctx, t, db, plate, time.Now().UTC(), 1, 1500, 0)

	if _, err := payments.GetBySessionID(ctx, sessionID); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}

	var paymentID int64
	if err := db.QueryRowContext(ctx, `
		INSERT INTO payments (session_id, station_id, method, amount_cents, approved)
		VALUES ($1, 2, 'card', 1500, TRUE)
		RETURNING id
	`, sessionID).Scan(&paymentID); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM payments WHERE id = $1`, paymentID)
	})

	payment, err := payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.SessionID != sessionID || !payment.Approved || payment.AmountCents != 1500 {
		t.Fatalf("unexpected payment row: %+v", payment)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration tests")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping database: %v", err)
	}

	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT to_regclass('parking_sessions') IS NOT NULL`,
	).Scan(&exists); err != nil || !exists {
		t.Skip("database schema missing; apply migrations/0001_init.sql first")
	}
	return db
}

func seedSession(ctx context.Context, t *testing.T, db *sql.DB, plate string, entryTime time.Time, entryStation int, dueCents, paidCents int64) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRowContext(ctx, `
		INSERT INTO parking_sessions (entry_time, entry_station, status, amount_due_cents, amount_paid_cents, licence_plate_entry)
		VALUES ($1, $2, 'active', $3, $4, $5)
		RETURNING id
	`, entryTime, entryStation, dueCents, paidCents, plate).Scan(&id); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM payments WHERE session_id = $1`, id)
		_, _ = db.Exec(`DELETE FROM parking_sessions WHERE id = $1`, id)
	})
	return id
}

func uniquePlate() string {
	return fmt.Sprintf("ZZ%d", time.Now().UnixNano()%1_000_000_000)
}

func containsSessionID(sessions []models.Session, id int64) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}
