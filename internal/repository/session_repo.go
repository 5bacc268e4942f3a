package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkassist/internal/models"
)

// ErrSessionNotFound indicates that no active session matched the lookup.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoActiveSession indicates that a closure update matched zero rows:
// the session was already exited or never existed. This is a normal
// outcome, not a failure.
var ErrNoActiveSession = errors.New("no active session to close")

const sessionColumns = `id, ticket_id, entry_time, entry_station, exit_time, exit_station,
	       status, amount_due_cents, amount_paid_cents, paid_until,
	       licence_plate_entry, licence_plate_exit`

// SessionRepository handles persistence of parking sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetActiveByPlate returns the most recently entered active session whose
// entry plate equals the given plate, compared case-insensitively.
func (r *SessionRepository) GetActiveByPlate(ctx context.Context, plate string) (*models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE UPPER(licence_plate_entry) = UPPER($1)
		AND status = 'active'
		ORDER BY entry_time DESC
		LIMIT 1
	`
	var s models.Session
	if err := scanSession(r.db.QueryRowContext(ctx, query, plate), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListActiveByEntryTimeAndStation returns all active sessions with the
// exact entry time and station, newest first. An empty slice means no
// candidates.
func (r *SessionRepository) ListActiveByEntryTimeAndStation(ctx context.Context, entryTime time.Time, entryStation int) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE entry_time = $1
		AND entry_station = $2
		AND status = 'active'
		ORDER BY entry_time DESC
	`
	return r.querySessions(ctx, query, entryTime, entryStation)
}

// ListActiveByEntryWindowAndStation returns all active sessions whose
// entry time falls inside the inclusive [from, to] window at the given
// station, newest first.
func (r *SessionRepository) ListActiveByEntryWindowAndStation(ctx context.Context, from, to time.Time, entryStation int) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE entry_time BETWEEN $1 AND $2
		AND entry_station = $3
		AND status = 'active'
		ORDER BY entry_time DESC
	`
	return r.querySessions(ctx, query, from, to, entryStation)
}

// CloseSession performs the one-way active to exited transition. The
// update is scoped to the single most recently entered active session for
// the plate so an older visit sharing the plate is never touched. Exit
// fields are set together in the same statement. Zero matched rows yield
// ErrNoActiveSession.
func (r *SessionRepository) CloseSession(ctx context.Context, plate, exitPlate string, exitStation int, exitTime time.Time) error {
	const query = `
		UPDATE parking_sessions
		SET licence_plate_exit = $1,
		    exit_time = $2,
		    exit_station = $3,
		    status = 'exited'
		WHERE id = (
			SELECT id
			FROM parking_sessions
			WHERE UPPER(licence_plate_entry) = UPPER($4)
			AND status = 'active'
			ORDER BY entry_time DESC
			LIMIT 1
		)
		AND status = 'active'
	`
	result, err := r.db.ExecContext(ctx, query, exitPlate, exitTime, exitStation, plate)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoActiveSession
	}
	return nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...interface{}) ([]models.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner, s *models.Session) error {
	return row.Scan(
		&s.ID,
		&s.TicketID,
		&s.EntryTime,
		&s.EntryStation,
		&s.ExitTime,
		&s.ExitStation,
		&s.Status,
		&s.AmountDueCents,
		&s.AmountPaidCents,
		&s.PaidUntil,
		&s.LicencePlateEntry,
		&s.LicencePlateExit,
	)
}
