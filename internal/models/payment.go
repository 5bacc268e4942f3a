package models

import "time"

// Payment is a single settlement attempt tied to a session. The
// resolution flow fetches at most one payment row per session.
type Payment struct {
	ID           int64     `db:"id" json:"id"`
	SessionID    int64     `db:"session_id" json:"session_id"`
	StationID    int       `db:"station_id" json:"station_id"`
	Method       string    `db:"method" json:"method"`
	AmountCents  int64     `db:"amount_cents" json:"amount_cents"`
	Approved     bool      `db:"approved" json:"approved"`
	ProcessorRef *string   `db:"processor_ref" json:"processor_ref,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
