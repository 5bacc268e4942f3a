package models

import "time"

// Session status values. A session moves from active to exited exactly
// once and never back.
const (
	SessionStatusActive = "active"
	SessionStatusExited = "exited"
)

// Session represents one vehicle visit from entry to (optional) exit.
type Session struct {
	ID                int64      `db:"id" json:"id"`
	TicketID          *int64     `db:"ticket_id" json:"ticket_id,omitempty"`
	EntryTime         time.Time  `db:"entry_time" json:"entry_time"`
	EntryStation      int        `db:"entry_station" json:"entry_station"`
	ExitTime          *time.Time `db:"exit_time" json:"exit_time,omitempty"`
	ExitStation       *int       `db:"exit_station" json:"exit_station,omitempty"`
	Status            string     `db:"status" json:"status"`
	AmountDueCents    int64      `db:"amount_due_cents" json:"amount_due_cents"`
	AmountPaidCents   int64      `db:"amount_paid_cents" json:"amount_paid_cents"`
	PaidUntil         *time.Time `db:"paid_until" json:"paid_until,omitempty"`
	LicencePlateEntry string     `db:"licence_plate_entry" json:"licence_plate_entry"`
	LicencePlateExit  *string    `db:"licence_plate_exit" json:"licence_plate_exit,omitempty"`
}

// OutstandingCents returns the unpaid remainder, never negative.
func (s *Session) OutstandingCents() int64 {
	if s.AmountDueCents <= s.AmountPaidCents {
		return 0
	}
	return s.AmountDueCents - s.AmountPaidCents
}
