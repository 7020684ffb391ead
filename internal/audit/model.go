// Package audit provides the append-only activity log used for tracking
// sensitive operations. Withdrawal accounting replays these entries rather
// than keeping a mutable balance, so entries must never be updated or deleted.
package audit

import (
	"time"
)

// Entry represents a single activity log record.
type Entry struct {
	ID      string
	UserID  string
	Action  string
	Details string

	// Optional request metadata
	RequestID string
	IPAddress string

	CreatedAt time.Time
}

// NewEntry is the input for appending an activity log record.
type NewEntry struct {
	UserID  string
	Action  string
	Details string

	RequestID string
	IPAddress string
}
