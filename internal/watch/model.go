// Package watch provides models and repositories for playback progress
// checkpoints, the raw input of revenue attribution.
package watch

import "time"

// Record is one persisted snapshot of a user's playback position for a media
// item. The player posts a new row per checkpoint, so multiple rows exist per
// user/media pair over time. Rows are append-only; the engine only reads and
// sums them.
type Record struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	MediaID         string    `json:"media_id"`
	ProgressSeconds int       `json:"progress"`
	Completed       bool      `json:"completed"`
	WatchedAt       time.Time `json:"watched_at"`
}
