package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNegativeProgress is returned when a checkpoint carries a negative
// progress value. Enforced on insert so every downstream sum is ≥ 0.
var ErrNegativeProgress = errors.New("progress seconds cannot be negative")

// Repository defines the aggregate reads the analytics engine needs over
// watch records, plus the append used by the playback tracker.
//
// Progress sums intentionally add up every checkpoint row rather than taking
// a per-user high-water mark; that is the attribution semantics existing
// payouts were computed under, so it must not be changed silently.
type Repository interface {
	// Insert appends a playback checkpoint.
	Insert(ctx context.Context, rec *Record) error

	// CountViews counts checkpoint rows for a media item.
	CountViews(ctx context.Context, mediaID string) (int, error)

	// CountUniqueViewers counts distinct users among a media item's rows.
	CountUniqueViewers(ctx context.Context, mediaID string) (int, error)

	// SumProgressSeconds sums progress across all rows for a media item.
	SumProgressSeconds(ctx context.Context, mediaID string) (int64, error)

	// SumProgressSecondsBetween sums progress for rows watched within
	// [start, end] inclusive.
	SumProgressSecondsBetween(ctx context.Context, mediaID string, start, end time.Time) (int64, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*Record
}

// NewInMemoryRepository creates a new in-memory watch repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Insert appends a playback checkpoint.
func (r *InMemoryRepository) Insert(_ context.Context, rec *Record) error {
	if rec.ProgressSeconds < 0 {
		return ErrNegativeProgress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recCopy := *rec
	if recCopy.ID == "" {
		recCopy.ID = uuid.New().String()
	}
	if recCopy.WatchedAt.IsZero() {
		recCopy.WatchedAt = time.Now()
	}
	r.records = append(r.records, &recCopy)
	return nil
}

// CountViews counts checkpoint rows for a media item.
func (r *InMemoryRepository) CountViews(_ context.Context, mediaID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.records {
		if rec.MediaID == mediaID {
			count++
		}
	}
	return count, nil
}

// CountUniqueViewers counts distinct users among a media item's rows.
func (r *InMemoryRepository) CountUniqueViewers(_ context.Context, mediaID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, rec := range r.records {
		if rec.MediaID == mediaID {
			seen[rec.UserID] = true
		}
	}
	return len(seen), nil
}

// SumProgressSeconds sums progress across all rows for a media item.
func (r *InMemoryRepository) SumProgressSeconds(_ context.Context, mediaID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, rec := range r.records {
		if rec.MediaID == mediaID {
			total += int64(rec.ProgressSeconds)
		}
	}
	return total, nil
}

// SumProgressSecondsBetween sums progress for rows watched within [start, end] inclusive.
func (r *InMemoryRepository) SumProgressSecondsBetween(_ context.Context, mediaID string, start, end time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, rec := range r.records {
		if rec.MediaID == mediaID && !rec.WatchedAt.Before(start) && !rec.WatchedAt.After(end) {
			total += int64(rec.ProgressSeconds)
		}
	}
	return total, nil
}
