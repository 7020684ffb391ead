package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUserID is returned when an entry has no user ID.
	ErrInvalidUserID = errors.New("user ID cannot be empty")
	// ErrInvalidAction is returned when an entry has no action.
	ErrInvalidAction = errors.New("action cannot be empty")
)

// Repository defines the interface for activity log operations.
type Repository interface {
	// Append records an activity log entry. Returns the created entry.
	Append(ctx context.Context, entry NewEntry) (*Entry, error)

	// ListByUserAction retrieves entries for a user and action, oldest first.
	ListByUserAction(ctx context.Context, userID, action string) ([]*Entry, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewInMemoryRepository creates a new in-memory activity log repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Append records an activity log entry.
func (r *InMemoryRepository) Append(_ context.Context, entry NewEntry) (*Entry, error) {
	if entry.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if entry.Action == "" {
		return nil, ErrInvalidAction
	}

	rec := &Entry{
		ID:        uuid.New().String(),
		UserID:    entry.UserID,
		Action:    entry.Action,
		Details:   entry.Details,
		RequestID: entry.RequestID,
		IPAddress: entry.IPAddress,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.entries = append(r.entries, rec)
	r.mu.Unlock()

	// Return a copy to prevent external modification
	recCopy := *rec
	return &recCopy, nil
}

// ListByUserAction retrieves entries for a user and action, oldest first.
func (r *InMemoryRepository) ListByUserAction(_ context.Context, userID, action string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Entry
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.Action == action {
			entryCopy := *entry
			results = append(results, &entryCopy)
		}
	}

	return results, nil
}
