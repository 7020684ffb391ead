package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append records an activity log entry.
func (r *PostgresRepository) Append(ctx context.Context, entry NewEntry) (*Entry, error) {
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

	const query = `
		INSERT INTO activity_logs (id, user_id, action, details, request_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Action, rec.Details, rec.RequestID, rec.IPAddress, rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to append activity log: %w", err)
	}

	return rec, nil
}

// ListByUserAction retrieves entries for a user and action, oldest first.
func (r *PostgresRepository) ListByUserAction(ctx context.Context, userID, action string) ([]*Entry, error) {
	const query = `
		SELECT id, user_id, action, COALESCE(details, ''), COALESCE(request_id, ''), COALESCE(ip_address, ''), created_at
		FROM activity_logs
		WHERE user_id = $1 AND action = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, action)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	var results []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Details, &e.RequestID, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		results = append(results, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity log rows: %w", err)
	}

	return results, nil
}
