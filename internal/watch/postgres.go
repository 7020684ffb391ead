package watch

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

// Insert appends a playback checkpoint.
func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) error {
	if rec.ProgressSeconds < 0 {
		return ErrNegativeProgress
	}

	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	watchedAt := rec.WatchedAt
	if watchedAt.IsZero() {
		watchedAt = time.Now()
	}

	const query = `
		INSERT INTO watch_history (id, user_id, media_id, progress, completed, watched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, id, rec.UserID, rec.MediaID, rec.ProgressSeconds, rec.Completed, watchedAt); err != nil {
		return fmt.Errorf("failed to insert watch record: %w", err)
	}
	return nil
}

// CountViews counts checkpoint rows for a media item.
func (r *PostgresRepository) CountViews(ctx context.Context, mediaID string) (int, error) {
	const query = `SELECT COUNT(*) FROM watch_history WHERE media_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, mediaID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count views: %w", err)
	}
	return count, nil
}

// CountUniqueViewers counts distinct users among a media item's rows.
func (r *PostgresRepository) CountUniqueViewers(ctx context.Context, mediaID string) (int, error) {
	const query = `SELECT COUNT(DISTINCT user_id) FROM watch_history WHERE media_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, mediaID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unique viewers: %w", err)
	}
	return count, nil
}

// SumProgressSeconds sums progress across all rows for a media item.
func (r *PostgresRepository) SumProgressSeconds(ctx context.Context, mediaID string) (int64, error) {
	const query = `SELECT COALESCE(SUM(progress), 0) FROM watch_history WHERE media_id = $1`

	var total int64
	if err := r.db.QueryRowContext(ctx, query, mediaID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum progress: %w", err)
	}
	return total, nil
}

// SumProgressSecondsBetween sums progress for rows watched within [start, end] inclusive.
func (r *PostgresRepository) SumProgressSecondsBetween(ctx context.Context, mediaID string, start, end time.Time) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(progress), 0)
		FROM watch_history
		WHERE media_id = $1 AND watched_at >= $2 AND watched_at <= $3
	`

	var total int64
	if err := r.db.QueryRowContext(ctx, query, mediaID, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum progress in window: %w", err)
	}
	return total, nil
}
