package billing

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

// RecordTransaction appends a completed payment.
func (r *PostgresRepository) RecordTransaction(ctx context.Context, tx *Transaction) error {
	id := tx.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	const query = `
		INSERT INTO transactions (id, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, id, tx.UserID, tx.Amount, createdAt); err != nil {
		r.logger.Error("failed to record transaction",
			slog.String("user_id", tx.UserID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// SumAmounts returns the sum of all transaction amounts ever recorded.
func (r *PostgresRepository) SumAmounts(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM transactions`

	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// SumAmountsBetween returns the sum of amounts within [start, end] inclusive.
func (r *PostgresRepository) SumAmountsBetween(ctx context.Context, start, end time.Time) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE created_at >= $1 AND created_at <= $2
	`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions in window: %w", err)
	}
	return total, nil
}

// CountSubscriptions counts user subscriptions by active state.
func (r *PostgresRepository) CountSubscriptions(ctx context.Context, active bool) (int, error) {
	const query = `SELECT COUNT(*) FROM user_subscriptions WHERE is_active = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, active).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}

// ActiveBreakdownByPlan returns per-plan counts of active subscriptions.
func (r *PostgresRepository) ActiveBreakdownByPlan(ctx context.Context) ([]PlanBreakdown, error) {
	const query = `
		SELECT us.subscription_id, COALESCE(s.type, 'Unknown'), COUNT(*)
		FROM user_subscriptions us
		LEFT JOIN subscriptions s ON s.id = us.subscription_id
		WHERE us.is_active = TRUE
		GROUP BY us.subscription_id, s.type
		ORDER BY us.subscription_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []PlanBreakdown
	for rows.Next() {
		var b PlanBreakdown
		if err := rows.Scan(&b.PlanID, &b.Type, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan plan breakdown row: %w", err)
		}
		breakdown = append(breakdown, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plan breakdown rows: %w", err)
	}

	return breakdown, nil
}
