package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListProviders returns every user holding the ContentCreator role, ordered by ID.
func (r *PostgresRepository) ListProviders(ctx context.Context) ([]*Provider, error) {
	const query = `
		SELECT u.id, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE r.name = 'ContentCreator'
		ORDER BY u.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	var providers []*Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		providers = append(providers, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read provider rows: %w", err)
	}

	return providers, nil
}

// ListMediaByProvider returns the media items owned by a provider, ordered by ID.
func (r *PostgresRepository) ListMediaByProvider(ctx context.Context, providerID string) ([]*MediaItem, error) {
	const query = `
		SELECT id, title, duration, provider_id
		FROM media
		WHERE provider_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media for provider %s: %w", providerID, err)
	}
	defer rows.Close()

	var items []*MediaItem
	for rows.Next() {
		var (
			item     MediaItem
			duration sql.NullInt64
			provider sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &duration, &provider); err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		if duration.Valid {
			d := int(duration.Int64)
			item.DurationMinutes = &d
		}
		if provider.Valid {
			p := provider.String
			item.ProviderID = &p
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read media rows: %w", err)
	}

	return items, nil
}
