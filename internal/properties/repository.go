package properties

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository executes compiled property searches against the store.
// All access is read-only snapshots.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a property repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Search runs a compiled query and scans the rows into listing snapshots.
func (r *Repository) Search(ctx context.Context, query string, args []any) ([]Property, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("property search failed: %w", err)
	}
	defer rows.Close()

	var results []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Address, &p.RoomNumber, &p.MonthlyRent, &p.RoomType,
			&p.NearestMRT, &p.Media, &p.Description, &p.Environment, &p.GenderPreference,
			&p.NationalityPreferences,
		); err != nil {
			return nil, fmt.Errorf("property scan failed: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("property search failed: %w", err)
	}

	return results, nil
}

// DistinctEnvironments returns the distinct environment tags present in the
// tenant's listings for a shared-living category. A null tag counts as
// "mixed", matching how the source data defaults.
func (r *Repository) DistinctEnvironments(ctx context.Context, tenantID uuid.UUID, category Category) (map[string]bool, error) {
	if !category.SupportsEnvironment() {
		return map[string]bool{}, nil
	}

	query := fmt.Sprintf("SELECT DISTINCT environment FROM %s WHERE agent_id = $1", string(category))
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("environment lookup failed: %w", err)
	}
	defer rows.Close()

	envs := make(map[string]bool)
	for rows.Next() {
		var tag *string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("environment scan failed: %w", err)
		}
		if tag == nil || strings.TrimSpace(*tag) == "" {
			envs["mixed"] = true
			continue
		}
		envs[strings.ToLower(*tag)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("environment lookup failed: %w", err)
	}

	return envs, nil
}
