package activity

import (
	"context"
	"fmt"
	"log/slog"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Repository = (*PostgresActivityRepository)(nil)

type Repository interface {
	ListByIsland(ctx context.Context, islandID int64) ([]types.Activity, error)
	Create(ctx context.Context, params types.ActivityParams) (int64, error)
	Update(ctx context.Context, id int64, params types.ActivityParams) error
	Delete(ctx context.Context, id int64) error
}

type PostgresActivityRepository struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewActivityRepository(pgpool database.Pool, logger *slog.Logger) *PostgresActivityRepository {
	return &PostgresActivityRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresActivityRepository) ListByIsland(ctx context.Context, islandID int64) ([]types.Activity, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT id, island_id, name, description FROM activities WHERE island_id = $1 ORDER BY id`, islandID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var out []types.Activity
	for rows.Next() {
		var a types.Activity
		if err := rows.Scan(&a.ID, &a.IslandID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}
	return out, nil
}

func (r *PostgresActivityRepository) Create(ctx context.Context, p types.ActivityParams) (int64, error) {
	var id int64
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO activities (island_id, name, description) VALUES ($1, $2, $3) RETURNING id`,
		p.IslandID, p.Name, p.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activity: %w", err)
	}
	return id, nil
}

func (r *PostgresActivityRepository) Update(ctx context.Context, id int64, p types.ActivityParams) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE activities SET island_id = $1, name = $2, description = $3 WHERE id = $4`,
		p.IslandID, p.Name, p.Description, id)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresActivityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d: %w", id, types.ErrNotFound)
	}
	return nil
}
