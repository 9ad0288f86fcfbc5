package island

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Repository = (*PostgresIslandRepository)(nil)

type Repository interface {
	List(ctx context.Context) ([]types.Island, error)
	SearchByName(ctx context.Context, query string) ([]types.Island, error)
	GetByID(ctx context.Context, id int64) (*types.Island, error)
	GetByIDs(ctx context.Context, ids []int64) ([]types.Island, error)
	Create(ctx context.Context, params types.IslandParams) (int64, error)
	Update(ctx context.Context, id int64, params types.IslandParams) error
	Delete(ctx context.Context, id int64) error
}

type PostgresIslandRepository struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewIslandRepository(pgpool database.Pool, logger *slog.Logger) *PostgresIslandRepository {
	return &PostgresIslandRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

const islandColumns = `id, name, image, description, details, history, coordinates`

func scanIslands(rows pgx.Rows) ([]types.Island, error) {
	defer rows.Close()
	var islands []types.Island
	for rows.Next() {
		var i types.Island
		if err := rows.Scan(&i.ID, &i.Name, &i.Image, &i.Description, &i.Details, &i.History, &i.Coordinates); err != nil {
			return nil, fmt.Errorf("failed to scan island row: %w", err)
		}
		islands = append(islands, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating island rows: %w", err)
	}
	return islands, nil
}

func (r *PostgresIslandRepository) List(ctx context.Context) ([]types.Island, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT `+islandColumns+` FROM islands ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list islands: %w", err)
	}
	return scanIslands(rows)
}

// SearchByName matches query as a case-insensitive substring of the name.
func (r *PostgresIslandRepository) SearchByName(ctx context.Context, query string) ([]types.Island, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+islandColumns+` FROM islands WHERE name ILIKE $1 ORDER BY id`,
		database.ContainsPattern(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search islands: %w", err)
	}
	return scanIslands(rows)
}

func (r *PostgresIslandRepository) GetByID(ctx context.Context, id int64) (*types.Island, error) {
	var i types.Island
	err := r.pgpool.QueryRow(ctx, `SELECT `+islandColumns+` FROM islands WHERE id = $1`, id).
		Scan(&i.ID, &i.Name, &i.Image, &i.Description, &i.Details, &i.History, &i.Coordinates)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("island %d: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get island: %w", err)
	}
	return &i, nil
}

func (r *PostgresIslandRepository) GetByIDs(ctx context.Context, ids []int64) ([]types.Island, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+islandColumns+` FROM islands WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get islands by id: %w", err)
	}
	return scanIslands(rows)
}

func (r *PostgresIslandRepository) Create(ctx context.Context, p types.IslandParams) (int64, error) {
	var id int64
	err := database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO islands (name, image, description, details, history, coordinates)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			p.Name, p.Image, p.Description, p.Details, p.History, p.Coordinates,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert island: %w", err)
	}
	return id, nil
}

func (r *PostgresIslandRepository) Update(ctx context.Context, id int64, p types.IslandParams) error {
	return database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE islands
			SET name = $1, image = $2, description = $3, details = $4, history = $5, coordinates = $6
			WHERE id = $7`,
			p.Name, p.Image, p.Description, p.Details, p.History, p.Coordinates, id)
		if err != nil {
			return fmt.Errorf("failed to update island: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("island %d: %w", id, types.ErrNotFound)
		}
		return nil
	})
}

func (r *PostgresIslandRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM islands WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete island: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("island %d: %w", id, types.ErrNotFound)
		}
		return nil
	})
}
