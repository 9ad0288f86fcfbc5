package establishment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Repository = (*PostgresEstablishmentRepository)(nil)

type Repository interface {
	ListApproved(ctx context.Context) ([]types.Establishment, error)
	ListApprovedByIsland(ctx context.Context, islandID int64) ([]types.Establishment, error)
	SearchApproved(ctx context.Context, query string) ([]types.Establishment, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]types.Establishment, error)
	ListPending(ctx context.Context) ([]types.Establishment, error)
	GetByID(ctx context.Context, id int64) (*types.Establishment, error)
	Create(ctx context.Context, ownerID int64, params types.EstablishmentParams) (int64, error)
	Update(ctx context.Context, id int64, params types.EstablishmentParams) error
	Delete(ctx context.Context, id int64) error
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
	CountByState(ctx context.Context) ([]types.CountByKey, error)
}

type PostgresEstablishmentRepository struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewEstablishmentRepository(pgpool database.Pool, logger *slog.Logger) *PostgresEstablishmentRepository {
	return &PostgresEstablishmentRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

const establishmentColumns = `id, name, type, description, image, island_id, owner_id,
	is_approved, rejected_reason, created_at, updated_at`

func scanEstablishment(row pgx.Row, e *types.Establishment) error {
	return row.Scan(&e.ID, &e.Name, &e.Type, &e.Description, &e.Image, &e.IslandID, &e.OwnerID,
		&e.IsApproved, &e.RejectedReason, &e.CreatedAt, &e.UpdatedAt)
}

func (r *PostgresEstablishmentRepository) query(ctx context.Context, where string, args ...any) ([]types.Establishment, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT `+establishmentColumns+` FROM establishments `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query establishments: %w", err)
	}
	defer rows.Close()

	var out []types.Establishment
	for rows.Next() {
		var e types.Establishment
		if err := scanEstablishment(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan establishment row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating establishment rows: %w", err)
	}
	return out, nil
}

func (r *PostgresEstablishmentRepository) ListApproved(ctx context.Context) ([]types.Establishment, error) {
	return r.query(ctx, `WHERE is_approved ORDER BY id`)
}

func (r *PostgresEstablishmentRepository) ListApprovedByIsland(ctx context.Context, islandID int64) ([]types.Establishment, error) {
	return r.query(ctx, `WHERE is_approved AND island_id = $1 ORDER BY id`, islandID)
}

// SearchApproved matches query against the name or the type label.
func (r *PostgresEstablishmentRepository) SearchApproved(ctx context.Context, query string) ([]types.Establishment, error) {
	return r.query(ctx, `WHERE is_approved AND (name ILIKE $1 OR type ILIKE $1) ORDER BY id`,
		database.ContainsPattern(query))
}

func (r *PostgresEstablishmentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]types.Establishment, error) {
	return r.query(ctx, `WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (r *PostgresEstablishmentRepository) ListPending(ctx context.Context) ([]types.Establishment, error) {
	return r.query(ctx, `WHERE NOT is_approved AND rejected_reason IS NULL ORDER BY created_at`)
}

func (r *PostgresEstablishmentRepository) GetByID(ctx context.Context, id int64) (*types.Establishment, error) {
	var e types.Establishment
	err := scanEstablishment(r.pgpool.QueryRow(ctx,
		`SELECT `+establishmentColumns+` FROM establishments WHERE id = $1`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("establishment %d: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get establishment: %w", err)
	}
	return &e, nil
}

func (r *PostgresEstablishmentRepository) Create(ctx context.Context, ownerID int64, p types.EstablishmentParams) (int64, error) {
	var id int64
	err := database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO establishments (name, type, description, image, island_id, owner_id, is_approved)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE) RETURNING id`,
			p.Name, p.Type, p.Description, p.Image, p.IslandID, ownerID,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert establishment: %w", err)
	}
	return id, nil
}

// Update resubmits the listing for moderation.
func (r *PostgresEstablishmentRepository) Update(ctx context.Context, id int64, p types.EstablishmentParams) error {
	return r.exec(ctx, id, `
		UPDATE establishments
		SET name = $1, type = $2, description = $3, image = $4, island_id = $5,
		    is_approved = FALSE, rejected_reason = NULL, updated_at = NOW()
		WHERE id = $6`,
		p.Name, p.Type, p.Description, p.Image, p.IslandID, id)
}

func (r *PostgresEstablishmentRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, id, `DELETE FROM establishments WHERE id = $1`, id)
}

func (r *PostgresEstablishmentRepository) Approve(ctx context.Context, id int64) error {
	return r.exec(ctx, id, `
		UPDATE establishments SET is_approved = TRUE, rejected_reason = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *PostgresEstablishmentRepository) Reject(ctx context.Context, id int64, reason string) error {
	return r.exec(ctx, id, `
		UPDATE establishments SET is_approved = FALSE, rejected_reason = $1, updated_at = NOW()
		WHERE id = $2`, reason, id)
}

func (r *PostgresEstablishmentRepository) exec(ctx context.Context, id int64, sql string, args ...any) error {
	return database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("failed to write establishment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("establishment %d: %w", id, types.ErrNotFound)
		}
		return nil
	})
}

func (r *PostgresEstablishmentRepository) CountByState(ctx context.Context) ([]types.CountByKey, error) {
	rows, err := r.pgpool.Query(ctx, `
		SELECT CASE
		           WHEN is_approved THEN 'approved'
		           WHEN rejected_reason IS NOT NULL THEN 'rejected'
		           ELSE 'pending'
		       END AS state,
		       COUNT(*)
		FROM establishments
		GROUP BY state
		ORDER BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count establishments: %w", err)
	}
	return database.CollectCounts(rows)
}
