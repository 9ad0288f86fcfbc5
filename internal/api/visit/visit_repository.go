package visit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Repository = (*PostgresVisitRepository)(nil)

type Repository interface {
	Record(ctx context.Context, islandID int64, month time.Time, total int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	ListByIsland(ctx context.Context, islandID int64) ([]types.Visit, error)
	// Popularity sums visits per existing island for from <= visit_month <= to,
	// ordered by total descending. limit <= 0 means no limit.
	Popularity(ctx context.Context, from, to time.Time, limit int) ([]types.IslandPopularity, error)
}

type PostgresVisitRepository struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewVisitRepository(pgpool database.Pool, logger *slog.Logger) *PostgresVisitRepository {
	return &PostgresVisitRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresVisitRepository) Record(ctx context.Context, islandID int64, month time.Time, total int64) (int64, error) {
	var id int64
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO visits (island_id, visit_month, total_visits) VALUES ($1, $2, $3) RETURNING id`,
		islandID, month, total).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert visit: %w", err)
	}
	return id, nil
}

func (r *PostgresVisitRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("visit %d: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresVisitRepository) ListByIsland(ctx context.Context, islandID int64) ([]types.Visit, error) {
	rows, err := r.pgpool.Query(ctx, `
		SELECT id, island_id, visit_month, total_visits
		FROM visits WHERE island_id = $1 ORDER BY visit_month DESC`, islandID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var out []types.Visit
	for rows.Next() {
		var v types.Visit
		if err := rows.Scan(&v.ID, &v.IslandID, &v.VisitMonth, &v.TotalVisits); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visit rows: %w", err)
	}
	return out, nil
}

func (r *PostgresVisitRepository) Popularity(ctx context.Context, from, to time.Time, limit int) ([]types.IslandPopularity, error) {
	ctx, span := otel.Tracer("VisitRepository").Start(ctx, "Popularity", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "visits"),
		attribute.Int("limit", limit),
	))
	defer span.End()

	// The inner join drops visits whose island has been removed.
	query := `
		SELECT i.id, i.name, i.image, SUM(v.total_visits)::BIGINT AS annual_visits
		FROM visits v
		JOIN islands i ON i.id = v.island_id
		WHERE v.visit_month BETWEEN $1 AND $2
		GROUP BY i.id, i.name, i.image
		ORDER BY annual_visits DESC, i.id`
	args := []any{from, to}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate visits: %w", err)
	}
	defer rows.Close()

	var out []types.IslandPopularity
	for rows.Next() {
		var p types.IslandPopularity
		if err := rows.Scan(&p.IslandID, &p.Name, &p.Image, &p.AnnualVisits); err != nil {
			return nil, fmt.Errorf("failed to scan popularity row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popularity rows: %w", err)
	}
	return out, nil
}
