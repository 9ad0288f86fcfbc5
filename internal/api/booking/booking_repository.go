package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Repository = (*PostgresBookingRepository)(nil)

type Repository interface {
	Create(ctx context.Context, userID, establishmentID int64, checkIn, checkOut time.Time, guests int) (*types.Booking, error)
	GetByID(ctx context.Context, id int64) (*types.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]types.Booking, error)
	// ListForOwner returns bookings on establishments owned by ownerID.
	ListForOwner(ctx context.Context, ownerID int64) ([]types.Booking, error)
	ListAll(ctx context.Context) ([]types.Booking, error)
	// UpdateStatus moves the booking only if it is still in status from.
	UpdateStatus(ctx context.Context, id int64, from, to types.BookingStatus) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) ([]types.CountByKey, error)
}

type PostgresBookingRepository struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewBookingRepository(pgpool database.Pool, logger *slog.Logger) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

const bookingColumns = `b.id, b.user_id, b.establishment_id, b.check_in, b.check_out, b.guests, b.status, b.created_at, b.updated_at`

func scanBooking(row pgx.Row, b *types.Booking) error {
	return row.Scan(&b.ID, &b.UserID, &b.EstablishmentID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PostgresBookingRepository) list(ctx context.Context, from string, args ...any) ([]types.Booking, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings b `+from, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var out []types.Booking
	for rows.Next() {
		var b types.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return out, nil
}

func (r *PostgresBookingRepository) Create(ctx context.Context, userID, establishmentID int64, checkIn, checkOut time.Time, guests int) (*types.Booking, error) {
	var b types.Booking
	err := database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO bookings AS b (user_id, establishment_id, check_in, check_out, guests, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
			RETURNING `+bookingColumns,
			userID, establishmentID, checkIn, checkOut, guests,
		).Scan(&b.ID, &b.UserID, &b.EstablishmentID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return &b, nil
}

func (r *PostgresBookingRepository) GetByID(ctx context.Context, id int64) (*types.Booking, error) {
	var b types.Booking
	err := scanBooking(r.pgpool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID int64) ([]types.Booking, error) {
	return r.list(ctx, `WHERE b.user_id = $1 ORDER BY b.check_in DESC, b.id`, userID)
}

func (r *PostgresBookingRepository) ListForOwner(ctx context.Context, ownerID int64) ([]types.Booking, error) {
	return r.list(ctx, `
		JOIN establishments e ON e.id = b.establishment_id
		WHERE e.owner_id = $1
		ORDER BY b.check_in DESC, b.id`, ownerID)
}

func (r *PostgresBookingRepository) ListAll(ctx context.Context) ([]types.Booking, error) {
	return r.list(ctx, `ORDER BY b.check_in DESC, b.id`)
}

func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id int64, from, to types.BookingStatus) error {
	return database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
			to, id, from)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("booking %d is no longer %s: %w", id, from, types.ErrConflict)
		}
		return nil
	})
}

func (r *PostgresBookingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %d: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresBookingRepository) CountByStatus(ctx context.Context) ([]types.CountByKey, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	return database.CollectCounts(rows)
}
