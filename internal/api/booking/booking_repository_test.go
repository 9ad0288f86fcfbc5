package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresBookingRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewBookingRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil))), mockPool
}

func TestPostgresUpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE bookings SET status = \$1`).
			WithArgs(types.BookingConfirmed, int64(7), types.BookingPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectCommit()

		require.NoError(t, repo.UpdateStatus(context.Background(), 7, types.BookingPending, types.BookingConfirmed))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("StaleStatusRollsBack", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE bookings SET status = \$1`).
			WithArgs(types.BookingConfirmed, int64(7), types.BookingPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectRollback()

		err := repo.UpdateStatus(context.Background(), 7, types.BookingPending, types.BookingConfirmed)
		assert.ErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("ExecErrorRollsBack", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE bookings SET status = \$1`).
			WithArgs(types.BookingCancelled, int64(7), types.BookingApproved).
			WillReturnError(errors.New("connection reset"))
		mockPool.ExpectRollback()

		err := repo.UpdateStatus(context.Background(), 7, types.BookingApproved, types.BookingCancelled)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	mockPool.ExpectQuery(`FROM bookings b WHERE b.id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresListForOwner(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	day := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "establishment_id", "check_in", "check_out", "guests", "status", "created_at", "updated_at"}
	mockPool.ExpectQuery(`JOIN establishments e ON e.id = b.establishment_id\s+WHERE e.owner_id = \$1`).
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(3), int64(10), int64(5), day, day.AddDate(0, 0, 2), 2, types.BookingPending, day, day).
			AddRow(int64(4), int64(11), int64(5), day, day.AddDate(0, 0, 1), 1, types.BookingApproved, day, day))

	list, err := repo.ListForOwner(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Nights())
	assert.Equal(t, types.BookingApproved, list[1].Status)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresDeleteMissing(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	mockPool.ExpectExec(`DELETE FROM bookings WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
