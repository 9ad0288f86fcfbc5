package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/internal/types"
)

type islandLookup struct{ err error }

func (f islandLookup) GetByID(_ context.Context, id int64) (*types.Island, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != 1 {
		return nil, types.ErrNotFound
	}
	return &types.Island{ID: 1, Name: "Bohol"}, nil
}

func newTestService(t *testing.T, islands IslandLookup) (*ServiceImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewActivityService(NewActivityRepository(mockPool, logger), islands, logger), mockPool
}

func TestCreateActivity(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, mockPool := newTestService(t, islandLookup{})
		mockPool.ExpectQuery(`INSERT INTO activities`).WithArgs(int64(1), "Loboc river cruise", "Lunch on the river").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))

		got, err := svc.Create(context.Background(),
			types.ActivityParams{IslandID: 1, Name: " Loboc river cruise ", Description: "Lunch on the river"})
		require.NoError(t, err)
		assert.Equal(t, &types.Activity{ID: 4, IslandID: 1, Name: "Loboc river cruise", Description: "Lunch on the river"}, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Validation", func(t *testing.T) {
		svc, mockPool := newTestService(t, islandLookup{})
		_, err := svc.Create(context.Background(), types.ActivityParams{IslandID: 1, Name: " "})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
		_, err = svc.Create(context.Background(), types.ActivityParams{IslandID: 2, Name: "Dive"})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("IslandLookupFailure", func(t *testing.T) {
		svc, _ := newTestService(t, islandLookup{err: errors.New("conn refused")})
		_, err := svc.Create(context.Background(), types.ActivityParams{IslandID: 1, Name: "Dive"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestUpdateAndDeleteActivity(t *testing.T) {
	svc, mockPool := newTestService(t, islandLookup{})

	mockPool.ExpectExec(`UPDATE activities`).WithArgs(int64(1), "Dive", "", int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	_, err := svc.Update(context.Background(), 9, types.ActivityParams{IslandID: 1, Name: "Dive"})
	assert.ErrorIs(t, err, types.ErrNotFound)

	mockPool.ExpectExec(`DELETE FROM activities WHERE id = \$1`).WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	assert.NoError(t, svc.Delete(context.Background(), 9))

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListByIsland(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`FROM activities WHERE island_id = \$1`).WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "island_id", "name", "description"}).
			AddRow(int64(1), int64(1), "Chocolate Hills", "Viewing deck").
			AddRow(int64(2), int64(1), "Tarsier sanctuary", ""))

	got, err := NewActivityRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil))).ListByIsland(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Tarsier sanctuary", got[1].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
