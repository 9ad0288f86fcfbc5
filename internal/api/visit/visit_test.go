package visit

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

type islandLookupStub struct {
	known map[int64]bool
	err   error
}

func (s islandLookupStub) GetByID(_ context.Context, id int64) (*types.Island, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.known[id] {
		return nil, types.ErrNotFound
	}
	return &types.Island{ID: id}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPopularityQuery(t *testing.T) {
	from, to := YearBounds(2024)
	cols := []string{"id", "name", "image", "annual_visits"}

	t.Run("WithLimit", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(`SUM\(v.total_visits\)::BIGINT AS annual_visits.+ORDER BY annual_visits DESC, i.id LIMIT \$3`).
			WithArgs(from, to, 10).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(int64(2), "Boracay", "boracay.jpg", int64(48000)).
				AddRow(int64(1), "Siargao", "siargao.jpg", int64(12500)))

		repo := NewVisitRepository(mockPool, discardLogger())
		got, err := repo.Popularity(context.Background(), from, to, 10)
		require.NoError(t, err)
		assert.Equal(t, []types.IslandPopularity{
			{IslandID: 2, Name: "Boracay", Image: "boracay.jpg", AnnualVisits: 48000},
			{IslandID: 1, Name: "Siargao", Image: "siargao.jpg", AnnualVisits: 12500},
		}, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Unbounded", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(`ORDER BY annual_visits DESC, i.id$`).
			WithArgs(from, to).
			WillReturnRows(pgxmock.NewRows(cols))

		repo := NewVisitRepository(mockPool, discardLogger())
		got, err := repo.Popularity(context.Background(), from, to, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestYearBounds(t *testing.T) {
	from, to := YearBounds(2023)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestTopIslandsDefaultsToCurrentYear(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	from, to := YearBounds(2026)
	mockPool.ExpectQuery(`FROM visits v`).
		WithArgs(from, to, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "image", "annual_visits"}))

	svc := NewVisitService(NewVisitRepository(mockPool, discardLogger()), islandLookupStub{}, discardLogger())
	svc.now = func() time.Time { return time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC) }

	top, err := svc.TopIslands(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRecordVisit(t *testing.T) {
	t.Run("NormalisesMonth", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		month := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
		mockPool.ExpectQuery(`INSERT INTO visits`).
			WithArgs(int64(1), month, int64(3200)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(55)))

		svc := NewVisitService(NewVisitRepository(mockPool, discardLogger()), islandLookupStub{known: map[int64]bool{1: true}}, discardLogger())
		v, err := svc.RecordVisit(context.Background(), types.RecordVisitRequest{IslandID: 1, VisitMonth: "2024-07-19", TotalVisits: 3200})
		require.NoError(t, err)
		assert.Equal(t, int64(55), v.ID)
		assert.Equal(t, month, v.VisitMonth)
		assert.Equal(t, 2024, v.Year())
		assert.Equal(t, time.July, v.Month())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Validation", func(t *testing.T) {
		svc := NewVisitService(nil, islandLookupStub{known: map[int64]bool{1: true}}, discardLogger())
		tests := []types.RecordVisitRequest{
			{IslandID: 1, VisitMonth: "July 2024", TotalVisits: 1},
			{IslandID: 1, VisitMonth: "2024-07", TotalVisits: -1},
			{IslandID: 2, VisitMonth: "2024-07", TotalVisits: 1},
		}
		for _, req := range tests {
			_, err := svc.RecordVisit(context.Background(), req)
			assert.ErrorIs(t, err, types.ErrInvalidInput, "%+v", req)
		}
	})

	t.Run("LookupFailureIsNotInputError", func(t *testing.T) {
		svc := NewVisitService(nil, islandLookupStub{err: errors.New("db down")}, discardLogger())
		_, err := svc.RecordVisit(context.Background(), types.RecordVisitRequest{IslandID: 1, VisitMonth: "2024-07", TotalVisits: 1})
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrInvalidInput)
	})
}
