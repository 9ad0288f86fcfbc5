package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/config"
	"github.com/FACorreiaa/tripwise/internal/types"
)

func TestWithTx(t *testing.T) {
	t.Run("Commits", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE islands`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectCommit()

		err = WithTx(context.Background(), mockPool, func(tx pgx.Tx) error {
			_, err := tx.Exec(context.Background(), `UPDATE islands SET name = 'x'`)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		boom := errors.New("boom")
		mockPool.ExpectBegin()
		mockPool.ExpectRollback()

		err = WithTx(context.Background(), mockPool, func(pgx.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("BeginFails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectBegin().WillReturnError(errors.New("too many connections"))
		called := false
		err = WithTx(context.Background(), mockPool, func(pgx.Tx) error { called = true; return nil })
		assert.ErrorContains(t, err, "failed to start transaction")
		assert.False(t, called)
	})
}

func TestCollectCounts(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT status, COUNT`).WillReturnRows(
		pgxmock.NewRows([]string{"status", "count"}).AddRow("confirmed", int64(4)).AddRow("pending", int64(2)))

	rows, err := mockPool.Query(context.Background(), `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	require.NoError(t, err)
	counts, err := CollectCounts(rows)
	require.NoError(t, err)
	assert.Equal(t, []types.CountByKey{{Key: "confirmed", Count: 4}, {Key: "pending", Count: 2}}, counts)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%bora%", ContainsPattern("bora"))
	assert.Equal(t, `%100\%\_off\\%`, ContainsPattern(`100%_off\`))
	assert.Equal(t, "%%", ContainsPattern(""))
}

func TestNewDatabaseConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewDatabaseConfig(&config.Config{}, logger)
	assert.Error(t, err)

	var cfg config.Config
	cfg.Repositories.Postgres.Host = "db"
	cfg.Repositories.Postgres.Port = "5432"
	cfg.Repositories.Postgres.Username = "tripwise"
	cfg.Repositories.Postgres.Password = "p@ss:word"
	cfg.Repositories.Postgres.DB = "tripwise"
	cfg.Repositories.Postgres.MAXCONWAITINGTIME = 10

	dbCfg, err := NewDatabaseConfig(&cfg, logger)
	require.NoError(t, err)

	u, err := url.Parse(dbCfg.ConnectionURL)
	require.NoError(t, err)
	assert.Equal(t, "postgresql", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss:word", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "10", u.Query().Get("connect_timeout"))
}

func TestRunMigrationsRejectsScheme(t *testing.T) {
	err := RunMigrations("mysql://localhost/tripwise", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "invalid database URL scheme")
}
