package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// GetUserByID returns types.ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, userID int64) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	ListUsers(ctx context.Context) ([]types.User, error)
	// CreateUser returns types.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (int64, error)
	UpdateRole(ctx context.Context, userID int64, role types.Role) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	DeleteUser(ctx context.Context, userID int64) error
	CountByRole(ctx context.Context) ([]types.CountByKey, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewPostgresUserRepo(pgpool database.Pool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row, u *types.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

func (r *PostgresUserRepo) getOne(ctx context.Context, where string, arg any) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "getOne", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var u types.User
	if err := scanUser(r.pgpool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID int64) (*types.User, error) {
	return r.getOne(ctx, `id = $1`, userID)
}

// GetUserByEmail matches case-insensitively.
func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.getOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (int64, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var id int64
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		name, email, passwordHash, role).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			span.SetStatus(codes.Error, "Email already registered")
			return 0, fmt.Errorf("email %q already registered: %w", email, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (r *PostgresUserRepo) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pgpool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", types.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepo) UpdateRole(ctx context.Context, userID int64, role types.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, userID)
}

// UpdatePassword also revokes every outstanding refresh token of the user.
func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		if _, err := tx.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
		return nil
	})
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, userID int64) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
}

func (r *PostgresUserRepo) CountByRole(ctx context.Context) ([]types.CountByKey, error) {
	rows, err := r.pgpool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return database.CollectCounts(rows)
}
