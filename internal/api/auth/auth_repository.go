package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, userID int64) (*types.User, error)
	// Register inserts a user with role "user" and returns its id.
	Register(ctx context.Context, name, email, hashedPassword string) (int64, error)
	StoreRefreshToken(ctx context.Context, userID int64, token uuid.UUID, expiresAt time.Time) error
	// ValidateRefreshTokenAndGetUserID fails with types.ErrUnauthenticated for
	// unknown, revoked or expired tokens.
	ValidateRefreshTokenAndGetUserID(ctx context.Context, token uuid.UUID) (int64, error)
	// RotateRefreshToken revokes old and stores next in one transaction.
	RotateRefreshToken(ctx context.Context, userID int64, old, next uuid.UUID, expiresAt time.Time) error
	InvalidateRefreshToken(ctx context.Context, token uuid.UUID) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID int64) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewPostgresAuthRepo(pgpool database.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) getUser(ctx context.Context, where string, arg any) (*types.User, error) {
	var u types.User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.getUser(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID int64) (*types.User, error) {
	return r.getUser(ctx, `id = $1`, userID)
}

func (r *PostgresAuthRepo) Register(ctx context.Context, name, email, hashedPassword string) (int64, error) {
	var id int64
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, 'user') RETURNING id`,
		name, email, hashedPassword).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, fmt.Errorf("email already exists: %w", types.ErrConflict)
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID int64, token uuid.UUID, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: db insert failed: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, token uuid.UUID) (int64, error) {
	var userID int64
	var expiresAt time.Time
	var revokedAt *time.Time

	err := r.pgpool.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token = $1`,
		token).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("refresh token not found: %w", types.ErrUnauthenticated)
		}
		return 0, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if revokedAt != nil {
		return 0, fmt.Errorf("refresh token revoked: %w", types.ErrUnauthenticated)
	}
	if time.Now().After(expiresAt) {
		return 0, fmt.Errorf("refresh token expired: %w", types.ErrUnauthenticated)
	}
	return userID, nil
}

func (r *PostgresAuthRepo) RotateRefreshToken(ctx context.Context, userID int64, old, next uuid.UUID, expiresAt time.Time) error {
	return database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token = $1 AND revoked_at IS NULL`, old)
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("refresh token already used: %w", types.ErrUnauthenticated)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
			userID, next, expiresAt); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
		return nil
	})
}

func (r *PostgresAuthRepo) InvalidateRefreshToken(ctx context.Context, token uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token = $1 AND revoked_at IS NULL`, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID int64) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
