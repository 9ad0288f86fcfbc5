package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ UserService = (*ServiceImpl)(nil)

type UserService interface {
	ListUsers(ctx context.Context, caller types.Principal) ([]types.User, error)
	UpdateUserRole(ctx context.Context, caller types.Principal, userID int64, role types.Role) error
	DeleteUser(ctx context.Context, caller types.Principal, userID int64) error
	// EnsureAdmin creates the bootstrap administrator, or resets its
	// password and role when the account already exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) ListUsers(ctx context.Context, caller types.Principal) ([]types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ListUsers")
	defer span.End()

	if !caller.IsAdmin() {
		return nil, types.ErrForbidden
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	if users == nil {
		users = []types.User{}
	}
	return users, nil
}

// UpdateUserRole refuses to let admins demote themselves.
func (s *ServiceImpl) UpdateUserRole(ctx context.Context, caller types.Principal, userID int64, role types.Role) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateUserRole", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("user.role", string(role)),
	))
	defer span.End()

	if !caller.IsAdmin() {
		return types.ErrForbidden
	}
	if !role.Valid() {
		return fmt.Errorf("%w: role must be one of user, owner, admin", types.ErrInvalidInput)
	}
	if caller.UserID == userID && role != types.RoleAdmin {
		return fmt.Errorf("%w: admins cannot demote themselves", types.ErrInvalidInput)
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		span.RecordError(err)
		return fmt.Errorf("error updating user role: %w", err)
	}
	s.logger.InfoContext(ctx, "User role updated",
		slog.Int64("userID", userID), slog.String("role", string(role)), slog.Int64("adminID", caller.UserID))
	return nil
}

func (s *ServiceImpl) DeleteUser(ctx context.Context, caller types.Principal, userID int64) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "DeleteUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if !caller.IsAdmin() {
		return types.ErrForbidden
	}
	if caller.UserID == userID {
		return fmt.Errorf("%w: admins cannot delete their own account", types.ErrInvalidInput)
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("error deleting user: %w", err)
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", userID), slog.Int64("adminID", caller.UserID))
	return nil
}

func (s *ServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	l := s.logger.With(slog.String("method", "EnsureAdmin"), slog.String("email", email))

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		l.WarnContext(ctx, "Admin credentials not configured; skipping bootstrap")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, types.ErrNotFound):
		id, err := s.repo.CreateUser(ctx, "Administrator", email, string(hashed), types.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		l.InfoContext(ctx, "Admin account created", slog.Int64("userID", id))
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if existing.Role != types.RoleAdmin {
		if err := s.repo.UpdateRole(ctx, existing.ID, types.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
	}
	if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
		if err := s.repo.UpdatePassword(ctx, existing.ID, string(hashed)); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}
	}
	l.InfoContext(ctx, "Admin account ready", slog.Int64("userID", existing.ID))
	return nil
}
