package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/tripwise/app/observability/metrics"
	"github.com/FACorreiaa/tripwise/config"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

var ErrPasswordMismatch = errors.New("passwords do not match")

type AuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshSession(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (*types.User, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
	now    func() time.Time
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	if jwtCfg.AccessTokenTTL <= 0 {
		jwtCfg.AccessTokenTTL = 15 * time.Minute
	}
	if jwtCfg.RefreshTokenTTL <= 0 {
		jwtCfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
		now:    time.Now,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.email", req.Email),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"), slog.String("email", req.Email))

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		return nil, fmt.Errorf("%w: name, email and password are required", types.ErrInvalidInput)
	case !validEmail(req.Email):
		return nil, fmt.Errorf("%w: invalid email address", types.ErrInvalidInput)
	case req.Password != req.ConfirmPassword:
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidInput, ErrPasswordMismatch)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.repo.Register(ctx, req.Name, req.Email, string(hashed))
	if err != nil {
		l.WarnContext(ctx, "Registration failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Registration failed")
		return nil, err
	}

	metrics.Get().RegisterRequestsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "User registered", slog.Int64("userID", id))
	now := s.now()
	return &types.User{ID: id, Name: req.Name, Email: req.Email, Role: types.RoleUser, CreatedAt: now, UpdatedAt: now}, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "Login for unknown email")
			return "", "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
		}
		span.RecordError(err)
		return "", "", fmt.Errorf("error fetching user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Invalid password", slog.Int64("userID", user.ID))
		return "", "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		span.RecordError(err)
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken := uuid.New()
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, s.now().Add(s.jwtCfg.RefreshTokenTTL)); err != nil {
		span.RecordError(err)
		return "", "", err
	}

	l.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return accessToken, refreshToken.String(), nil
}

// RefreshSession rotates the refresh token: the presented one is revoked and
// a new pair is issued.
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshSession")
	defer span.End()

	old, err := uuid.Parse(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("malformed refresh token: %w", types.ErrUnauthenticated)
	}
	userID, err := s.repo.ValidateRefreshTokenAndGetUserID(ctx, old)
	if err != nil {
		span.RecordError(err)
		return "", "", err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return "", "", fmt.Errorf("error fetching user: %w", err)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}
	next := uuid.New()
	if err := s.repo.RotateRefreshToken(ctx, userID, old, next, s.now().Add(s.jwtCfg.RefreshTokenTTL)); err != nil {
		span.RecordError(err)
		return "", "", err
	}
	return accessToken, next.String(), nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: malformed refresh token", types.ErrInvalidInput)
	}
	if err := s.repo.InvalidateRefreshToken(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "Failed to revoke refresh token", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID int64) (*types.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := s.now()
	claims := types.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenTTL)),
		},
	}
	if s.jwtCfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.jwtCfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
}
