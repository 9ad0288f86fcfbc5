package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/tripwise/config"
	"github.com/FACorreiaa/tripwise/internal/api"
	"github.com/FACorreiaa/tripwise/internal/types"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext returns the caller set by Authenticate.
func GetPrincipalFromContext(ctx context.Context) (types.Principal, bool) {
	p, ok := ctx.Value(principalKey).(types.Principal)
	return p, ok
}

// parseToken validates signature, expiry, issuer and audience.
func parseToken(tokenString string, jwtCfg config.JWTConfig) (*types.Claims, error) {
	claims := &types.Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if jwtCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(jwtCfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtCfg.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !api.VerifyAudience(claims.Audience, jwtCfg.Audience) {
		return nil, jwt.ErrTokenInvalidAudience
	}
	if !claims.Role.Valid() || claims.UserID <= 0 {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return "", false
	}
	return headerParts[1], true
}

// Authenticate is middleware to validate JWT access tokens.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	if jwtCfg.SecretKey == "" {
		logger.Error("FATAL: JWT Secret Key is not configured!")
		panic("JWT Secret Key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			if r.Header.Get("Authorization") == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}
			tokenString, ok := bearerToken(r)
			if !ok {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := parseToken(tokenString, jwtCfg)
			if err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				errMsg := "Invalid or expired token"
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					errMsg = "Token has expired"
				case errors.Is(err, jwt.ErrTokenMalformed):
					errMsg = "Malformed token"
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					errMsg = "Invalid token signature"
				case errors.Is(err, jwt.ErrTokenInvalidIssuer):
					errMsg = "Invalid token issuer"
				case errors.Is(err, jwt.ErrTokenInvalidAudience):
					errMsg = "Invalid token audience"
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, errMsg)
				return
			}

			ctx = WithPrincipal(ctx, types.Principal{UserID: claims.UserID, Role: claims.Role})
			l.DebugContext(ctx, "Authentication successful", slog.Int64("userID", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches the caller when a valid bearer token is
// present and lets anonymous requests through otherwise.
func OptionalAuthenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := parseToken(tokenString, jwtCfg)
			if err != nil {
				logger.DebugContext(r.Context(), "Ignoring invalid optional token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithPrincipal(r.Context(), types.Principal{UserID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole runs after Authenticate and rejects callers whose role is not
// in roles.
func RequireRole(logger *slog.Logger, roles ...types.Role) func(next http.Handler) http.Handler {
	allowed := make(map[types.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := GetPrincipalFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "Principal missing from context")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				logger.WarnContext(ctx, "Role check failed",
					slog.Any("allowed_roles", roles), slog.String("actual_role", string(p.Role)))
				api.ErrorResponse(w, r, http.StatusForbidden, "Access denied for your role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
