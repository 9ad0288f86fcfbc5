package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/api"
	"github.com/FACorreiaa/tripwise/internal/types"
)

type AuthHandler struct {
	AuthService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		AuthService: authService,
	}
}

// Register godoc
// @Summary      Register a traveller account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterRequest true "Registration"
// @Success      201 {object} types.User
// @Failure      400 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/register"),
	))
	defer span.End()

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.AuthService.Register(ctx, req)
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Passwords do not match")
	case errors.Is(err, types.ErrConflict):
		api.ErrorResponse(w, r, http.StatusConflict, "Email already exists")
	case err != nil:
		api.ServiceErrorResponse(w, r, err, "Registration failed")
	default:
		api.WriteJSONResponse(w, r, http.StatusCreated, user)
	}
}

// Login godoc
// @Summary      Log in and receive an access/refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} types.LoginResponse
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/login"),
	))
	defer span.End()

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Login successful",
	})
}

// RefreshSession godoc
// @Summary      Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} types.TokenResponse
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/refresh"),
	))
	defer span.End()

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.AuthService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to refresh session")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout godoc
// @Summary      Revoke a refresh token
// @Tags         auth
// @Accept       json
// @Param        body body types.RefreshTokenRequest true "Refresh token"
// @Success      204
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/logout"),
	))
	defer span.End()

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to log out")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} types.User
// @Failure      401 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := GetPrincipalFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.AuthService.Me(ctx, p.UserID)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to fetch user")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}
