package user

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/api"
	"github.com/FACorreiaa/tripwise/internal/api/auth"
	"github.com/FACorreiaa/tripwise/internal/types"
)

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// ListUsers godoc
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Success      200 {array} types.User
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "ListUsers", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/users"),
	))
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	users, err := h.userService.ListUsers(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err, "Failed to list users")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

// UpdateUserRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userID path int true "User ID"
// @Param        body body types.UpdateRoleRequest true "Role"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/users/{userID}/role [patch]
func (h *HandlerImpl) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "UpdateUserRole", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/users/{userID}/role"),
	))
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := api.IDParam(r, "userID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req types.UpdateRoleRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.userService.UpdateUserRole(ctx, caller, userID, req.Role); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to update role")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"user_id": userID,
		"role":    req.Role,
	})
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         admin
// @Param        userID path int true "User ID"
// @Success      204
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/users/{userID} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "DeleteUser", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/users/{userID}"),
	))
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := api.IDParam(r, "userID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.userService.DeleteUser(ctx, caller, userID); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to delete user")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
