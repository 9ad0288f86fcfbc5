package establishment

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
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func startSpan(r *http.Request, name, route string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer("EstablishmentHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return r.WithContext(ctx), span
}

// ListEstablishments godoc
// @Summary      List approved establishments
// @Tags         places
// @Produce      json
// @Param        q query string false "Filter by name or type"
// @Success      200 {array} types.Establishment
// @Router       /places [get]
func (h *HandlerImpl) ListEstablishments(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListEstablishments", "/places")
	defer span.End()

	list, err := h.service.ListPublic(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to list establishments")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// GetEstablishment godoc
// @Summary      Establishment detail
// @Tags         places
// @Produce      json
// @Param        placeID path int true "Establishment ID"
// @Success      200 {object} types.Establishment
// @Failure      404 {object} map[string]interface{}
// @Router       /places/{placeID} [get]
func (h *HandlerImpl) GetEstablishment(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetEstablishment", "/places/{placeID}")
	defer span.End()

	id, err := api.IDParam(r, "placeID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var viewer *types.Principal
	if p, ok := auth.GetPrincipalFromContext(r.Context()); ok {
		viewer = &p
	}
	e, err := h.service.GetEstablishment(r.Context(), viewer, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to fetch establishment")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, e)
}

// ListMine godoc
// @Summary      The caller's establishments with moderation state
// @Tags         owner
// @Produce      json
// @Success      200 {array} types.Establishment
// @Security     BearerAuth
// @Router       /owner/establishments [get]
func (h *HandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListMine", "/owner/establishments")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	list, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to list establishments")
		return
	}

	type ownedEstablishment struct {
		types.Establishment
		State string `json:"state"`
	}
	out := make([]ownedEstablishment, 0, len(list))
	for _, e := range list {
		out = append(out, ownedEstablishment{Establishment: e, State: e.ModerationState()})
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

// CreateEstablishment godoc
// @Summary      Submit a new establishment for approval
// @Tags         owner
// @Accept       json
// @Produce      json
// @Param        body body types.EstablishmentParams true "Establishment"
// @Success      201 {object} types.Establishment
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /owner/establishments [post]
func (h *HandlerImpl) CreateEstablishment(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreateEstablishment", "/owner/establishments")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	var params types.EstablishmentParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.service.Create(r.Context(), caller, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to create establishment")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, e)
}

// UpdateEstablishment godoc
// @Summary      Update an owned establishment
// @Tags         owner
// @Accept       json
// @Produce      json
// @Param        placeID path int true "Establishment ID"
// @Param        body body types.EstablishmentParams true "Establishment"
// @Success      200 {object} types.Establishment
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /owner/establishments/{placeID} [put]
func (h *HandlerImpl) UpdateEstablishment(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "UpdateEstablishment", "/owner/establishments/{placeID}")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := api.IDParam(r, "placeID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var params types.EstablishmentParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.service.Update(r.Context(), caller, id, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to update establishment")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, e)
}

// DeleteEstablishment godoc
// @Summary      Delete an owned establishment
// @Tags         owner
// @Param        placeID path int true "Establishment ID"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /owner/establishments/{placeID} [delete]
func (h *HandlerImpl) DeleteEstablishment(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "DeleteEstablishment", "/owner/establishments/{placeID}")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := api.IDParam(r, "placeID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to delete establishment")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ListPending godoc
// @Summary      Establishments awaiting approval
// @Tags         admin
// @Produce      json
// @Success      200 {array} types.Establishment
// @Security     BearerAuth
// @Router       /admin/establishments/pending [get]
func (h *HandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ListPending", "/admin/establishments/pending")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	list, err := h.service.ListPending(r.Context(), caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to list pending establishments")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// Approve godoc
// @Summary      Approve an establishment
// @Tags         admin
// @Produce      json
// @Param        placeID path int true "Establishment ID"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/establishments/{placeID}/approve [post]
func (h *HandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Approve", "/admin/establishments/{placeID}/approve")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := api.IDParam(r, "placeID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Approve(r.Context(), caller, id); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to approve establishment")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"success": true, "state": "approved"})
}

// Reject godoc
// @Summary      Reject an establishment
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        placeID path int true "Establishment ID"
// @Param        body body types.RejectEstablishmentRequest false "Reason"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/establishments/{placeID}/reject [post]
func (h *HandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "Reject", "/admin/establishments/{placeID}/reject")
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := api.IDParam(r, "placeID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req types.RejectEstablishmentRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Reject(r.Context(), caller, id, req.Reason); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to reject establishment")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"success": true, "state": "rejected"})
}
