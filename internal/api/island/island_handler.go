package island

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/api"
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

// ListIslands godoc
// @Summary      List islands
// @Tags         islands
// @Produce      json
// @Success      200 {array} types.IslandView
// @Router       /islands [get]
func (h *HandlerImpl) ListIslands(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("IslandHandler").Start(r.Context(), "ListIslands", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/islands"),
	))
	defer span.End()

	islands, err := h.service.ListIslands(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list islands", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err, "Failed to list islands")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, islands)
}

// GetIsland godoc
// @Summary      Island detail with establishments and activities
// @Tags         islands
// @Produce      json
// @Param        islandID path int true "Island ID"
// @Success      200 {object} types.IslandDetail
// @Failure      404 {object} map[string]interface{}
// @Router       /islands/{islandID} [get]
func (h *HandlerImpl) GetIsland(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("IslandHandler").Start(r.Context(), "GetIsland", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/islands/{islandID}"),
	))
	defer span.End()

	id, err := api.IDParam(r, "islandID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.service.GetIslandDetail(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to fetch island")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, detail)
}

// CreateIsland godoc
// @Summary      Create an island
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body body types.IslandParams true "Island"
// @Success      201 {object} types.IslandView
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/islands [post]
func (h *HandlerImpl) CreateIsland(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("IslandHandler").Start(r.Context(), "CreateIsland", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/islands"),
	))
	defer span.End()

	var params types.IslandParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	island, err := h.service.CreateIsland(ctx, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to create island")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, island)
}

// UpdateIsland godoc
// @Summary      Update an island
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        islandID path int true "Island ID"
// @Param        body body types.IslandParams true "Island"
// @Success      200 {object} types.IslandView
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/islands/{islandID} [put]
func (h *HandlerImpl) UpdateIsland(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("IslandHandler").Start(r.Context(), "UpdateIsland", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/islands/{islandID}"),
	))
	defer span.End()

	id, err := api.IDParam(r, "islandID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var params types.IslandParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	island, err := h.service.UpdateIsland(ctx, id, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to update island")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, island)
}

// DeleteIsland godoc
// @Summary      Delete an island with its activities and visits
// @Tags         admin
// @Param        islandID path int true "Island ID"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/islands/{islandID} [delete]
func (h *HandlerImpl) DeleteIsland(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("IslandHandler").Start(r.Context(), "DeleteIsland", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/islands/{islandID}"),
	))
	defer span.End()

	id, err := api.IDParam(r, "islandID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteIsland(ctx, id); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to delete island")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
