package visit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/tripwise/internal/api"
	"github.com/FACorreiaa/tripwise/internal/types"
)

const homePageTopIslands = 10

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

// PopularIslands godoc
// @Summary      Top islands by visits in a calendar year
// @Tags         islands
// @Produce      json
// @Param        year query int false "Calendar year (default current)"
// @Success      200 {array} types.IslandPopularity
// @Router       /islands/popular [get]
func (h *HandlerImpl) PopularIslands(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	top, err := h.service.TopIslands(r.Context(), year, homePageTopIslands)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to rank islands")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, top)
}

// RecordVisit godoc
// @Summary      Record monthly visits for an island
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body body types.RecordVisitRequest true "Visit"
// @Success      201 {object} types.Visit
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/visits [post]
func (h *HandlerImpl) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req types.RecordVisitRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.service.RecordVisit(r.Context(), req)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to record visit")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, v)
}

// DeleteVisit godoc
// @Summary      Delete a visit record
// @Tags         admin
// @Param        visitID path int true "Visit ID"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/visits/{visitID} [delete]
func (h *HandlerImpl) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "visitID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteVisit(r.Context(), id); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to delete visit")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ListIslandVisits godoc
// @Summary      Visit records for an island
// @Tags         admin
// @Produce      json
// @Param        islandID path int true "Island ID"
// @Success      200 {array} types.Visit
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/islands/{islandID}/visits [get]
func (h *HandlerImpl) ListIslandVisits(w http.ResponseWriter, r *http.Request) {
	islandID, err := api.IDParam(r, "islandID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	visits, err := h.service.ListIslandVisits(r.Context(), islandID)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to list visits")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, visits)
}
