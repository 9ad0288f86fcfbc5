package activity

import (
	"log/slog"
	"net/http"

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

// CreateActivity godoc
// @Summary      Add an activity to an island
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body body types.ActivityParams true "Activity"
// @Success      201 {object} types.Activity
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/activities [post]
func (h *HandlerImpl) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var params types.ActivityParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.Create(r.Context(), params)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to create activity")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, a)
}

// UpdateActivity godoc
// @Summary      Update an activity
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        activityID path int true "Activity ID"
// @Param        body body types.ActivityParams true "Activity"
// @Success      200 {object} types.Activity
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/activities/{activityID} [put]
func (h *HandlerImpl) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "activityID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var params types.ActivityParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to update activity")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, a)
}

// DeleteActivity godoc
// @Summary      Delete an activity
// @Tags         admin
// @Param        activityID path int true "Activity ID"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/activities/{activityID} [delete]
func (h *HandlerImpl) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "activityID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to delete activity")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
