package booking

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

// CreateBooking godoc
// @Summary      Book an establishment
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body body types.CreateBookingRequest true "Booking"
// @Success      201 {object} types.Booking
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /bookings [post]
func (h *HandlerImpl) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BookingHandler").Start(r.Context(), "CreateBooking", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/bookings"),
	))
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req types.CreateBookingRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.service.CreateBooking(ctx, caller, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to create booking")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, b)
}

// ListMyBookings godoc
// @Summary      Bookings made by the caller
// @Tags         bookings
// @Produce      json
// @Success      200 {array} types.Booking
// @Security     BearerAuth
// @Router       /bookings [get]
func (h *HandlerImpl) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	list, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to list bookings")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// ListManagedBookings godoc
// @Summary      Bookings on the caller's establishments
// @Tags         owner
// @Produce      json
// @Success      200 {array} types.Booking
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /owner/bookings [get]
func (h *HandlerImpl) ListManagedBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	list, err := h.service.ListManaged(r.Context(), caller)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to list bookings")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// UpdateBookingStatus godoc
// @Summary      Move a booking to a new status
// @Tags         owner
// @Accept       json
// @Produce      json
// @Param        bookingID path int true "Booking ID"
// @Param        body body types.UpdateBookingStatusRequest true "New status"
// @Success      200 {object} types.Booking
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /owner/bookings/{bookingID}/status [patch]
func (h *HandlerImpl) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BookingHandler").Start(r.Context(), "UpdateBookingStatus", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/owner/bookings/{bookingID}/status"),
	))
	defer span.End()

	caller, ok := auth.GetPrincipalFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := api.IDParam(r, "bookingID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req types.UpdateBookingStatusRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.service.UpdateStatus(ctx, caller, id, req.Status)
	if err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to update booking")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, b)
}

// DeleteBooking godoc
// @Summary      Withdraw a pending booking
// @Tags         bookings
// @Param        bookingID path int true "Booking ID"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /bookings/{bookingID} [delete]
func (h *HandlerImpl) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.GetPrincipalFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := api.IDParam(r, "bookingID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteBooking(r.Context(), caller, id); err != nil {
		api.ServiceErrorResponse(w, r, err, "Failed to delete booking")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
