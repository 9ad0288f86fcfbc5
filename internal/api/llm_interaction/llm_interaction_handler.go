package llmInteraction

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/api"
	"github.com/FACorreiaa/tripwise/internal/types"
)

type LlmInteractionHandler struct {
	llmInteractionService LlmInteractionService
	logger                *slog.Logger
}

func NewLLMHandler(llmInteractionService LlmInteractionService, logger *slog.Logger) *LlmInteractionHandler {
	return &LlmInteractionHandler{
		llmInteractionService: llmInteractionService,
		logger:                logger,
	}
}

// Ask godoc
// @Summary      Ask WiseBot a travel question
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Param        body body types.AskRequest true "Message"
// @Success      200 {object} types.AskResponse
// @Failure      500 {object} map[string]interface{}
// @Router       /ask [post]
func (h *LlmInteractionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LlmInteractionHandler").Start(r.Context(), "Ask", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/ask"),
	))
	defer span.End()

	var req types.AskRequest
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "body must be a JSON object with a message field")
		return
	}

	answer, err := h.llmInteractionService.Ask(ctx, req.Message)
	if err != nil {
		h.logger.ErrorContext(ctx, "Chat request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to answer message")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.AskResponse{Response: answer})
}

type planTripBody struct {
	Destinations []int64  `json:"destinations"`
	Budget       *float64 `json:"budget"`
	Days         *int     `json:"days"`
	People       *int     `json:"people"`
}

// parsePlanTrip reads either a form post or a JSON body. Invalid numbers
// are reported as nil so the service can answer with a single message.
func parsePlanTrip(r *http.Request) (types.PlanTripRequest, bool, error) {
	var req types.PlanTripRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body planTripBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req, false, err
		}
		req.DestinationIDs = body.Destinations
		if body.Budget == nil || body.Days == nil || body.People == nil {
			return req, false, nil
		}
		req.BudgetPerPerson, req.Days, req.People = *body.Budget, *body.Days, *body.People
		return req, true, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, false, err
	}
	var raw []string
	raw = append(raw, r.PostForm["destinations"]...)
	raw = append(raw, r.PostForm["destinations[]"]...)
	for _, v := range raw {
		// Unparseable ids cannot match an island and are dropped here.
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			req.DestinationIDs = append(req.DestinationIDs, id)
		}
	}
	if len(raw) > 0 && len(req.DestinationIDs) == 0 {
		req.DestinationIDs = []int64{-1}
	}

	budget, err1 := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get("budget")), 64)
	days, err2 := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("days")))
	people, err3 := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("people")))
	if err1 != nil || err2 != nil || err3 != nil {
		return req, false, nil
	}
	req.BudgetPerPerson, req.Days, req.People = budget, days, people
	return req, true, nil
}

// PlanTrip godoc
// @Summary      Generate a day-by-day itinerary
// @Tags         assistant
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Success      200 {object} types.PlanTripResponse
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /plan_trip [post]
func (h *LlmInteractionHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LlmInteractionHandler").Start(r.Context(), "PlanTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plan_trip"),
	))
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	req, numbersOK, err := parsePlanTrip(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "could not parse request body")
		return
	}
	if len(req.DestinationIDs) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, MsgNoDestinations)
		return
	}
	if !numbersOK {
		api.ErrorResponse(w, r, http.StatusBadRequest, MsgInvalidNumbers)
		return
	}

	resp, err := h.llmInteractionService.PlanTrip(ctx, req)
	if err != nil {
		if msg, ok := IsPlanInputError(err); ok {
			api.ErrorResponse(w, r, http.StatusBadRequest, msg)
			return
		}
		h.logger.ErrorContext(ctx, "Trip planning failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to plan trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
