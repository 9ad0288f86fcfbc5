package llmInteraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/FACorreiaa/tripwise/internal/api/generative_ai"
	"github.com/FACorreiaa/tripwise/internal/types"
)

const (
	MsgEmptyMessage    = "⚠️ Please type a message."
	MsgNoDestinations  = "Please select at least one destination."
	MsgInvalidNumbers  = "Invalid numeric input for budget, days, or number of people."
	MsgIslandsNotFound = "Selected islands not found."

	DefaultMaxTripDays   = 30
	DefaultMaxTripPeople = 50
)

// TripLimits caps the size of an itinerary request. Non-positive fields
// fall back to the defaults.
type TripLimits struct {
	MaxDays   int
	MaxPeople int
}

func (l TripLimits) withDefaults() TripLimits {
	if l.MaxDays <= 0 {
		l.MaxDays = DefaultMaxTripDays
	}
	if l.MaxPeople <= 0 {
		l.MaxPeople = DefaultMaxTripPeople
	}
	return l
}

// PlanInputError carries the user-facing reason a trip request was refused.
type PlanInputError struct {
	Message string
}

func (e *PlanInputError) Error() string { return e.Message }

func (e *PlanInputError) Is(target error) bool { return target == types.ErrInvalidInput }

var _ LlmInteractionService = (*LlmInteractionServiceImpl)(nil)

type LlmInteractionService interface {
	// Ask answers a chat message with catalog names hyperlinked. Model
	// failures are reported inside the response text, not as errors.
	Ask(ctx context.Context, message string) (string, error)
	// AskPlain is Ask without hyperlinks, for plain-text clients.
	AskPlain(ctx context.Context, message string) (string, error)
	// PlanTrip returns a day-segmented itinerary. Model failures are set in
	// the response Error field.
	PlanTrip(ctx context.Context, req types.PlanTripRequest) (*types.PlanTripResponse, error)
}

type CatalogProvider interface {
	Entries(ctx context.Context) ([]types.CatalogEntry, error)
}

type LlmInteractionServiceImpl struct {
	logger    *slog.Logger
	oracle    generativeAI.Oracle
	assembler *ContextAssembler
	islands   IslandStore
	catalog   CatalogProvider
	limits    TripLimits
}

func NewLlmInteractionService(oracle generativeAI.Oracle, assembler *ContextAssembler, islands IslandStore,
	catalog CatalogProvider, limits TripLimits, logger *slog.Logger) *LlmInteractionServiceImpl {
	return &LlmInteractionServiceImpl{
		logger:    logger,
		oracle:    oracle,
		assembler: assembler,
		islands:   islands,
		catalog:   catalog,
		limits:    limits.withDefaults(),
	}
}

func (s *LlmInteractionServiceImpl) Ask(ctx context.Context, message string) (string, error) {
	return s.ask(ctx, message, true)
}

func (s *LlmInteractionServiceImpl) AskPlain(ctx context.Context, message string) (string, error) {
	return s.ask(ctx, message, false)
}

func (s *LlmInteractionServiceImpl) ask(ctx context.Context, message string, link bool) (string, error) {
	ctx, span := otel.Tracer("LlmInteractionService").Start(ctx, "Ask", trace.WithAttributes(
		attribute.Bool("link", link),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Ask"))

	message = strings.TrimSpace(message)
	if message == "" {
		return MsgEmptyMessage, nil
	}

	dbContext, err := s.assembler.Build(ctx, message)
	if err != nil {
		l.ErrorContext(ctx, "Failed to assemble chat context", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Context assembly failed")
		return "", err
	}

	answer, err := s.oracle.GenerateContent(ctx, generateChatPrompt(dbContext, message))
	if err != nil {
		l.WarnContext(ctx, "Chat generation failed", slog.Any("error", err))
		span.RecordError(err)
		return "⚠️ Chat error: " + err.Error(), nil
	}
	if !link {
		return answer, nil
	}

	entries, err := s.catalog.Entries(ctx)
	if err != nil {
		l.WarnContext(ctx, "Failed to load catalog for linking, answering unlinked", slog.Any("error", err))
		span.RecordError(err)
		return answer, nil
	}
	return LinkEntities(answer, entries), nil
}

func (s *LlmInteractionServiceImpl) PlanTrip(ctx context.Context, req types.PlanTripRequest) (*types.PlanTripResponse, error) {
	ctx, span := otel.Tracer("LlmInteractionService").Start(ctx, "PlanTrip", trace.WithAttributes(
		attribute.Int("trip.days", req.Days),
		attribute.Int("trip.people", req.People),
		attribute.Int("trip.destinations", len(req.DestinationIDs)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "PlanTrip"))

	if len(req.DestinationIDs) == 0 {
		return nil, &PlanInputError{Message: MsgNoDestinations}
	}
	if req.Days < 1 || req.People < 1 || req.BudgetPerPerson < 0 ||
		req.Days > s.limits.MaxDays || req.People > s.limits.MaxPeople {
		return nil, &PlanInputError{Message: MsgInvalidNumbers}
	}

	islands, err := s.islands.GetByIDs(ctx, req.DestinationIDs)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error loading selected islands: %w", err)
	}
	if len(islands) == 0 {
		return nil, &PlanInputError{Message: MsgIslandsNotFound}
	}

	dbContext, err := s.assembler.TripContext(ctx, islands)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	names := make([]string, 0, len(islands))
	for _, i := range islands {
		names = append(names, i.Name)
	}
	resp := &types.PlanTripResponse{
		Destination: strings.Join(names, ", "),
		Budget:      req.BudgetPerPerson,
		Days:        req.Days,
		People:      req.People,
		DayPlans:    []types.DayPlan{},
	}

	text, err := s.oracle.GenerateContent(ctx,
		generatePlanPrompt(resp.Destination, req.Days, req.People, req.BudgetPerPerson, dbContext))
	if err != nil {
		l.WarnContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		span.RecordError(err)
		resp.Error = "⚠️ Error generating plan: " + err.Error()
		return resp, nil
	}

	resp.DayPlans = SegmentDays(text, req.Days)
	resp.Itinerary = RenderItinerary(resp.DayPlans)
	if len(resp.DayPlans) < req.Days {
		l.InfoContext(ctx, "Model returned fewer days than requested",
			slog.Int("requested", req.Days), slog.Int("returned", len(resp.DayPlans)))
	}
	return resp, nil
}

// IsPlanInputError reports whether err is a trip validation failure and returns its message.
func IsPlanInputError(err error) (string, bool) {
	var pe *PlanInputError
	if errors.As(err, &pe) {
		return pe.Message, true
	}
	return "", false
}
