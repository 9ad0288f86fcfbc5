package visit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	RecordVisit(ctx context.Context, req types.RecordVisitRequest) (*types.Visit, error)
	DeleteVisit(ctx context.Context, id int64) error
	ListIslandVisits(ctx context.Context, islandID int64) ([]types.Visit, error)
	// TopIslands ranks islands by visits in the calendar year. year <= 0
	// means the current year.
	TopIslands(ctx context.Context, year, limit int) ([]types.IslandPopularity, error)
}

type IslandLookup interface {
	GetByID(ctx context.Context, id int64) (*types.Island, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	islands IslandLookup
	now     func() time.Time
}

func NewVisitService(repo Repository, islands IslandLookup, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		islands: islands,
		now:     time.Now,
	}
}

// YearBounds returns Jan 1 and Dec 31 of year, both inclusive.
func YearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// parseMonth accepts YYYY-MM or YYYY-MM-DD and normalises to the first of the month.
func parseMonth(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: visit_month must be YYYY-MM or YYYY-MM-DD", types.ErrInvalidInput)
}

func (s *ServiceImpl) RecordVisit(ctx context.Context, req types.RecordVisitRequest) (*types.Visit, error) {
	ctx, span := otel.Tracer("VisitService").Start(ctx, "RecordVisit", trace.WithAttributes(
		attribute.Int64("island.id", req.IslandID),
	))
	defer span.End()

	month, err := parseMonth(req.VisitMonth)
	if err != nil {
		return nil, err
	}
	if req.TotalVisits < 0 {
		return nil, fmt.Errorf("%w: total_visits cannot be negative", types.ErrInvalidInput)
	}
	if _, err := s.islands.GetByID(ctx, req.IslandID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: island %d does not exist", types.ErrInvalidInput, req.IslandID)
		}
		return nil, fmt.Errorf("error fetching island: %w", err)
	}

	id, err := s.repo.Record(ctx, req.IslandID, month, req.TotalVisits)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to record visit", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error recording visit: %w", err)
	}
	return &types.Visit{ID: id, IslandID: req.IslandID, VisitMonth: month, TotalVisits: req.TotalVisits}, nil
}

func (s *ServiceImpl) DeleteVisit(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting visit: %w", err)
	}
	return nil
}

func (s *ServiceImpl) ListIslandVisits(ctx context.Context, islandID int64) ([]types.Visit, error) {
	visits, err := s.repo.ListByIsland(ctx, islandID)
	if err != nil {
		return nil, fmt.Errorf("error listing visits: %w", err)
	}
	if visits == nil {
		visits = []types.Visit{}
	}
	return visits, nil
}

func (s *ServiceImpl) TopIslands(ctx context.Context, year, limit int) ([]types.IslandPopularity, error) {
	if year <= 0 {
		year = s.now().Year()
	}
	ctx, span := otel.Tracer("VisitService").Start(ctx, "TopIslands", trace.WithAttributes(
		attribute.Int("year", year),
		attribute.Int("limit", limit),
	))
	defer span.End()

	from, to := YearBounds(year)
	top, err := s.repo.Popularity(ctx, from, to, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to rank islands", slog.Int("year", year), slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error ranking islands: %w", err)
	}
	if top == nil {
		top = []types.IslandPopularity{}
	}
	return top, nil
}
