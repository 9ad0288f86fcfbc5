package island

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListIslands(ctx context.Context) ([]types.IslandView, error)
	GetIslandDetail(ctx context.Context, id int64) (*types.IslandDetail, error)
	CreateIsland(ctx context.Context, params types.IslandParams) (*types.IslandView, error)
	UpdateIsland(ctx context.Context, id int64, params types.IslandParams) (*types.IslandView, error)
	DeleteIsland(ctx context.Context, id int64) error
}

// EstablishmentLister returns the approved establishments located on an island.
type EstablishmentLister interface {
	ListApprovedByIsland(ctx context.Context, islandID int64) ([]types.Establishment, error)
}

type ActivityLister interface {
	ListByIsland(ctx context.Context, islandID int64) ([]types.Activity, error)
}

// CatalogInvalidator drops cached entity names after a write.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ServiceImpl struct {
	logger         *slog.Logger
	repo           Repository
	establishments EstablishmentLister
	activities     ActivityLister
	catalog        CatalogInvalidator
}

func NewIslandService(repo Repository, establishments EstablishmentLister, activities ActivityLister,
	catalog CatalogInvalidator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		repo:           repo,
		establishments: establishments,
		activities:     activities,
		catalog:        catalog,
	}
}

func (s *ServiceImpl) ListIslands(ctx context.Context) ([]types.IslandView, error) {
	ctx, span := otel.Tracer("IslandService").Start(ctx, "ListIslands")
	defer span.End()

	islands, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list islands", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list islands")
		return nil, fmt.Errorf("error listing islands: %w", err)
	}
	views := make([]types.IslandView, 0, len(islands))
	for _, i := range islands {
		views = append(views, types.NewIslandView(i))
	}
	span.SetStatus(codes.Ok, "Islands listed")
	return views, nil
}

func (s *ServiceImpl) GetIslandDetail(ctx context.Context, id int64) (*types.IslandDetail, error) {
	ctx, span := otel.Tracer("IslandService").Start(ctx, "GetIslandDetail", trace.WithAttributes(
		attribute.Int64("island.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetIslandDetail"), slog.Int64("islandID", id))

	island, err := s.repo.GetByID(ctx, id)
	if err != nil {
		l.WarnContext(ctx, "Failed to fetch island", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch island")
		return nil, fmt.Errorf("error fetching island: %w", err)
	}

	establishments, err := s.establishments.ListApprovedByIsland(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch island establishments", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching island establishments: %w", err)
	}

	activities, err := s.activities.ListByIsland(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch island activities", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching island activities: %w", err)
	}

	if establishments == nil {
		establishments = []types.Establishment{}
	}
	if activities == nil {
		activities = []types.Activity{}
	}
	span.SetStatus(codes.Ok, "Island detail fetched")
	return &types.IslandDetail{
		IslandView:     types.NewIslandView(*island),
		Establishments: establishments,
		Activities:     activities,
	}, nil
}

func validateParams(p *types.IslandParams) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Coordinates = strings.TrimSpace(p.Coordinates)
	if p.Name == "" {
		return fmt.Errorf("%w: island name is required", types.ErrInvalidInput)
	}
	if p.Coordinates != "" {
		if _, _, ok := (types.Island{Coordinates: p.Coordinates}).LatLon(); !ok {
			return fmt.Errorf("%w: coordinates must be \"lat,lon\" within range", types.ErrInvalidInput)
		}
	}
	return nil
}

func (s *ServiceImpl) CreateIsland(ctx context.Context, params types.IslandParams) (*types.IslandView, error) {
	ctx, span := otel.Tracer("IslandService").Start(ctx, "CreateIsland")
	defer span.End()

	if err := validateParams(&params); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create island", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create island")
		return nil, fmt.Errorf("error creating island: %w", err)
	}
	s.invalidateCatalog(ctx)

	view := types.NewIslandView(types.Island{
		ID:          id,
		Name:        params.Name,
		Image:       params.Image,
		Description: params.Description,
		Details:     params.Details,
		History:     params.History,
		Coordinates: params.Coordinates,
	})
	s.logger.InfoContext(ctx, "Island created", slog.Int64("islandID", id))
	return &view, nil
}

func (s *ServiceImpl) UpdateIsland(ctx context.Context, id int64, params types.IslandParams) (*types.IslandView, error) {
	ctx, span := otel.Tracer("IslandService").Start(ctx, "UpdateIsland", trace.WithAttributes(
		attribute.Int64("island.id", id),
	))
	defer span.End()

	if err := validateParams(&params); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update island", slog.Int64("islandID", id), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update island")
		return nil, fmt.Errorf("error updating island: %w", err)
	}
	s.invalidateCatalog(ctx)

	view := types.NewIslandView(types.Island{
		ID:          id,
		Name:        params.Name,
		Image:       params.Image,
		Description: params.Description,
		Details:     params.Details,
		History:     params.History,
		Coordinates: params.Coordinates,
	})
	return &view, nil
}

func (s *ServiceImpl) DeleteIsland(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("IslandService").Start(ctx, "DeleteIsland", trace.WithAttributes(
		attribute.Int64("island.id", id),
	))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete island", slog.Int64("islandID", id), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete island")
		return fmt.Errorf("error deleting island: %w", err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

// invalidateCatalog never fails the write; a stale catalog only delays links.
func (s *ServiceImpl) invalidateCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate catalog cache", slog.Any("error", err))
	}
}
