package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Create(ctx context.Context, params types.ActivityParams) (*types.Activity, error)
	Update(ctx context.Context, id int64, params types.ActivityParams) (*types.Activity, error)
	Delete(ctx context.Context, id int64) error
}

type IslandLookup interface {
	GetByID(ctx context.Context, id int64) (*types.Island, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	islands IslandLookup
}

func NewActivityService(repo Repository, islands IslandLookup, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		islands: islands,
	}
}

func (s *ServiceImpl) validate(ctx context.Context, p *types.ActivityParams) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: activity name is required", types.ErrInvalidInput)
	}
	_, err := s.islands.GetByID(ctx, p.IslandID)
	if errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("%w: island %d does not exist", types.ErrInvalidInput, p.IslandID)
	}
	if err != nil {
		return fmt.Errorf("error fetching island: %w", err)
	}
	return nil
}

func (s *ServiceImpl) Create(ctx context.Context, params types.ActivityParams) (*types.Activity, error) {
	ctx, span := otel.Tracer("ActivityService").Start(ctx, "Create", trace.WithAttributes(
		attribute.Int64("island.id", params.IslandID),
	))
	defer span.End()

	if err := s.validate(ctx, &params); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create activity", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error creating activity: %w", err)
	}
	return &types.Activity{ID: id, IslandID: params.IslandID, Name: params.Name, Description: params.Description}, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id int64, params types.ActivityParams) (*types.Activity, error) {
	ctx, span := otel.Tracer("ActivityService").Start(ctx, "Update", trace.WithAttributes(
		attribute.Int64("activity.id", id),
	))
	defer span.End()

	if err := s.validate(ctx, &params); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error updating activity: %w", err)
	}
	return &types.Activity{ID: id, IslandID: params.IslandID, Name: params.Name, Description: params.Description}, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete activity", slog.Int64("activityID", id), slog.Any("error", err))
		return fmt.Errorf("error deleting activity: %w", err)
	}
	return nil
}
