package establishment

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

	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListPublic(ctx context.Context, query string) ([]types.Establishment, error)
	GetEstablishment(ctx context.Context, viewer *types.Principal, id int64) (*types.Establishment, error)
	ListMine(ctx context.Context, caller types.Principal) ([]types.Establishment, error)
	Create(ctx context.Context, caller types.Principal, params types.EstablishmentParams) (*types.Establishment, error)
	Update(ctx context.Context, caller types.Principal, id int64, params types.EstablishmentParams) (*types.Establishment, error)
	Delete(ctx context.Context, caller types.Principal, id int64) error
	ListPending(ctx context.Context, caller types.Principal) ([]types.Establishment, error)
	Approve(ctx context.Context, caller types.Principal, id int64) error
	Reject(ctx context.Context, caller types.Principal, id int64, reason string) error
}

// IslandLookup resolves island ids submitted by owners.
type IslandLookup interface {
	GetByID(ctx context.Context, id int64) (*types.Island, error)
}

type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	islands IslandLookup
	catalog CatalogInvalidator
}

func NewEstablishmentService(repo Repository, islands IslandLookup, catalog CatalogInvalidator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		islands: islands,
		catalog: catalog,
	}
}

// ListPublic returns approved establishments, filtered by name or type when
// query is non-empty.
func (s *ServiceImpl) ListPublic(ctx context.Context, query string) ([]types.Establishment, error) {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "ListPublic", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	var (
		list []types.Establishment
		err  error
	)
	if q := strings.TrimSpace(query); q != "" {
		list, err = s.repo.SearchApproved(ctx, q)
	} else {
		list, err = s.repo.ListApproved(ctx)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list establishments", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list establishments")
		return nil, fmt.Errorf("error listing establishments: %w", err)
	}
	if list == nil {
		list = []types.Establishment{}
	}
	return list, nil
}

// GetEstablishment hides unapproved listings from everyone except their
// owner and admins. viewer is nil for anonymous callers.
func (s *ServiceImpl) GetEstablishment(ctx context.Context, viewer *types.Principal, id int64) (*types.Establishment, error) {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "GetEstablishment", trace.WithAttributes(
		attribute.Int64("establishment.id", id),
	))
	defer span.End()

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching establishment: %w", err)
	}
	if !e.IsApproved && (viewer == nil || !viewer.CanManage(e.OwnerID)) {
		return nil, fmt.Errorf("establishment %d is not public: %w", id, types.ErrNotFound)
	}
	return e, nil
}

func (s *ServiceImpl) ListMine(ctx context.Context, caller types.Principal) ([]types.Establishment, error) {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "ListMine")
	defer span.End()

	list, err := s.repo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list owner establishments",
			slog.Int64("ownerID", caller.UserID), slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error listing owner establishments: %w", err)
	}
	if list == nil {
		list = []types.Establishment{}
	}
	return list, nil
}

func (s *ServiceImpl) validate(ctx context.Context, p *types.EstablishmentParams) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Type = types.EstablishmentType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	if p.Name == "" {
		return fmt.Errorf("%w: establishment name is required", types.ErrInvalidInput)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: type must be one of hotel, bar, restaurant", types.ErrInvalidInput)
	}
	if p.IslandID != nil {
		_, err := s.islands.GetByID(ctx, *p.IslandID)
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("%w: island %d does not exist", types.ErrInvalidInput, *p.IslandID)
		}
		if err != nil {
			return fmt.Errorf("error fetching island: %w", err)
		}
	}
	return nil
}

func (s *ServiceImpl) Create(ctx context.Context, caller types.Principal, params types.EstablishmentParams) (*types.Establishment, error) {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "Create")
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"), slog.Int64("ownerID", caller.UserID))

	if caller.Role != types.RoleOwner && !caller.IsAdmin() {
		return nil, fmt.Errorf("only owners can list establishments: %w", types.ErrForbidden)
	}
	if err := s.validate(ctx, &params); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, caller.UserID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create establishment", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create establishment")
		return nil, fmt.Errorf("error creating establishment: %w", err)
	}
	l.InfoContext(ctx, "Establishment submitted for approval", slog.Int64("establishmentID", id))
	return s.repo.GetByID(ctx, id)
}

func (s *ServiceImpl) loadManaged(ctx context.Context, caller types.Principal, id int64) (*types.Establishment, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching establishment: %w", err)
	}
	if !caller.CanManage(e.OwnerID) {
		return nil, fmt.Errorf("establishment %d belongs to another owner: %w", id, types.ErrForbidden)
	}
	return e, nil
}

// Update sends the listing back to moderation.
func (s *ServiceImpl) Update(ctx context.Context, caller types.Principal, id int64, params types.EstablishmentParams) (*types.Establishment, error) {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "Update", trace.WithAttributes(
		attribute.Int64("establishment.id", id),
	))
	defer span.End()

	if _, err := s.loadManaged(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &params); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update establishment", slog.Int64("establishmentID", id), slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error updating establishment: %w", err)
	}
	s.invalidateCatalog(ctx)
	return s.repo.GetByID(ctx, id)
}

func (s *ServiceImpl) Delete(ctx context.Context, caller types.Principal, id int64) error {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.Int64("establishment.id", id),
	))
	defer span.End()

	if _, err := s.loadManaged(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete establishment", slog.Int64("establishmentID", id), slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("error deleting establishment: %w", err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *ServiceImpl) ListPending(ctx context.Context, caller types.Principal) ([]types.Establishment, error) {
	if !caller.IsAdmin() {
		return nil, types.ErrForbidden
	}
	list, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing pending establishments: %w", err)
	}
	if list == nil {
		list = []types.Establishment{}
	}
	return list, nil
}

func (s *ServiceImpl) Approve(ctx context.Context, caller types.Principal, id int64) error {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "Approve", trace.WithAttributes(
		attribute.Int64("establishment.id", id),
	))
	defer span.End()

	if !caller.IsAdmin() {
		return types.ErrForbidden
	}
	if err := s.repo.Approve(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("error approving establishment: %w", err)
	}
	s.logger.InfoContext(ctx, "Establishment approved", slog.Int64("establishmentID", id), slog.Int64("adminID", caller.UserID))
	s.invalidateCatalog(ctx)
	return nil
}

func (s *ServiceImpl) Reject(ctx context.Context, caller types.Principal, id int64, reason string) error {
	ctx, span := otel.Tracer("EstablishmentService").Start(ctx, "Reject", trace.WithAttributes(
		attribute.Int64("establishment.id", id),
	))
	defer span.End()

	if !caller.IsAdmin() {
		return types.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", types.ErrInvalidInput)
	}
	if err := s.repo.Reject(ctx, id, reason); err != nil {
		span.RecordError(err)
		return fmt.Errorf("error rejecting establishment: %w", err)
	}
	s.logger.InfoContext(ctx, "Establishment rejected", slog.Int64("establishmentID", id), slog.Int64("adminID", caller.UserID))
	s.invalidateCatalog(ctx)
	return nil
}

func (s *ServiceImpl) invalidateCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate catalog cache", slog.Any("error", err))
	}
}
