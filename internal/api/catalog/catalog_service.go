package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/tripwise/app/observability/metrics"
	"github.com/FACorreiaa/tripwise/internal/types"
)

const (
	KindIsland = "island"
	KindPlace  = "place"
)

type IslandSource interface {
	List(ctx context.Context) ([]types.Island, error)
}

type EstablishmentSource interface {
	ListApproved(ctx context.Context) ([]types.Establishment, error)
}

// Service serves the names of every island and approved establishment.
type Service struct {
	logger         *slog.Logger
	cache          Cache
	islands        IslandSource
	establishments EstablishmentSource
	// generation is bumped on every invalidation so loads that started
	// earlier do not repopulate the cache.
	generation atomic.Uint64
}

func NewCatalogService(cache Cache, islands IslandSource, establishments EstablishmentSource, logger *slog.Logger) *Service {
	return &Service{
		logger:         logger,
		cache:          cache,
		islands:        islands,
		establishments: establishments,
	}
}

// Entries returns islands first, then approved establishments. A failing
// cache is logged and bypassed.
func (s *Service) Entries(ctx context.Context) ([]types.CatalogEntry, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Entries")
	defer span.End()

	if entries, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.WarnContext(ctx, "Catalog cache read failed", slog.Any("error", err))
	} else if ok {
		metrics.Get().CatalogCacheHitsTotal.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return entries, nil
	}
	metrics.Get().CatalogCacheMissesTotal.Add(ctx, 1)
	span.SetAttributes(attribute.Bool("cache.hit", false))
	gen := s.generation.Load()

	var (
		islands        []types.Island
		establishments []types.Establishment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		islands, err = s.islands.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		establishments, err = s.establishments.ListApproved(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error loading catalog: %w", err)
	}

	entries := make([]types.CatalogEntry, 0, len(islands)+len(establishments))
	for _, i := range islands {
		entries = append(entries, types.CatalogEntry{ID: i.ID, Name: i.Name, Kind: KindIsland})
	}
	for _, e := range establishments {
		entries = append(entries, types.CatalogEntry{ID: e.ID, Name: e.Name, Kind: KindPlace})
	}

	if s.generation.Load() != gen {
		return entries, nil
	}
	if err := s.cache.Set(ctx, entries); err != nil {
		s.logger.WarnContext(ctx, "Catalog cache write failed", slog.Any("error", err))
		return entries, nil
	}
	if s.generation.Load() != gen {
		if err := s.cache.Delete(ctx); err != nil {
			s.logger.WarnContext(ctx, "Catalog cache cleanup failed", slog.Any("error", err))
		}
	}
	return entries, nil
}

func (s *Service) Invalidate(ctx context.Context) error {
	s.generation.Add(1)
	if err := s.cache.Delete(ctx); err != nil {
		return fmt.Errorf("error invalidating catalog: %w", err)
	}
	return nil
}
