package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/tripwise/internal/types"
)

const topIslandsInReport = 10

type UserCounter interface {
	CountByRole(ctx context.Context) ([]types.CountByKey, error)
}

type EstablishmentCounter interface {
	CountByState(ctx context.Context) ([]types.CountByKey, error)
}

type BookingCounter interface {
	CountByStatus(ctx context.Context) ([]types.CountByKey, error)
}

type PopularityRanker interface {
	TopIslands(ctx context.Context, year, limit int) ([]types.IslandPopularity, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Summary aggregates the dashboard figures. year <= 0 means the current year.
	Summary(ctx context.Context, year int) (*types.AdminReport, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	users          UserCounter
	establishments EstablishmentCounter
	bookings       BookingCounter
	popularity     PopularityRanker
	now            func() time.Time
}

func NewReportService(users UserCounter, establishments EstablishmentCounter, bookings BookingCounter,
	popularity PopularityRanker, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		users:          users,
		establishments: establishments,
		bookings:       bookings,
		popularity:     popularity,
		now:            time.Now,
	}
}

func (s *ServiceImpl) Summary(ctx context.Context, year int) (*types.AdminReport, error) {
	if year <= 0 {
		year = s.now().Year()
	}
	ctx, span := otel.Tracer("ReportService").Start(ctx, "Summary", trace.WithAttributes(
		attribute.Int("year", year),
	))
	defer span.End()

	report := &types.AdminReport{Year: year}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.UsersByRole, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.EstablishmentsByState, err = s.establishments.CountByState(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.BookingsByStatus, err = s.bookings.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		report.TopIslands, err = s.popularity.TopIslands(gctx, year, topIslandsInReport)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to build report", slog.Int("year", year), slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error building report: %w", err)
	}

	if report.UsersByRole == nil {
		report.UsersByRole = []types.CountByKey{}
	}
	if report.EstablishmentsByState == nil {
		report.EstablishmentsByState = []types.CountByKey{}
	}
	if report.BookingsByStatus == nil {
		report.BookingsByStatus = []types.CountByKey{}
	}
	if report.TopIslands == nil {
		report.TopIslands = []types.IslandPopularity{}
	}
	return report, nil
}
