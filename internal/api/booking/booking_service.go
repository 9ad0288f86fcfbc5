package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/tripwise/app/observability/metrics"
	"github.com/FACorreiaa/tripwise/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateBooking(ctx context.Context, caller types.Principal, req types.CreateBookingRequest) (*types.Booking, error)
	ListMine(ctx context.Context, caller types.Principal) ([]types.Booking, error)
	// ListManaged returns bookings on the caller's establishments, or every
	// booking for admins.
	ListManaged(ctx context.Context, caller types.Principal) ([]types.Booking, error)
	UpdateStatus(ctx context.Context, caller types.Principal, id int64, status types.BookingStatus) (*types.Booking, error)
	DeleteBooking(ctx context.Context, caller types.Principal, id int64) error
}

type EstablishmentLookup interface {
	GetByID(ctx context.Context, id int64) (*types.Establishment, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	repo           Repository
	establishments EstablishmentLookup
	now            func() time.Time
}

func NewBookingService(repo Repository, establishments EstablishmentLookup, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		repo:           repo,
		establishments: establishments,
		now:            time.Now,
	}
}

const dateLayout = "2006-01-02"

func (s *ServiceImpl) CreateBooking(ctx context.Context, caller types.Principal, req types.CreateBookingRequest) (*types.Booking, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "CreateBooking", trace.WithAttributes(
		attribute.Int64("establishment.id", req.EstablishmentID),
		attribute.Int64("user.id", caller.UserID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateBooking"), slog.Int64("userID", caller.UserID))

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check_in must be YYYY-MM-DD", types.ErrInvalidInput)
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: check_out must be YYYY-MM-DD", types.ErrInvalidInput)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: check_out must be after check_in", types.ErrInvalidInput)
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return nil, fmt.Errorf("%w: check_in cannot be in the past", types.ErrInvalidInput)
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", types.ErrInvalidInput)
	}

	e, err := s.establishments.GetByID(ctx, req.EstablishmentID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching establishment: %w", err)
	}
	if !e.IsApproved {
		return nil, fmt.Errorf("establishment %d is not public: %w", e.ID, types.ErrNotFound)
	}

	b, err := s.repo.Create(ctx, caller.UserID, e.ID, checkIn, checkOut, req.Guests)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create booking", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create booking")
		return nil, fmt.Errorf("error creating booking: %w", err)
	}

	metrics.Get().BookingsCreatedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Booking created", slog.Int64("bookingID", b.ID), slog.Int("nights", b.Nights()))
	return b, nil
}

func (s *ServiceImpl) ListMine(ctx context.Context, caller types.Principal) ([]types.Booking, error) {
	list, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	if list == nil {
		list = []types.Booking{}
	}
	return list, nil
}

func (s *ServiceImpl) ListManaged(ctx context.Context, caller types.Principal) ([]types.Booking, error) {
	var (
		list []types.Booking
		err  error
	)
	switch caller.Role {
	case types.RoleAdmin:
		list, err = s.repo.ListAll(ctx)
	case types.RoleOwner:
		list, err = s.repo.ListForOwner(ctx, caller.UserID)
	default:
		return nil, types.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	if list == nil {
		list = []types.Booking{}
	}
	return list, nil
}

// UpdateStatus lets the establishment owner or an admin move a booking along
// the transition table.
func (s *ServiceImpl) UpdateStatus(ctx context.Context, caller types.Principal, id int64, status types.BookingStatus) (*types.Booking, error) {
	ctx, span := otel.Tracer("BookingService").Start(ctx, "UpdateStatus", trace.WithAttributes(
		attribute.Int64("booking.id", id),
		attribute.String("booking.status", string(status)),
	))
	defer span.End()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", types.ErrInvalidInput, status)
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	e, err := s.establishments.GetByID(ctx, b.EstablishmentID)
	if err != nil {
		return nil, fmt.Errorf("error fetching establishment: %w", err)
	}
	if !caller.CanManage(e.OwnerID) {
		return nil, fmt.Errorf("booking %d is on another owner's establishment: %w", id, types.ErrForbidden)
	}
	if !b.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, b.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, b.Status, status); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error updating booking status: %w", err)
	}
	s.logger.InfoContext(ctx, "Booking status changed", slog.Int64("bookingID", id),
		slog.String("from", string(b.Status)), slog.String("to", string(status)))
	b.Status = status
	b.UpdatedAt = s.now()
	return b, nil
}

// DeleteBooking lets a traveller withdraw a pending booking. Admins may delete any booking.
func (s *ServiceImpl) DeleteBooking(ctx context.Context, caller types.Principal, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error fetching booking: %w", err)
	}
	if !caller.IsAdmin() {
		if b.UserID != caller.UserID {
			return fmt.Errorf("booking %d belongs to another user: %w", id, types.ErrForbidden)
		}
		if b.Status != types.BookingPending {
			return fmt.Errorf("%w: only pending bookings can be deleted", types.ErrInvalidTransition)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting booking: %w", err)
	}
	s.logger.InfoContext(ctx, "Booking deleted", slog.Int64("bookingID", id), slog.Int64("by", caller.UserID))
	return nil
}
