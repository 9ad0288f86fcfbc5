package types

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingApproved  BookingStatus = "approved"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingApproved, BookingConfirmed, BookingCancelled},
	BookingApproved:  {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingApproved:
		return true
	}
	return false
}

// CanTransitionTo reports whether an owner or admin may move a booking from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	EstablishmentID int64         `json:"establishment_id"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	Guests          int           `json:"guests"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Nights is derived from the check-in and check-out dates.
func (b Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

type CreateBookingRequest struct {
	EstablishmentID int64  `json:"establishment_id"`
	CheckIn         string `json:"check_in"`  // YYYY-MM-DD
	CheckOut        string `json:"check_out"` // YYYY-MM-DD
	Guests          int    `json:"guests"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status"`
}
