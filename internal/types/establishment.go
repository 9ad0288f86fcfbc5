package types

import "time"

type EstablishmentType string

const (
	EstablishmentHotel      EstablishmentType = "hotel"
	EstablishmentBar        EstablishmentType = "bar"
	EstablishmentRestaurant EstablishmentType = "restaurant"
)

func (t EstablishmentType) Valid() bool {
	switch t {
	case EstablishmentHotel, EstablishmentBar, EstablishmentRestaurant:
		return true
	}
	return false
}

type Establishment struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Type           EstablishmentType `json:"type"`
	Description    string            `json:"description"`
	Image          string            `json:"image"`
	IslandID       *int64            `json:"island_id"`
	OwnerID        int64             `json:"owner_id"`
	IsApproved     bool              `json:"is_approved"`
	RejectedReason *string           `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Category is the label shown to travellers; it is always the establishment type.
func (e Establishment) Category() string {
	return string(e.Type)
}

// ModerationState is derived from IsApproved and RejectedReason.
func (e Establishment) ModerationState() string {
	switch {
	case e.IsApproved:
		return "approved"
	case e.RejectedReason != nil && *e.RejectedReason != "":
		return "rejected"
	default:
		return "pending"
	}
}

// EstablishmentParams is the owner-submitted create/update payload.
type EstablishmentParams struct {
	Name        string            `json:"name"`
	Type        EstablishmentType `json:"type"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	IslandID    *int64            `json:"island_id"`
}

type RejectEstablishmentRequest struct {
	Reason string `json:"reason"`
}
