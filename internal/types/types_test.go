package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIslandLatLon(t *testing.T) {
	tests := []struct {
		coords   string
		ok       bool
		lat, lon float64
	}{
		{"11.9674,121.9248", true, 11.9674, 121.9248},
		{" 9.8482 , 126.0458 ", true, 9.8482, 126.0458},
		{"-0.5,0", true, -0.5, 0},
		{"", false, 0, 0},
		{"11.9674", false, 0, 0},
		{"1,2,3", false, 0, 0},
		{"north,east", false, 0, 0},
		{"NaN,NaN", false, 0, 0},
		{"Inf,120", false, 0, 0},
		{"10,-Inf", false, 0, 0},
		{"91,120", false, 0, 0},
		{"10,180.5", false, 0, 0},
		{"-90,-180", true, -90, -180},
	}
	for _, tt := range tests {
		t.Run(tt.coords, func(t *testing.T) {
			i := Island{Coordinates: tt.coords}
			lat, lon, ok := i.LatLon()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lat, lat)
			assert.Equal(t, tt.lon, lon)

			view := NewIslandView(i)
			if tt.ok {
				assert.Equal(t, tt.lat, *view.Latitude)
				assert.Equal(t, tt.lon, *view.Longitude)
			} else {
				assert.Nil(t, view.Latitude)
				assert.Nil(t, view.Longitude)
			}
		})
	}
}

func TestBookingTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		BookingPending:   {BookingApproved, BookingConfirmed, BookingCancelled},
		BookingApproved:  {BookingConfirmed, BookingCancelled},
		BookingConfirmed: {BookingCancelled},
		BookingCancelled: nil,
	}
	all := []BookingStatus{BookingPending, BookingApproved, BookingConfirmed, BookingCancelled}
	for from, targets := range allowed {
		for _, to := range all {
			assert.Equal(t, contains(targets, to), from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, BookingStatus("archived").Valid())
	assert.False(t, BookingStatus("archived").CanTransitionTo(BookingCancelled))
}

func contains(list []BookingStatus, s BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestBookingNights(t *testing.T) {
	b := Booking{
		CheckIn:  time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 4, b.Nights())
}

func TestModerationState(t *testing.T) {
	reason := "Duplicate listing"
	blank := ""
	assert.Equal(t, "approved", Establishment{IsApproved: true, RejectedReason: &reason}.ModerationState())
	assert.Equal(t, "rejected", Establishment{RejectedReason: &reason}.ModerationState())
	assert.Equal(t, "pending", Establishment{RejectedReason: &blank}.ModerationState())
	assert.Equal(t, "pending", Establishment{}.ModerationState())
	assert.Equal(t, "bar", Establishment{Type: EstablishmentBar}.Category())
}

func TestPrincipal(t *testing.T) {
	admin := Principal{UserID: 1, Role: RoleAdmin}
	owner := Principal{UserID: 7, Role: RoleOwner}

	assert.True(t, admin.CanManage(7))
	assert.True(t, owner.CanManage(7))
	assert.False(t, owner.CanManage(8))
	assert.False(t, owner.IsAdmin())
	assert.False(t, Role("root").Valid())
	assert.False(t, EstablishmentType("spa").Valid())
}
