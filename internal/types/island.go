package types

import (
	"math"
	"strconv"
	"strings"
)

// Island matches the islands table. Coordinates are stored as a single
// "lat,lon" string; latitude and longitude are derived from it.
type Island struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Details     string `json:"details"`
	History     string `json:"history"`
	Coordinates string `json:"coordinates"`
}

// LatLon parses Coordinates. ok is false when the value is missing,
// malformed, non-finite or out of range; callers must treat that as an
// unknown location, not 0,0.
func (i Island) LatLon() (lat, lon float64, ok bool) {
	parts := strings.Split(i.Coordinates, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if !validDegrees(lat, 90) || !validDegrees(lon, 180) {
		return 0, 0, false
	}
	return lat, lon, true
}

func validDegrees(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= limit
}

// Latitude returns nil when the coordinates cannot be parsed.
func (i Island) Latitude() *float64 {
	lat, _, ok := i.LatLon()
	if !ok {
		return nil
	}
	return &lat
}

// Longitude returns nil when the coordinates cannot be parsed.
func (i Island) Longitude() *float64 {
	_, lon, ok := i.LatLon()
	if !ok {
		return nil
	}
	return &lon
}

// IslandView is the API representation of an island with its derived location.
type IslandView struct {
	Island
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func NewIslandView(i Island) IslandView {
	return IslandView{Island: i, Latitude: i.Latitude(), Longitude: i.Longitude()}
}

// IslandDetail is an island together with its public establishments and activities.
type IslandDetail struct {
	IslandView
	Establishments []Establishment `json:"establishments"`
	Activities     []Activity      `json:"activities"`
}

// IslandParams is the create/update payload for islands.
type IslandParams struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Details     string `json:"details"`
	History     string `json:"history"`
	Coordinates string `json:"coordinates"`
}
