package types

type CountByKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AdminReport aggregates the admin dashboard figures.
type AdminReport struct {
	Year                  int                `json:"year"`
	UsersByRole           []CountByKey       `json:"users_by_role"`
	EstablishmentsByState []CountByKey       `json:"establishments_by_state"`
	BookingsByStatus      []CountByKey       `json:"bookings_by_status"`
	TopIslands            []IslandPopularity `json:"top_islands"`
}
