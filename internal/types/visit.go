package types

import "time"

// Visit is a visitor count for one island over the month starting at VisitMonth.
type Visit struct {
	ID          int64     `json:"id"`
	IslandID    int64     `json:"island_id"`
	VisitMonth  time.Time `json:"visit_month"`
	TotalVisits int64     `json:"total_visits"`
}

func (v Visit) Year() int {
	return v.VisitMonth.Year()
}

func (v Visit) Month() time.Month {
	return v.VisitMonth.Month()
}

func (v Visit) Week() int {
	_, week := v.VisitMonth.ISOWeek()
	return week
}

type RecordVisitRequest struct {
	IslandID    int64  `json:"island_id"`
	VisitMonth  string `json:"visit_month"` // YYYY-MM or YYYY-MM-DD
	TotalVisits int64  `json:"total_visits"`
}

// IslandPopularity is one row of the popularity ranking.
type IslandPopularity struct {
	IslandID     int64  `json:"island_id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	AnnualVisits int64  `json:"annual_visits"`
}
