package types

// AskRequest is the chat payload for POST /ask.
type AskRequest struct {
	Message string `json:"message"`
}

// AskResponse always carries text; oracle failures are reported inside it.
type AskResponse struct {
	Response string `json:"response"`
}

// PlanTripRequest carries the validated itinerary form.
type PlanTripRequest struct {
	DestinationIDs  []int64
	BudgetPerPerson float64
	Days            int
	People          int
}

// DayPlan is one relabelled section of a generated itinerary.
type DayPlan struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
	Body  string `json:"body"`
}

type PlanTripResponse struct {
	Destination string    `json:"destination"`
	Itinerary   string    `json:"itinerary"`
	DayPlans    []DayPlan `json:"day_plans"`
	Budget      float64   `json:"budget"`
	Days        int       `json:"days"`
	People      int       `json:"people"`
	Error       string    `json:"error,omitempty"`
}

// CatalogEntry is an entity name that can be hyperlinked in generated text.
type CatalogEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"` // "island" or "place"
}
