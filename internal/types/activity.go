package types

type Activity struct {
	ID          int64  `json:"id"`
	IslandID    int64  `json:"island_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ActivityParams struct {
	IslandID    int64  `json:"island_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
