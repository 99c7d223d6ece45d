package models

// Heat is one group of competitors running concurrently on distinct stands.
// Competitors preserves placement order; StandAssignments maps competitor id
// to stand number. Version backs optimistic concurrency on scoring writes.
type Heat struct {
	ID               int         `json:"id" db:"id"`
	EventID          int         `json:"event_id" db:"event_id"`
	HeatNumber       int         `json:"heat_number" db:"heat_number"`
	RunNumber        int         `json:"run_number" db:"run_number"`
	Competitors      []int       `json:"competitors" db:"competitors"`
	StandAssignments map[int]int `json:"stand_assignments" db:"stand_assignments"`
	Status           string      `json:"status" db:"status"`
	Version          int         `json:"version" db:"version"`
	FlightID         *int        `json:"flight_id,omitempty" db:"flight_id"`
}

// HeatAssignment is the denormalized per-competitor mirror of a heat's
// membership. It must stay reconcilable with Heat.Competitors.
type HeatAssignment struct {
	ID             int            `json:"id" db:"id"`
	HeatID         int            `json:"heat_id" db:"heat_id"`
	CompetitorID   int            `json:"competitor_id" db:"competitor_id"`
	CompetitorType CompetitorType `json:"competitor_type" db:"competitor_type"`
	StandNumber    *int           `json:"stand_number,omitempty" db:"stand_number"`
}

// Flight is an ordered group of pro run-1 heats across multiple events.
type Flight struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	FlightNumber int     `json:"flight_number" db:"flight_number"`
	Name         *string `json:"name,omitempty" db:"name"`
	Status       string  `json:"status" db:"status"`
	Notes        *string `json:"notes,omitempty" db:"notes"`
}
