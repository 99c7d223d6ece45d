package models

import "time"

// TournamentStatus represents tournament lifecycle states, matching the DB enum values.
type TournamentStatus string

const (
	TournamentSetup         TournamentStatus = "setup"
	TournamentCollegeActive TournamentStatus = "college_active"
	TournamentProActive     TournamentStatus = "pro_active"
	TournamentCompleted     TournamentStatus = "completed"
)

// Tournament is the root entity owning teams, competitors and events.
type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Year              int              `json:"year" db:"year"`
	CollegeDate       *time.Time       `json:"college_date,omitempty" db:"college_date"`
	ProDate           *time.Time       `json:"pro_date,omitempty" db:"pro_date"`
	FridayFeatureDate *time.Time       `json:"friday_feature_date,omitempty" db:"friday_feature_date"`
	Status            TournamentStatus `json:"status" db:"status"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}
