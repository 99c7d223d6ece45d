package models

// Team represents one college team entry, e.g. "UM-A".
// Two or more teams may share a school_name.
type Team struct {
	ID                 int    `json:"id" db:"id"`
	TournamentID       int    `json:"tournament_id" db:"tournament_id"`
	TeamCode           string `json:"team_code" db:"team_code"`
	SchoolName         string `json:"school_name" db:"school_name"`
	SchoolAbbreviation string `json:"school_abbreviation" db:"school_abbreviation"`
	TotalPoints        int    `json:"total_points" db:"total_points"`
	Status             string `json:"status" db:"status"`

	// Loaded on demand, not mapped directly.
	Members []CollegeCompetitor `json:"members,omitempty" db:"-"`
}

// ActiveCounts returns total, male and female active member counts.
func (t *Team) ActiveCounts() (total, male, female int) {
	for _, m := range t.Members {
		if m.Status != CompetitorActive {
			continue
		}
		total++
		switch m.Gender {
		case GenderMale:
			male++
		case GenderFemale:
			female++
		}
	}
	return total, male, female
}
