package models

// EventType distinguishes Friday college events from Saturday pro events.
type EventType string

const (
	EventCollege EventType = "college"
	EventPro     EventType = "pro"
)

// Scoring types.
const (
	ScoringTime     = "time"
	ScoringScore    = "score"
	ScoringDistance = "distance"
	ScoringHits     = "hits"
	ScoringBracket  = "bracket"
)

// Scoring orders.
const (
	LowestWins  = "lowest_wins"
	HighestWins = "highest_wins"
)

// Event / heat / result status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusScratched  = "scratched"
	StatusDNF        = "dnf"
)

// Event represents one competition event, e.g. Men's Underhand Speed.
//
// Payouts stores a position→amount map for regular pro events. Bracket and
// relay events persist their state machine in the same column; see the
// brackets package for the typed forms.
type Event struct {
	ID                       int       `json:"id" db:"id"`
	TournamentID             int       `json:"tournament_id" db:"tournament_id"`
	Name                     string    `json:"name" db:"name"`
	EventType                EventType `json:"event_type" db:"event_type"`
	Gender                   *Gender   `json:"gender,omitempty" db:"gender"`
	ScoringType              string    `json:"scoring_type" db:"scoring_type"`
	ScoringOrder             string    `json:"scoring_order" db:"scoring_order"`
	IsOpen                   bool      `json:"is_open" db:"is_open"`
	IsPartnered              bool      `json:"is_partnered" db:"is_partnered"`
	PartnerGenderRequirement *string   `json:"partner_gender_requirement,omitempty" db:"partner_gender_requirement"`
	RequiresDualRuns         bool      `json:"requires_dual_runs" db:"requires_dual_runs"`
	StandType                *string   `json:"stand_type,omitempty" db:"stand_type"`
	MaxStands                *int      `json:"max_stands,omitempty" db:"max_stands"`
	HasPrelims               bool      `json:"has_prelims" db:"has_prelims"`
	Payouts                  string    `json:"-" db:"payouts"`
	Status                   string    `json:"status" db:"status"`
}

// DisplayName returns the event name with a gender prefix when gendered.
func (e *Event) DisplayName() string {
	if e.Gender == nil {
		return e.Name
	}
	switch *e.Gender {
	case GenderMale:
		return "Men's " + e.Name
	case GenderFemale:
		return "Women's " + e.Name
	}
	return e.Name
}

// EventResult represents one competitor's result in an event.
// Version backs optimistic concurrency on result updates.
type EventResult struct {
	ID             int            `json:"id" db:"id"`
	EventID        int            `json:"event_id" db:"event_id"`
	CompetitorID   int            `json:"competitor_id" db:"competitor_id"`
	CompetitorType CompetitorType `json:"competitor_type" db:"competitor_type"`
	CompetitorName string         `json:"competitor_name" db:"competitor_name"`
	PartnerName    *string        `json:"partner_name,omitempty" db:"partner_name"`
	ResultValue    *float64       `json:"result_value,omitempty" db:"result_value"`
	ResultUnit     *string        `json:"result_unit,omitempty" db:"result_unit"`
	Run1Value      *float64       `json:"run1_value,omitempty" db:"run1_value"`
	Run2Value      *float64       `json:"run2_value,omitempty" db:"run2_value"`
	BestRun        *float64       `json:"best_run,omitempty" db:"best_run"`
	FinalPosition  *int           `json:"final_position,omitempty" db:"final_position"`
	PointsAwarded  int            `json:"points_awarded" db:"points_awarded"`
	PayoutAmount   float64        `json:"payout_amount" db:"payout_amount"`
	IsFlagged      bool           `json:"is_flagged" db:"is_flagged"`
	Status         string         `json:"status" db:"status"`
	Version        int            `json:"version" db:"version"`
}

// ComputeBestRun fills BestRun and ResultValue for dual-run events.
// Lower is better for time events, higher for everything else.
func (r *EventResult) ComputeBestRun(scoringType string) {
	pick := func(a, b float64) float64 {
		if scoringType == ScoringTime {
			if a < b {
				return a
			}
			return b
		}
		if a > b {
			return a
		}
		return b
	}

	switch {
	case r.Run1Value != nil && r.Run2Value != nil:
		best := pick(*r.Run1Value, *r.Run2Value)
		r.BestRun = &best
		r.ResultValue = &best
	case r.Run1Value != nil:
		r.BestRun = r.Run1Value
		r.ResultValue = r.Run1Value
	case r.Run2Value != nil:
		r.BestRun = r.Run2Value
		r.ResultValue = r.Run2Value
	}
}
