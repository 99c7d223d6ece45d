package models

// Gender of a competitor.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Competitor status values.
const (
	CompetitorActive    = "active"
	CompetitorScratched = "scratched"
)

// CompetitorType distinguishes the two competitor tables in shared rows
// (event results, heat assignments).
type CompetitorType string

const (
	CompetitorCollege CompetitorType = "college"
	CompetitorPro     CompetitorType = "pro"
)

// CollegeCompetitor represents one college athlete on a team.
//
// EventsEntered holds event names or ids as entered at registration.
// Partners maps event key to partner name. GearSharing maps an event id,
// normalized event name, or gear category ("crosscut", "chainsaw") to the
// partner or group token the gear is shared with.
type CollegeCompetitor struct {
	ID               int               `json:"id" db:"id"`
	TournamentID     int               `json:"tournament_id" db:"tournament_id"`
	TeamID           int               `json:"team_id" db:"team_id"`
	Name             string            `json:"name" db:"name"`
	Gender           Gender            `json:"gender" db:"gender"`
	IndividualPoints int               `json:"individual_points" db:"individual_points"`
	EventsEntered    []string          `json:"events_entered" db:"events_entered"`
	Partners         map[string]string `json:"partners" db:"partners"`
	GearSharing      map[string]string `json:"gear_sharing" db:"gear_sharing"`
	LotteryOptIn     bool              `json:"lottery_opt_in" db:"lottery_opt_in"`
	Status           string            `json:"status" db:"status"`
}

// ProCompetitor represents one professional athlete.
type ProCompetitor struct {
	ID                      int                `json:"id" db:"id"`
	TournamentID            int                `json:"tournament_id" db:"tournament_id"`
	Name                    string             `json:"name" db:"name"`
	Gender                  Gender             `json:"gender" db:"gender"`
	Address                 *string            `json:"address,omitempty" db:"address"`
	Phone                   *string            `json:"phone,omitempty" db:"phone"`
	Email                   *string            `json:"email,omitempty" db:"email"`
	ShirtSize               *string            `json:"shirt_size,omitempty" db:"shirt_size"`
	IsALAMember             bool               `json:"is_ala_member" db:"is_ala_member"`
	LotteryOptIn            bool               `json:"lottery_opt_in" db:"lottery_opt_in"`
	IsLeftHandedSpringboard bool               `json:"is_left_handed_springboard" db:"is_left_handed_springboard"`
	EventsEntered           []string           `json:"events_entered" db:"events_entered"`
	EntryFees               map[string]float64 `json:"entry_fees" db:"entry_fees"`
	FeesPaid                map[string]bool    `json:"fees_paid" db:"fees_paid"`
	Partners                map[string]string  `json:"partners" db:"partners"`
	GearSharing             map[string]string  `json:"gear_sharing" db:"gear_sharing"`
	TotalEarnings           float64            `json:"total_earnings" db:"total_earnings"`
	PayoutSettled           bool               `json:"payout_settled" db:"payout_settled"`
	Status                  string             `json:"status" db:"status"`
}

// FeesOwed returns the total of all entry fees.
func (p *ProCompetitor) FeesOwed() float64 {
	var total float64
	for _, amount := range p.EntryFees {
		total += amount
	}
	return total
}

// FeesBalance returns the unpaid remainder of the entry fees.
func (p *ProCompetitor) FeesBalance() float64 {
	var paid float64
	for key, ok := range p.FeesPaid {
		if ok {
			paid += p.EntryFees[key]
		}
	}
	return p.FeesOwed() - paid
}
