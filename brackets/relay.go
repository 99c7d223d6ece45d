package brackets

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// Relay status values.
const (
	RelayNotDrawn   = "not_drawn"
	RelayDrawn      = "drawn"
	RelayInProgress = "in_progress"
	RelayCompleted  = "completed"
)

// RelaySubEvents are the four legs every relay team runs, in running order.
var RelaySubEvents = []string{
	"partnered_sawing",
	"standing_butcher_block",
	"underhand_butcher_block",
	"team_axe_throw",
}

var (
	ErrRelayNotDrawn        = errors.New("relay teams have not been drawn")
	ErrRelayAlreadyDrawn    = errors.New("relay teams are already drawn")
	ErrRelayOverCapacity    = errors.New("not enough opted-in competitors for that many teams")
	ErrRelayTeamNotFound    = errors.New("relay team not found")
	ErrRelayUnknownSubEvent = errors.New("unknown relay sub-event")
	ErrRelayMemberNotFound  = errors.New("relay team member not found")
	ErrRelayBucketMismatch  = errors.New("replacement must match the outgoing member's bucket")
	ErrRelayMemberTaken     = errors.New("replacement is already on a relay team")
)

// RelayMember is one competitor drawn onto a relay team.
type RelayMember struct {
	CompetitorID   int    `json:"competitor_id"`
	CompetitorType string `json:"competitor_type"`
	Name           string `json:"name"`
	Gender         string `json:"gender"`
}

// RelayTeam is one eight-person Pro-Am team: two competitors from each of the
// four lottery buckets.
type RelayTeam struct {
	Number    int                `json:"number"`
	Members   []RelayMember      `json:"members"`
	Times     map[string]float64 `json:"times"`
	TotalTime *float64           `json:"total_time,omitempty"`
}

// RelayPools are the four lottery buckets of opted-in, active competitors.
type RelayPools struct {
	ProMen       []RelayMember `json:"pro_men"`
	ProWomen     []RelayMember `json:"pro_women"`
	CollegeMen   []RelayMember `json:"college_men"`
	CollegeWomen []RelayMember `json:"college_women"`
}

// Capacity is the most teams the pools can field: each team draws two from
// every bucket.
func (p RelayPools) Capacity() int {
	capacity := len(p.ProMen) / 2
	for _, bucket := range [][]RelayMember{p.ProWomen, p.CollegeMen, p.CollegeWomen} {
		if c := len(bucket) / 2; c < capacity {
			capacity = c
		}
	}
	return capacity
}

// RelayState is the persisted Pro-Am relay: the drawn teams and their times
// across the four sub-events.
type RelayState struct {
	Status string       `json:"status"`
	Teams  []*RelayTeam `json:"teams"`
}

func NewRelay() *RelayState {
	return &RelayState{Status: RelayNotDrawn}
}

// Draw runs the lottery: shuffles every bucket, deals two members per bucket
// to each team, then shuffles the team running order.
func (s *RelayState) Draw(pools RelayPools, numTeams int, rng *rand.Rand) error {
	if s.Status != RelayNotDrawn {
		return ErrRelayAlreadyDrawn
	}
	if numTeams < 1 || numTeams > pools.Capacity() {
		return ErrRelayOverCapacity
	}

	buckets := [][]RelayMember{pools.ProMen, pools.ProWomen, pools.CollegeMen, pools.CollegeWomen}
	for i := range buckets {
		shuffled := make([]RelayMember, len(buckets[i]))
		copy(shuffled, buckets[i])
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		buckets[i] = shuffled
	}

	teams := make([]*RelayTeam, numTeams)
	for t := 0; t < numTeams; t++ {
		team := &RelayTeam{Times: make(map[string]float64)}
		for _, bucket := range buckets {
			team.Members = append(team.Members, bucket[2*t], bucket[2*t+1])
		}
		teams[t] = team
	}

	rng.Shuffle(len(teams), func(a, b int) {
		teams[a], teams[b] = teams[b], teams[a]
	})
	for i, team := range teams {
		team.Number = i + 1
	}

	s.Teams = teams
	s.Status = RelayDrawn
	return nil
}

func (s *RelayState) team(number int) (*RelayTeam, error) {
	for _, t := range s.Teams {
		if t.Number == number {
			return t, nil
		}
	}
	return nil, ErrRelayTeamNotFound
}

// RecordTime stores one team's time for a sub-event. When all four legs are
// in, the team's total is computed; when every team is done the relay
// completes.
func (s *RelayState) RecordTime(teamNumber int, subEvent string, seconds float64) error {
	if s.Status == RelayNotDrawn {
		return ErrRelayNotDrawn
	}
	if s.Status == RelayCompleted {
		return ErrBracketCompleted
	}
	if !validSubEvent(subEvent) {
		return fmt.Errorf("%w: %s", ErrRelayUnknownSubEvent, subEvent)
	}

	team, err := s.team(teamNumber)
	if err != nil {
		return err
	}
	team.Times[subEvent] = seconds
	s.Status = RelayInProgress

	if len(team.Times) == len(RelaySubEvents) {
		total := 0.0
		for _, t := range team.Times {
			total += t
		}
		team.TotalTime = &total
	}

	for _, t := range s.Teams {
		if t.TotalTime == nil {
			return nil
		}
	}
	s.Status = RelayCompleted
	return nil
}

// ReplaceMember swaps a drawn member for a scratch. The replacement has to
// come from the same bucket and cannot already be on a team.
func (s *RelayState) ReplaceMember(teamNumber, outgoingID int, replacement RelayMember) error {
	if s.Status == RelayNotDrawn {
		return ErrRelayNotDrawn
	}
	if s.Status == RelayCompleted {
		return ErrBracketCompleted
	}

	for _, t := range s.Teams {
		for _, m := range t.Members {
			if m.CompetitorID == replacement.CompetitorID && m.CompetitorType == replacement.CompetitorType {
				return ErrRelayMemberTaken
			}
		}
	}

	team, err := s.team(teamNumber)
	if err != nil {
		return err
	}
	for i, m := range team.Members {
		if m.CompetitorID != outgoingID {
			continue
		}
		if m.Gender != replacement.Gender || m.CompetitorType != replacement.CompetitorType {
			return ErrRelayBucketMismatch
		}
		team.Members[i] = replacement
		return nil
	}
	return ErrRelayMemberNotFound
}

// Standings returns team numbers ordered by total time, fastest first. Teams
// without a total sort last in running order.
func (s *RelayState) Standings() []*RelayTeam {
	out := make([]*RelayTeam, len(s.Teams))
	copy(out, s.Teams)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].TotalTime, out[j].TotalTime
		if a != nil && b != nil {
			return *a < *b
		}
		return a != nil && b == nil
	})
	return out
}

func validSubEvent(name string) bool {
	for _, s := range RelaySubEvents {
		if s == name {
			return true
		}
	}
	return false
}
