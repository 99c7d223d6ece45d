package brackets

import (
	"sort"
)

// Birling bracket sections.
const (
	BirlingWinners    = "winners"
	BirlingLosers     = "losers"
	BirlingGrandFinal = "grand_final"
	BirlingTrueFinal  = "true_final"
)

// byeID marks a slot that will never receive a competitor.
const byeID = 0

// BirlingEntrant is one seeded competitor. Seed 1 is the strongest.
type BirlingEntrant struct {
	CompetitorID int    `json:"competitor_id"`
	Name         string `json:"name"`
	Seed         int    `json:"seed"`
}

// BirlingMatch is one roll-off. A and B are nil while awaiting feeders and
// byeID when the feeder chain is empty.
type BirlingMatch struct {
	ID       int    `json:"id"`
	Bracket  string `json:"bracket"`
	Round    int    `json:"round"`
	Slot     int    `json:"slot"`
	A        *int   `json:"a,omitempty"`
	B        *int   `json:"b,omitempty"`
	WinnerID *int   `json:"winner_id,omitempty"`
	LoserID  *int   `json:"loser_id,omitempty"`
}

// Ready reports whether both competitors are known and the match is unscored.
func (m *BirlingMatch) Ready() bool {
	return m.WinnerID == nil &&
		m.A != nil && *m.A != byeID &&
		m.B != nil && *m.B != byeID
}

// BirlingPlacement is one competitor's final standing.
type BirlingPlacement struct {
	CompetitorID int    `json:"competitor_id"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
}

// BirlingState is a persisted double-elimination bracket. Losers drop into a
// second bracket and are only out after two losses. The winners champion
// meets the losers champion in the grand final; if the losers champion wins
// there, one true final decides it.
type BirlingState struct {
	Entrants    []BirlingEntrant `json:"entrants"`
	BracketSize int              `json:"bracket_size"`
	Rounds      int              `json:"rounds"`
	Matches     []*BirlingMatch  `json:"matches"`
	// Positions accumulates final standings as competitors are knocked out,
	// from last place upward.
	Positions  map[int]int `json:"positions"`
	ChampionID *int        `json:"champion_id,omitempty"`
	Completed  bool        `json:"completed"`

	nextID int
}

// seedOrder returns seeds in bracket-slot order so the round-1 pairs are
// 1-vs-N, 2-vs-(N-1) and so on down the bracket.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		for _, s := range order {
			next = append(next, s, 2*len(order)+1-s)
		}
		order = next
	}
	return order
}

// NewBirling builds the full match skeleton for the given entrants, seeds
// assigned in slice order (first entrant is seed 1). Byes resolve immediately.
func NewBirling(entrants []BirlingEntrant) (*BirlingState, error) {
	n := len(entrants)
	if n < 2 {
		return nil, ErrNotEnoughEntrants
	}

	size := 1
	rounds := 0
	for size < n {
		size *= 2
		rounds++
	}
	if rounds == 0 {
		rounds = 1
		size = 2
	}

	s := &BirlingState{
		Entrants:    make([]BirlingEntrant, n),
		BracketSize: size,
		Rounds:      rounds,
		Positions:   make(map[int]int),
	}
	for i, e := range entrants {
		e.Seed = i + 1
		s.Entrants[i] = e
	}

	// Winners bracket, round 1 populated from the seed order.
	order := seedOrder(size)
	bySeed := func(seed int) *int {
		if seed > n {
			bye := byeID
			return &bye
		}
		id := s.Entrants[seed-1].CompetitorID
		return &id
	}
	for m := 0; m < size/2; m++ {
		s.addMatch(&BirlingMatch{
			Bracket: BirlingWinners, Round: 1, Slot: m,
			A: bySeed(order[2*m]), B: bySeed(order[2*m+1]),
		})
	}
	for r := 2; r <= rounds; r++ {
		for m := 0; m < size>>uint(r); m++ {
			s.addMatch(&BirlingMatch{Bracket: BirlingWinners, Round: r, Slot: m})
		}
	}

	// Losers bracket: alternating minor rounds (losers only) and major rounds
	// fed by winners-bracket drops.
	if rounds >= 2 {
		for j := 1; j <= 2*rounds-2; j++ {
			for m := 0; m < s.losersRoundSize(j); m++ {
				s.addMatch(&BirlingMatch{Bracket: BirlingLosers, Round: j, Slot: m})
			}
		}
	}

	s.addMatch(&BirlingMatch{Bracket: BirlingGrandFinal, Round: 1, Slot: 0})

	s.autoResolve()
	return s, nil
}

func (s *BirlingState) losersRoundSize(j int) int {
	if j%2 == 1 {
		return s.BracketSize >> uint((j+1)/2+1)
	}
	return s.BracketSize >> uint(j/2+1)
}

func (s *BirlingState) addMatch(m *BirlingMatch) {
	s.nextID++
	if s.nextID <= len(s.Matches) {
		s.nextID = len(s.Matches) + 1
	}
	m.ID = s.nextID
	s.Matches = append(s.Matches, m)
}

func (s *BirlingState) find(bracket string, round, slot int) *BirlingMatch {
	for _, m := range s.Matches {
		if m.Bracket == bracket && m.Round == round && m.Slot == slot {
			return m
		}
	}
	return nil
}

// Match returns the match with the given id.
func (s *BirlingState) Match(id int) (*BirlingMatch, error) {
	for _, m := range s.Matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMatchNotFound
}

// ReadyMatches returns every match that can be scored right now.
func (s *BirlingState) ReadyMatches() []*BirlingMatch {
	var out []*BirlingMatch
	for _, m := range s.Matches {
		if m.Ready() {
			out = append(out, m)
		}
	}
	return out
}

// ScoreMatch records the winner of a match and routes both competitors to
// their next slots, auto-advancing through any byes that become resolvable.
func (s *BirlingState) ScoreMatch(matchID, winnerID int) error {
	if s.Completed {
		return ErrBracketCompleted
	}
	m, err := s.Match(matchID)
	if err != nil {
		return err
	}
	if m.WinnerID != nil {
		return ErrMatchAlreadyDone
	}
	if !m.Ready() {
		return ErrMatchNotReady
	}
	if *m.A != winnerID && *m.B != winnerID {
		return ErrInvalidWinner
	}

	s.resolve(m, winnerID)
	s.autoResolve()
	return nil
}

// resolve sets the match outcome and routes winner and loser onward.
func (s *BirlingState) resolve(m *BirlingMatch, winnerID int) {
	loserID := *m.A
	if loserID == winnerID {
		loserID = *m.B
	}
	m.WinnerID = &winnerID
	m.LoserID = &loserID

	switch m.Bracket {
	case BirlingWinners:
		s.routeWinnersOutcome(m, winnerID, loserID)
	case BirlingLosers:
		s.routeLosersOutcome(m, winnerID, loserID)
	case BirlingGrandFinal:
		// Winners champion sits in slot A. A loss there forces a true final.
		if loserID == byeID || winnerID == *m.A {
			s.crown(winnerID, loserID)
		} else {
			tf := &BirlingMatch{Bracket: BirlingTrueFinal, Round: 1, Slot: 0, A: m.A, B: m.B}
			s.addMatch(tf)
		}
	case BirlingTrueFinal:
		s.crown(winnerID, loserID)
	}
}

func (s *BirlingState) crown(championID, runnerUpID int) {
	s.ChampionID = &championID
	s.Positions[championID] = 1
	if runnerUpID != byeID {
		s.Positions[runnerUpID] = 2
	}
	s.Completed = true
}

func (s *BirlingState) routeWinnersOutcome(m *BirlingMatch, winnerID, loserID int) {
	if m.Round < s.Rounds {
		s.fill(s.find(BirlingWinners, m.Round+1, m.Slot/2), m.Slot%2, winnerID)
	} else {
		s.fill(s.find(BirlingGrandFinal, 1, 0), 0, winnerID)
	}

	switch {
	case s.Rounds == 1:
		// Two-competitor bracket: the loser goes straight to the grand final.
		s.fill(s.find(BirlingGrandFinal, 1, 0), 1, loserID)
	case m.Round == 1:
		s.fill(s.find(BirlingLosers, 1, m.Slot/2), m.Slot%2, loserID)
	default:
		s.fill(s.find(BirlingLosers, 2*(m.Round-1), m.Slot), 1, loserID)
	}
}

func (s *BirlingState) routeLosersOutcome(m *BirlingMatch, winnerID, loserID int) {
	last := 2*s.Rounds - 2
	switch {
	case m.Round == last:
		s.fill(s.find(BirlingGrandFinal, 1, 0), 1, winnerID)
	case m.Round%2 == 1:
		s.fill(s.find(BirlingLosers, m.Round+1, m.Slot), 0, winnerID)
	default:
		s.fill(s.find(BirlingLosers, m.Round+1, m.Slot/2), m.Slot%2, winnerID)
	}

	s.eliminate(loserID)
}

// eliminate records a second loss. Positions count down from the field size:
// the first competitor out places last.
func (s *BirlingState) eliminate(competitorID int) {
	if competitorID == byeID {
		return
	}
	eliminated := 0
	for _, pos := range s.Positions {
		if pos > 2 {
			eliminated++
		}
	}
	s.Positions[competitorID] = len(s.Entrants) - eliminated
}

func (s *BirlingState) fill(m *BirlingMatch, side, competitorID int) {
	if m == nil {
		return
	}
	id := competitorID
	if side == 0 {
		m.A = &id
	} else {
		m.B = &id
	}
}

// autoResolve flushes matches where at least one slot is a bye.
func (s *BirlingState) autoResolve() {
	for {
		advanced := false
		for _, m := range s.Matches {
			if m.WinnerID != nil || m.A == nil || m.B == nil {
				continue
			}
			if *m.A != byeID && *m.B != byeID {
				continue
			}
			winner := *m.A
			if winner == byeID {
				winner = *m.B
			}
			// Bye-vs-bye propagates a bye.
			s.resolve(m, winner)
			advanced = true
		}
		if !advanced {
			return
		}
	}
}

// FinalPlacements returns the complete standings, champion first. The bracket
// must be finished.
func (s *BirlingState) FinalPlacements() ([]BirlingPlacement, error) {
	if !s.Completed {
		return nil, ErrMatchNotReady
	}

	names := make(map[int]string, len(s.Entrants))
	for _, e := range s.Entrants {
		names[e.CompetitorID] = e.Name
	}

	out := make([]BirlingPlacement, 0, len(s.Positions))
	for id, pos := range s.Positions {
		out = append(out, BirlingPlacement{CompetitorID: id, Name: names[id], Position: pos})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}
