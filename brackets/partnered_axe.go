package brackets

import (
	"errors"
	"sort"
)

// Partnered Axe phases.
const (
	AxePhasePrelims   = "prelims"
	AxePhaseFinals    = "finals"
	AxePhaseCompleted = "completed"
)

var (
	ErrAxePairNotFound      = errors.New("axe pair not found")
	ErrAxePairNotFinalist   = errors.New("axe pair did not advance to finals")
	ErrAxePrelimsIncomplete = errors.New("not all pairs have a prelim score")
	ErrAxeFinalsIncomplete  = errors.New("not all finalist pairs have a final score")
	ErrAxeWrongPhase        = errors.New("operation not valid in current phase")
)

// AxeFinalistCount is how many pairs advance from prelims.
const AxeFinalistCount = 4

// AxePair is one two-person team in the Partnered Axe Throw. Slice order in
// PartneredAxeState.Pairs is registration order and breaks all ties.
type AxePair struct {
	ID              int      `json:"id"`
	Competitor1ID   int      `json:"competitor1_id"`
	Competitor1Name string   `json:"competitor1_name"`
	Competitor2ID   int      `json:"competitor2_id"`
	Competitor2Name string   `json:"competitor2_name"`
	PrelimScore     *float64 `json:"prelim_score,omitempty"`
	FinalScore      *float64 `json:"final_score,omitempty"`
	IsFinalist      bool     `json:"is_finalist"`
	FinalPosition   *int     `json:"final_position,omitempty"`
}

// PartneredAxeState is the persisted bracket for the Partnered Axe Throw:
// a combined-score prelim round followed by a four-pair final.
type PartneredAxeState struct {
	Phase string     `json:"phase"`
	Pairs []*AxePair `json:"pairs"`
}

// NewPartneredAxe starts a bracket in the prelim phase. Pairs must arrive in
// registration order.
func NewPartneredAxe(pairs []*AxePair) (*PartneredAxeState, error) {
	if len(pairs) < 2 {
		return nil, ErrNotEnoughEntrants
	}
	return &PartneredAxeState{Phase: AxePhasePrelims, Pairs: pairs}, nil
}

func (s *PartneredAxeState) pair(pairID int) (*AxePair, error) {
	for _, p := range s.Pairs {
		if p.ID == pairID {
			return p, nil
		}
	}
	return nil, ErrAxePairNotFound
}

// RecordPrelimScore sets a pair's combined prelim score. Re-recording before
// advancement overwrites.
func (s *PartneredAxeState) RecordPrelimScore(pairID int, score float64) error {
	if s.Phase != AxePhasePrelims {
		return ErrAxeWrongPhase
	}
	p, err := s.pair(pairID)
	if err != nil {
		return err
	}
	p.PrelimScore = &score
	return nil
}

// AdvanceToFinals moves the top four pairs into the final round. Every pair
// needs a prelim score and at least four pairs must be registered. Ties on
// prelim score break by registration order.
func (s *PartneredAxeState) AdvanceToFinals() ([]*AxePair, error) {
	if s.Phase != AxePhasePrelims {
		return nil, ErrAxeWrongPhase
	}
	if len(s.Pairs) < AxeFinalistCount {
		return nil, ErrNotEnoughEntrants
	}
	for _, p := range s.Pairs {
		if p.PrelimScore == nil {
			return nil, ErrAxePrelimsIncomplete
		}
	}

	ranked := s.prelimOrder()
	for i, p := range ranked {
		p.IsFinalist = i < AxeFinalistCount
	}

	s.Phase = AxePhaseFinals
	return ranked[:AxeFinalistCount], nil
}

// prelimOrder returns pairs best-first by prelim score, registration order on
// ties. The sort is stable over registration order.
func (s *PartneredAxeState) prelimOrder() []*AxePair {
	ranked := make([]*AxePair, len(s.Pairs))
	copy(ranked, s.Pairs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].PrelimScore > *ranked[j].PrelimScore
	})
	return ranked
}

// RecordFinalScore sets a finalist pair's final-round score.
func (s *PartneredAxeState) RecordFinalScore(pairID int, score float64) error {
	if s.Phase != AxePhaseFinals {
		return ErrAxeWrongPhase
	}
	p, err := s.pair(pairID)
	if err != nil {
		return err
	}
	if !p.IsFinalist {
		return ErrAxePairNotFinalist
	}
	p.FinalScore = &score
	return nil
}

// FinalizePlacements ranks finalists 1-4 by final score and the remaining
// pairs from 5 down in prelim order, then completes the bracket. Returns all
// pairs in placement order.
func (s *PartneredAxeState) FinalizePlacements() ([]*AxePair, error) {
	if s.Phase != AxePhaseFinals {
		return nil, ErrAxeWrongPhase
	}

	var finalists, rest []*AxePair
	for _, p := range s.prelimOrder() {
		if p.IsFinalist {
			finalists = append(finalists, p)
		} else {
			rest = append(rest, p)
		}
	}
	for _, p := range finalists {
		if p.FinalScore == nil {
			return nil, ErrAxeFinalsIncomplete
		}
	}

	sort.SliceStable(finalists, func(i, j int) bool {
		return *finalists[i].FinalScore > *finalists[j].FinalScore
	})

	position := 1
	ordered := append(finalists, rest...)
	for _, p := range ordered {
		pos := position
		p.FinalPosition = &pos
		position++
	}

	s.Phase = AxePhaseCompleted
	return ordered, nil
}
