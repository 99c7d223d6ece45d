package brackets

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Bracket state types.
const (
	TypePartneredAxe = "partnered_axe"
	TypeBirling      = "birling"
	TypeRelay        = "proam_relay"
)

var (
	ErrNoBracketState    = errors.New("event has no bracket state")
	ErrWrongBracketType  = errors.New("event holds a different bracket type")
	ErrMatchNotFound     = errors.New("bracket match not found")
	ErrMatchNotReady     = errors.New("bracket match is not ready to score")
	ErrMatchAlreadyDone  = errors.New("bracket match already has a winner")
	ErrInvalidWinner     = errors.New("winner is not a participant of this match")
	ErrBracketCompleted  = errors.New("bracket is already completed")
	ErrNotEnoughEntrants = errors.New("not enough entrants for a bracket")
)

// State is the discriminated union persisted in an event's payout column for
// bracket and relay events. Exactly one branch is set, per Type.
type State struct {
	Type         string             `json:"type"`
	PartneredAxe *PartneredAxeState `json:"partnered_axe,omitempty"`
	Birling      *BirlingState      `json:"birling,omitempty"`
	Relay        *RelayState        `json:"relay,omitempty"`
}

// ParseState decodes a stored bracket blob. An empty or plain payout-map blob
// yields ErrNoBracketState.
func ParseState(raw string) (*State, error) {
	if raw == "" || raw == "{}" {
		return nil, ErrNoBracketState
	}
	s := &State{}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return nil, fmt.Errorf("failed to parse bracket state: %w", err)
	}
	if s.Type == "" {
		return nil, ErrNoBracketState
	}
	return s, nil
}

func (s *State) Marshal() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal bracket state: %w", err)
	}
	return string(raw), nil
}
