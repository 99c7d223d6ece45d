package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func birlingEntrants(n int) []BirlingEntrant {
	out := make([]BirlingEntrant, n)
	for i := 0; i < n; i++ {
		out[i] = BirlingEntrant{CompetitorID: 11 + i, Name: "Roller"}
	}
	return out
}

func scoreReady(t *testing.T, s *BirlingState, bracket string, round, slot, winnerID int) {
	t.Helper()
	m := s.find(bracket, round, slot)
	require.NotNil(t, m, "%s round %d slot %d", bracket, round, slot)
	require.NoError(t, s.ScoreMatch(m.ID, winnerID))
}

func TestBirlingRequiresTwoEntrants(t *testing.T) {
	_, err := NewBirling(birlingEntrants(1))
	assert.ErrorIs(t, err, ErrNotEnoughEntrants)
}

func TestBirlingSeedingAndByes(t *testing.T) {
	// Six rollers in a bracket of eight: seeds 1 and 2 get first-round byes.
	s, err := NewBirling(birlingEntrants(6))
	require.NoError(t, err)

	assert.Equal(t, 8, s.BracketSize)
	assert.Equal(t, 3, s.Rounds)

	ready := s.ReadyMatches()
	require.Len(t, ready, 2)
	assert.Equal(t, 14, *ready[0].A) // seed 4 vs seed 5
	assert.Equal(t, 15, *ready[0].B)
	assert.Equal(t, 13, *ready[1].A) // seed 3 vs seed 6
	assert.Equal(t, 16, *ready[1].B)

	// Bye winners are already waiting in the second winners round.
	wr2 := s.find(BirlingWinners, 2, 0)
	require.NotNil(t, wr2.A)
	assert.Equal(t, 11, *wr2.A)
}

func TestBirlingScoreValidation(t *testing.T) {
	s, err := NewBirling(birlingEntrants(4))
	require.NoError(t, err)

	m := s.find(BirlingWinners, 1, 0)
	assert.ErrorIs(t, s.ScoreMatch(m.ID, 999), ErrInvalidWinner)

	later := s.find(BirlingWinners, 2, 0)
	assert.ErrorIs(t, s.ScoreMatch(later.ID, 11), ErrMatchNotReady)

	require.NoError(t, s.ScoreMatch(m.ID, 11))
	assert.ErrorIs(t, s.ScoreMatch(m.ID, 11), ErrMatchAlreadyDone)

	_, err = s.Match(9999)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestBirlingDoubleEliminationWithTrueFinal(t *testing.T) {
	s, err := NewBirling(birlingEntrants(6))
	require.NoError(t, err)

	// Winners round 1.
	scoreReady(t, s, BirlingWinners, 1, 1, 14)
	scoreReady(t, s, BirlingWinners, 1, 3, 13)

	// Winners round 2; losers drop into the second losers round.
	scoreReady(t, s, BirlingWinners, 2, 0, 11)
	scoreReady(t, s, BirlingWinners, 2, 1, 12)

	// Losers bracket: 14 and 16 take their second losses here.
	scoreReady(t, s, BirlingLosers, 2, 0, 15)
	scoreReady(t, s, BirlingLosers, 2, 1, 13)

	// Winners final and losers bracket run-in.
	scoreReady(t, s, BirlingWinners, 3, 0, 11)
	scoreReady(t, s, BirlingLosers, 3, 0, 13)
	scoreReady(t, s, BirlingLosers, 4, 0, 12)

	// Losers champion takes the grand final, forcing a true final.
	gf := s.find(BirlingGrandFinal, 1, 0)
	require.True(t, gf.Ready())
	require.NoError(t, s.ScoreMatch(gf.ID, 12))
	assert.False(t, s.Completed)

	tf := s.find(BirlingTrueFinal, 1, 0)
	require.NotNil(t, tf)
	require.NoError(t, s.ScoreMatch(tf.ID, 11))
	require.True(t, s.Completed)

	placements, err := s.FinalPlacements()
	require.NoError(t, err)
	require.Len(t, placements, 6)

	want := map[int]int{11: 1, 12: 2, 13: 3, 15: 4, 16: 5, 14: 6}
	for _, p := range placements {
		assert.Equal(t, want[p.CompetitorID], p.Position, "competitor %d", p.CompetitorID)
	}

	assert.ErrorIs(t, s.ScoreMatch(tf.ID, 11), ErrBracketCompleted)
}

func TestBirlingGrandFinalWithoutTrueFinal(t *testing.T) {
	s, err := NewBirling(birlingEntrants(4))
	require.NoError(t, err)

	scoreReady(t, s, BirlingWinners, 1, 0, 11)
	scoreReady(t, s, BirlingWinners, 1, 1, 12)
	scoreReady(t, s, BirlingWinners, 2, 0, 11)
	scoreReady(t, s, BirlingLosers, 1, 0, 14)
	scoreReady(t, s, BirlingLosers, 2, 0, 12)

	gf := s.find(BirlingGrandFinal, 1, 0)
	require.NoError(t, s.ScoreMatch(gf.ID, 11))

	require.True(t, s.Completed)
	require.NotNil(t, s.ChampionID)
	assert.Equal(t, 11, *s.ChampionID)
	assert.Nil(t, s.find(BirlingTrueFinal, 1, 0))

	placements, err := s.FinalPlacements()
	require.NoError(t, err)
	want := map[int]int{11: 1, 12: 2, 14: 3, 13: 4}
	for _, p := range placements {
		assert.Equal(t, want[p.CompetitorID], p.Position)
	}
}

func TestBirlingStateRoundTrip(t *testing.T) {
	s, err := NewBirling(birlingEntrants(4))
	require.NoError(t, err)
	scoreReady(t, s, BirlingWinners, 1, 0, 11)

	raw, err := (&State{Type: TypeBirling, Birling: s}).Marshal()
	require.NoError(t, err)

	parsed, err := ParseState(raw)
	require.NoError(t, err)
	require.Equal(t, TypeBirling, parsed.Type)
	require.NotNil(t, parsed.Birling)

	// The restored bracket keeps playing where it left off.
	scoreReady(t, parsed.Birling, BirlingWinners, 1, 1, 12)
	wr2 := parsed.Birling.find(BirlingWinners, 2, 0)
	assert.True(t, wr2.Ready())
}

func TestParseStateEmpty(t *testing.T) {
	_, err := ParseState("{}")
	assert.ErrorIs(t, err, ErrNoBracketState)
	_, err = ParseState("")
	assert.ErrorIs(t, err, ErrNoBracketState)
}
