package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axePairs(n int) []*AxePair {
	pairs := make([]*AxePair, n)
	for i := 0; i < n; i++ {
		pairs[i] = &AxePair{
			ID:              i + 1,
			Competitor1ID:   100 + 2*i,
			Competitor1Name: "Thrower A",
			Competitor2ID:   101 + 2*i,
			Competitor2Name: "Thrower B",
		}
	}
	return pairs
}

func TestPartneredAxeRequiresTwoPairs(t *testing.T) {
	_, err := NewPartneredAxe(axePairs(1))
	assert.ErrorIs(t, err, ErrNotEnoughEntrants)
}

func TestPartneredAxeAdvanceNeedsAllScores(t *testing.T) {
	s, err := NewPartneredAxe(axePairs(5))
	require.NoError(t, err)

	for _, id := range []int{1, 2, 3, 4} {
		require.NoError(t, s.RecordPrelimScore(id, float64(id)))
	}

	_, err = s.AdvanceToFinals()
	assert.ErrorIs(t, err, ErrAxePrelimsIncomplete)
}

func TestPartneredAxeAdvanceNeedsFourPairs(t *testing.T) {
	s, err := NewPartneredAxe(axePairs(3))
	require.NoError(t, err)

	for _, id := range []int{1, 2, 3} {
		require.NoError(t, s.RecordPrelimScore(id, float64(id)))
	}

	_, err = s.AdvanceToFinals()
	assert.ErrorIs(t, err, ErrNotEnoughEntrants)
}

func TestPartneredAxeTopFourAdvance(t *testing.T) {
	s, err := NewPartneredAxe(axePairs(6))
	require.NoError(t, err)

	scores := map[int]float64{1: 18, 2: 22, 3: 15, 4: 20, 5: 22, 6: 10}
	for id, score := range scores {
		require.NoError(t, s.RecordPrelimScore(id, score))
	}

	finalists, err := s.AdvanceToFinals()
	require.NoError(t, err)
	require.Len(t, finalists, 4)

	// Pairs 2 and 5 tie at 22; registration order puts pair 2 first.
	assert.Equal(t, 2, finalists[0].ID)
	assert.Equal(t, 5, finalists[1].ID)
	assert.Equal(t, 4, finalists[2].ID)
	assert.Equal(t, 1, finalists[3].ID)
	assert.Equal(t, AxePhaseFinals, s.Phase)
}

func TestPartneredAxeRejectsNonFinalistFinalScore(t *testing.T) {
	s, err := NewPartneredAxe(axePairs(5))
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.RecordPrelimScore(i, float64(i)))
	}
	_, err = s.AdvanceToFinals()
	require.NoError(t, err)

	// Pair 1 scored lowest and stayed out of the finals.
	assert.ErrorIs(t, s.RecordFinalScore(1, 20), ErrAxePairNotFinalist)
}

func TestPartneredAxeFinalPlacements(t *testing.T) {
	s, err := NewPartneredAxe(axePairs(6))
	require.NoError(t, err)

	prelims := map[int]float64{1: 10, 2: 20, 3: 18, 4: 16, 5: 14, 6: 12}
	for id, score := range prelims {
		require.NoError(t, s.RecordPrelimScore(id, score))
	}
	_, err = s.AdvanceToFinals()
	require.NoError(t, err)

	_, err = s.FinalizePlacements()
	assert.ErrorIs(t, err, ErrAxeFinalsIncomplete)

	// Finalists are pairs 2,3,4,5. Pair 4 wins the final round.
	finals := map[int]float64{2: 19, 3: 17, 4: 24, 5: 21}
	for id, score := range finals {
		require.NoError(t, s.RecordFinalScore(id, score))
	}

	ordered, err := s.FinalizePlacements()
	require.NoError(t, err)
	require.Len(t, ordered, 6)

	wantOrder := []int{4, 5, 2, 3, 6, 1}
	for i, p := range ordered {
		assert.Equal(t, wantOrder[i], p.ID, "position %d", i+1)
		require.NotNil(t, p.FinalPosition)
		assert.Equal(t, i+1, *p.FinalPosition)
	}
	assert.Equal(t, AxePhaseCompleted, s.Phase)
}
