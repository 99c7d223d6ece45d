package services

import (
	"testing"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedResult(competitorID int, value float64) *models.EventResult {
	return &models.EventResult{
		CompetitorID: competitorID,
		ResultValue:  &value,
		Status:       models.StatusCompleted,
	}
}

func TestParseScore(t *testing.T) {
	v, err := ParseScore(" 12.34 ")
	require.NoError(t, err)
	assert.Equal(t, 12.34, v)

	_, err = ParseScore("three logs")
	assert.Error(t, err)

	_, err = ParseScore("")
	assert.Error(t, err)
}

func TestVetScoreEntriesWarnsOnSkips(t *testing.T) {
	heat := &models.Heat{ID: 9, Competitors: []int{1, 2, 3}}
	dnf := models.StatusDNF

	vetted, warnings := vetScoreEntries(heat, []ScoreEntry{
		{CompetitorID: 1, RawValue: "12.34"},
		{CompetitorID: 2, RawValue: "three logs"},
		{CompetitorID: 3, RawValue: "", Status: &dnf},
		{CompetitorID: 7, RawValue: "10.0"},
	})

	require.Len(t, vetted, 2)
	assert.Equal(t, 1, vetted[0].entry.CompetitorID)
	assert.True(t, vetted[0].hasValue)
	assert.Equal(t, 12.34, vetted[0].value)
	assert.Equal(t, 3, vetted[1].entry.CompetitorID)
	assert.False(t, vetted[1].hasValue)

	// Skipped rows come back as warnings for the judge, not just log lines.
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `"three logs"`)
	assert.Contains(t, warnings[1], "competitor 7")
}

func TestParsePayouts(t *testing.T) {
	payouts := ParsePayouts(`{"1": 500, "2": 300, "3": 200}`)
	require.Len(t, payouts, 3)
	assert.Equal(t, 500.0, payouts[1])
	assert.Equal(t, 200.0, payouts[3])

	assert.Nil(t, ParsePayouts(""))
	assert.Nil(t, ParsePayouts("{}"))

	// Bracket state shares the column and must not parse as a payout table.
	assert.Nil(t, ParsePayouts(`{"type":"birling","birling":{"entrants":[]}}`))
}

func TestRankResultsLowestWinsWithTies(t *testing.T) {
	results := []*models.EventResult{
		timedResult(1, 11.0),
		timedResult(2, 10.0),
		timedResult(3, 10.0),
		timedResult(4, 12.5),
	}

	ranked := RankResults(results, models.LowestWins)
	require.Len(t, ranked, 4)

	// Tied values share a position and ranking stays dense.
	assert.Equal(t, 1, *ranked[0].FinalPosition)
	assert.Equal(t, 1, *ranked[1].FinalPosition)
	assert.Equal(t, 2, *ranked[2].FinalPosition)
	assert.Equal(t, 3, *ranked[3].FinalPosition)
	assert.Equal(t, 2, ranked[0].CompetitorID)
	assert.Equal(t, 1, ranked[2].CompetitorID)
}

func TestRankResultsHighestWins(t *testing.T) {
	results := []*models.EventResult{
		timedResult(1, 14),
		timedResult(2, 21),
		timedResult(3, 18),
	}

	ranked := RankResults(results, models.HighestWins)
	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].CompetitorID)
	assert.Equal(t, 3, ranked[1].CompetitorID)
	assert.Equal(t, 1, ranked[2].CompetitorID)
}

func TestRankResultsSkipsUnrankable(t *testing.T) {
	dnf := timedResult(2, 99)
	dnf.Status = models.StatusDNF
	scratched := &models.EventResult{CompetitorID: 3, Status: models.StatusScratched}
	noValue := &models.EventResult{CompetitorID: 4, Status: models.StatusCompleted}

	ranked := RankResults([]*models.EventResult{timedResult(1, 10), dnf, scratched, noValue}, models.LowestWins)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].CompetitorID)
	assert.Nil(t, dnf.FinalPosition)
}

func TestApplyPlacementsCollegePoints(t *testing.T) {
	event := &models.Event{EventType: models.EventCollege, ScoringType: models.ScoringTime, ScoringOrder: models.LowestWins}
	results := []*models.EventResult{
		timedResult(1, 31.2),
		timedResult(2, 28.0),
		timedResult(3, 45.9),
	}

	ApplyPlacements(event, results, nil)

	assert.Equal(t, 7, results[0].PointsAwarded)
	assert.Equal(t, 10, results[1].PointsAwarded)
	assert.Equal(t, 5, results[2].PointsAwarded)
	assert.Zero(t, results[0].PayoutAmount)
}

func TestApplyPlacementsProPayoutsIdempotent(t *testing.T) {
	event := &models.Event{EventType: models.EventPro, ScoringType: models.ScoringTime, ScoringOrder: models.LowestWins}
	results := []*models.EventResult{
		timedResult(1, 10.1),
		timedResult(2, 10.2),
		timedResult(3, 10.5),
		timedResult(4, 10.9),
	}
	payouts := map[int]float64{1: 500, 2: 300, 3: 200}

	ApplyPlacements(event, results, payouts)
	assert.Equal(t, 500.0, results[0].PayoutAmount)
	assert.Equal(t, 300.0, results[1].PayoutAmount)
	assert.Equal(t, 200.0, results[2].PayoutAmount)
	assert.Equal(t, 0.0, results[3].PayoutAmount)
	assert.Equal(t, 4, *results[3].FinalPosition)

	// A second pass after corrections must replace, never stack.
	ApplyPlacements(event, results, payouts)
	assert.Equal(t, 500.0, results[0].PayoutAmount)
	assert.Equal(t, 300.0, results[1].PayoutAmount)
	assert.Equal(t, 200.0, results[2].PayoutAmount)
	assert.Equal(t, 0.0, results[3].PayoutAmount)
}

func TestFlagOutliers(t *testing.T) {
	results := []*models.EventResult{
		timedResult(1, 10),
		timedResult(2, 10),
		timedResult(3, 10),
		timedResult(4, 10),
		timedResult(5, 10),
		timedResult(6, 40),
	}

	FlagOutliers(results)
	for _, r := range results[:5] {
		assert.False(t, r.IsFlagged, "competitor %d", r.CompetitorID)
	}
	assert.True(t, results[5].IsFlagged)
}

func TestFlagOutliersNeedsThreeValues(t *testing.T) {
	results := []*models.EventResult{timedResult(1, 10), timedResult(2, 500)}
	FlagOutliers(results)
	assert.False(t, results[1].IsFlagged)
}
