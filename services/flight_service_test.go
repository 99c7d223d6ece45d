package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/jobs"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// noEventsRepo serves an empty event list; everything else is unreachable in
// the paths under test.
type noEventsRepo struct {
	repositories.EventRepository
}

func (noEventsRepo) ListByTournament(ctx context.Context, tournamentID int, eventType *models.EventType) ([]*models.Event, error) {
	return nil, nil
}

func TestSpacingScoreAllNew(t *testing.T) {
	heat := FlightHeat{HeatID: 1, Competitors: []int{1, 2, 3}}
	assert.Equal(t, allNewScore, spacingScore(heat, map[int]int{}, 0))
}

func TestSpacingScorePenalizesTightSpacing(t *testing.T) {
	heat := FlightHeat{HeatID: 1, Competitors: []int{1}}
	last := map[int]int{1: 8}

	// Spacing 2 at index 10: 50 - (4-2)*100 clamps to zero.
	assert.Equal(t, 0.0, spacingScore(heat, last, 10))

	// Spacing 3: 50 - 100 clamps to zero too.
	last[1] = 7
	assert.Equal(t, 0.0, spacingScore(heat, last, 10))
}

func TestSpacingScoreRewardsRest(t *testing.T) {
	heat := FlightHeat{HeatID: 1, Competitors: []int{1, 2}}
	last := map[int]int{1: 6, 2: 2}

	// At index 10: spacings are 4 and 8 -> min 4, avg 6 -> 40 + 6 = 46.
	assert.InDelta(t, 46.0, spacingScore(heat, last, 10), 0.001)

	// Push min spacing to the target for the +50 bonus: min 5, avg 6.5.
	last[1] = 5
	last[2] = 2
	assert.InDelta(t, 50+6.5+50, spacingScore(heat, last, 10), 0.001)
}

func TestOrderHeatsSpreadsRepeatCompetitors(t *testing.T) {
	// Competitor 99 is in two heats; five other heats are all fresh. The
	// builder must not place 99's two heats adjacently.
	heats := []FlightHeat{
		{HeatID: 1, Competitors: []int{99, 1}},
		{HeatID: 2, Competitors: []int{99, 2}},
		{HeatID: 3, Competitors: []int{3, 4}},
		{HeatID: 4, Competitors: []int{5, 6}},
		{HeatID: 5, Competitors: []int{7, 8}},
		{HeatID: 6, Competitors: []int{9, 10}},
		{HeatID: 7, Competitors: []int{11, 12}},
	}

	ordered := OrderHeats(heats)
	require.Len(t, ordered, 7)

	positions := map[int]int{}
	for i, h := range ordered {
		positions[h.HeatID] = i
	}
	spacing := positions[2] - positions[1]
	if spacing < 0 {
		spacing = -spacing
	}
	assert.GreaterOrEqual(t, spacing, 4, "heats sharing competitor 99 must rest apart")
	assert.Empty(t, ValidateSpacing(ordered))
}

func TestOrderHeatsPlacesViolationsOnlyWhenForced(t *testing.T) {
	// Two heats share a competitor and nothing else exists: a violation is
	// unavoidable, but the builder must still place both.
	heats := []FlightHeat{
		{HeatID: 1, Competitors: []int{1, 2}},
		{HeatID: 2, Competitors: []int{2, 3}},
	}

	ordered := OrderHeats(heats)
	require.Len(t, ordered, 2)

	violations := ValidateSpacing(ordered)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].CompetitorID)
	assert.Equal(t, 1, violations[0].Spacing)
}

func TestValidateSpacingReportsEachTightRepeat(t *testing.T) {
	ordered := []FlightHeat{
		{HeatID: 1, Competitors: []int{1}},
		{HeatID: 2, Competitors: []int{2}},
		{HeatID: 3, Competitors: []int{1}}, // spacing 2
		{HeatID: 4, Competitors: []int{3}},
		{HeatID: 5, Competitors: []int{4}},
		{HeatID: 6, Competitors: []int{7}},
		{HeatID: 7, Competitors: []int{2}}, // spacing 6, fine
	}

	violations := ValidateSpacing(ordered)
	require.Len(t, violations, 1)
	assert.Equal(t, 1, violations[0].CompetitorID)
	assert.Equal(t, 2, violations[0].Position)
	assert.Equal(t, 2, violations[0].Spacing)
}

func TestSplitIntoFlights(t *testing.T) {
	heats := make([]FlightHeat, 19)
	for i := range heats {
		heats[i] = FlightHeat{HeatID: i + 1}
	}

	flights := SplitIntoFlights(heats)
	require.Len(t, flights, 3)
	assert.Len(t, flights[0], 8)
	assert.Len(t, flights[1], 8)
	assert.Len(t, flights[2], 3)
}

func TestScheduleBuildQueuesJob(t *testing.T) {
	pool := jobs.NewPool(1, 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer pool.Shutdown(context.Background())

	svc := NewFlightService(nil, noEventsRepo{}, nil, nil, nil, pool, nil, nil)
	job, err := svc.ScheduleBuild(nil, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "build flights tournament 7", job.Label)

	// The build runs off the request path; with no pro heats generated it
	// fails fast and the error surfaces on the job record.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := pool.Get(job.ID)
		require.NoError(t, err)
		if got.Status == jobs.StatusFailed {
			assert.Contains(t, got.Error, "no pro heats")
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never finished (last: %s)", got.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
