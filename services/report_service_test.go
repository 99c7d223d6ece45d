package services

import (
	"testing"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamStandingsOrderAndLimit(t *testing.T) {
	var teams []*models.Team
	for i := 1; i <= 20; i++ {
		teams = append(teams, &models.Team{ID: i, TeamCode: string(rune('A' + i)), TotalPoints: i})
	}

	standings := teamStandings(teams, topTeams)
	require.Len(t, standings, topTeams)
	assert.Equal(t, 20, standings[0].Points)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 6, standings[topTeams-1].Points)
}

func TestTeamStandingsTieBreaksByCode(t *testing.T) {
	standings := teamStandings([]*models.Team{
		{ID: 1, TeamCode: "UM-B", TotalPoints: 40},
		{ID: 2, TeamCode: "UM-A", TotalPoints: 40},
	}, topTeams)
	require.Len(t, standings, 2)
	assert.Equal(t, "UM-A", standings[0].TeamCode)
}

func TestIndividualStandingsFilterByGender(t *testing.T) {
	teams := []*models.Team{{ID: 1, TeamCode: "UM-A"}}
	comps := []*models.CollegeCompetitor{
		{ID: 1, TeamID: 1, Name: "Alex Pine", Gender: models.GenderMale, IndividualPoints: 22},
		{ID: 2, TeamID: 1, Name: "Blake Fir", Gender: models.GenderFemale, IndividualPoints: 30},
		{ID: 3, TeamID: 1, Name: "Casey Oak", Gender: models.GenderMale, IndividualPoints: 17},
	}

	bull := individualStandings(comps, teams, models.GenderMale, topIndividuals)
	require.Len(t, bull, 2)
	assert.Equal(t, "Alex Pine", bull[0].Name)
	assert.Equal(t, "UM-A", bull[0].TeamCode)

	belle := individualStandings(comps, teams, models.GenderFemale, topIndividuals)
	require.Len(t, belle, 1)
	assert.Equal(t, 30, belle[0].Points)
}

func TestSortResultsRankedFirst(t *testing.T) {
	second, first := 2, 1
	results := []*models.EventResult{
		{CompetitorID: 10},
		{CompetitorID: 11, FinalPosition: &second},
		{CompetitorID: 12, FinalPosition: &first},
	}

	sortResults(results)
	assert.Equal(t, 12, results[0].CompetitorID)
	assert.Equal(t, 11, results[1].CompetitorID)
	assert.Equal(t, 10, results[2].CompetitorID)
}
