package services

import (
	"testing"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeMember(id int, gender models.Gender, events ...string) models.CollegeCompetitor {
	return models.CollegeCompetitor{
		ID:            id,
		TeamID:        1,
		Name:          "Member " + string(rune('A'+id)),
		Gender:        gender,
		EventsEntered: events,
		Status:        models.CompetitorActive,
	}
}

func errorCodes(r models.ValidationResult) []string {
	out := make([]string, 0, len(r.Errors))
	for _, issue := range r.Errors {
		out = append(out, issue.Code)
	}
	return out
}

func warningCodes(r models.ValidationResult) []string {
	out := make([]string, 0, len(r.Warnings))
	for _, issue := range r.Warnings {
		out = append(out, issue.Code)
	}
	return out
}

func TestValidateTeamTooSmall(t *testing.T) {
	team := &models.Team{ID: 1, TeamCode: "UM-A", SchoolName: "University of Montana"}
	team.Members = []models.CollegeCompetitor{
		activeMember(1, models.GenderMale),
		activeMember(2, models.GenderMale),
		activeMember(3, models.GenderFemale),
	}

	result := ValidateTeam(team)
	assert.False(t, result.IsValid())
	assert.Contains(t, errorCodes(result), CodeTeamTooSmall)
	assert.Contains(t, errorCodes(result), CodeInsufficientFemales)
	assert.NotContains(t, errorCodes(result), CodeInsufficientMales)
}

func TestValidateTeamAtMinimumWarns(t *testing.T) {
	team := &models.Team{ID: 1, TeamCode: "UM-A", SchoolName: "University of Montana"}
	team.Members = []models.CollegeCompetitor{
		activeMember(1, models.GenderMale),
		activeMember(2, models.GenderMale),
		activeMember(3, models.GenderFemale),
		activeMember(4, models.GenderFemale),
	}

	result := ValidateTeam(team)
	assert.True(t, result.IsValid())
	assert.Contains(t, warningCodes(result), CodeTeamAtMinimum)
}

func TestValidateTeamScratchedMembersDoNotCount(t *testing.T) {
	team := &models.Team{ID: 1, TeamCode: "UM-A", SchoolName: "University of Montana"}
	scratched := activeMember(5, models.GenderFemale)
	scratched.Status = models.CompetitorScratched
	team.Members = []models.CollegeCompetitor{
		activeMember(1, models.GenderMale),
		activeMember(2, models.GenderMale),
		activeMember(3, models.GenderFemale),
		scratched,
	}

	result := ValidateTeam(team)
	assert.Contains(t, errorCodes(result), CodeTeamTooSmall)
	assert.Contains(t, errorCodes(result), CodeInsufficientFemales)
}

func TestValidateCollegeCompetitorEventCaps(t *testing.T) {
	c := activeMember(1, models.GenderMale,
		"Underhand Speed", "Standing Block Speed", "Single Buck", "Double Buck",
		"Stock Saw", "Speed Climb", "Obstacle Pole")

	result := ValidateCollegeCompetitor(&c)
	codes := errorCodes(result)
	assert.Contains(t, codes, CodeTooManyClosedEvents) // 7 closed events
	assert.NotContains(t, codes, CodeTooManyChopping) // only 2 chopping

	c.EventsEntered = []string{"Underhand Speed", "Underhand Hard Hit", "Standing Block Speed"}
	result = ValidateCollegeCompetitor(&c)
	assert.Contains(t, errorCodes(result), CodeTooManyChopping)
}

func TestValidateCollegeCompetitorToleratesGenderPrefix(t *testing.T) {
	c := activeMember(1, models.GenderMale,
		"Men's Underhand Speed", "Men's Underhand Hard Hit", "Men's Standing Block Speed")

	result := ValidateCollegeCompetitor(&c)
	assert.Contains(t, errorCodes(result), CodeTooManyChopping)
}

func TestValidateCollegeCompetitorMissingBasics(t *testing.T) {
	c := models.CollegeCompetitor{ID: 9, Status: models.CompetitorActive}

	result := ValidateCollegeCompetitor(&c)
	codes := errorCodes(result)
	assert.Contains(t, codes, CodeMissingField)
	assert.Contains(t, codes, CodeNoTeam)
	assert.Contains(t, warningCodes(result), CodeNoEvents)
}

func TestValidateTeamEntriesGenderCap(t *testing.T) {
	team := &models.Team{ID: 1, TeamCode: "UM-A"}
	for i := 1; i <= 4; i++ {
		team.Members = append(team.Members, activeMember(i, models.GenderMale, "Single Buck"))
	}

	result := ValidateTeamEntries(team)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeEntryLimitExceeded, result.Errors[0].Code)
}

func TestValidateTeamEntriesPairCap(t *testing.T) {
	team := &models.Team{ID: 1, TeamCode: "UM-A"}
	for i := 1; i <= 8; i++ {
		team.Members = append(team.Members, activeMember(i, models.GenderMale, "Double Buck"))
	}

	result := ValidateTeamEntries(team)
	require.Len(t, result.Errors, 1) // 4 pairs in a partnered event
	assert.Equal(t, CodeEntryLimitExceeded, result.Errors[0].Code)
}

func TestValidatePartnersReciprocal(t *testing.T) {
	a := activeMember(1, models.GenderMale, "Double Buck")
	a.Name = "Alex Pine"
	a.Partners = map[string]string{"Double Buck": "Blake Fir"}
	b := activeMember(2, models.GenderMale, "Double Buck")
	b.Name = "Blake Fir"
	b.Partners = map[string]string{"Double Buck": "Alex Pine"}

	result := ValidatePartners([]models.CollegeCompetitor{a, b})
	assert.True(t, result.IsValid())

	// Blake swaps to a partner who never registered.
	b.Partners["Double Buck"] = "Casey Oak"
	result = ValidatePartners([]models.CollegeCompetitor{a, b})
	require.False(t, result.IsValid())
	for _, issue := range result.Errors {
		assert.Equal(t, CodePartnerNotReciprocal, issue.Code)
	}
}

func TestValidateProCompetitorWarnings(t *testing.T) {
	p := &models.ProCompetitor{
		ID:        4,
		Name:      "Jordan Spruce",
		Gender:    models.GenderMale,
		EntryFees: map[string]float64{"Hot Saw": 60},
		FeesPaid:  map[string]bool{},
	}

	result := ValidateProCompetitor(p)
	assert.True(t, result.IsValid())
	codes := warningCodes(result)
	assert.Contains(t, codes, CodeNotALAMember)
	assert.Contains(t, codes, CodeUnpaidFees)
	assert.Contains(t, codes, CodeNoEvents)
}

func TestValidateHeatOvercapacity(t *testing.T) {
	event := &models.Event{ID: 1, Name: "Single Buck", EventType: models.EventPro, StandType: strPtr("saw_hand")}
	heat := &models.Heat{ID: 10, HeatNumber: 1, Competitors: []int{1, 2, 3, 4, 5},
		StandAssignments: map[int]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 4}}

	result := ValidateHeat(event, heat, nil)
	codes := errorCodes(result)
	assert.Contains(t, codes, CodeHeatOvercapacity)
	assert.Contains(t, codes, CodeStandCollision)
}

func TestValidateHeatGearSharingWarning(t *testing.T) {
	event := &models.Event{ID: 3, Name: "Single Buck", EventType: models.EventPro, StandType: strPtr("saw_hand")}
	heat := &models.Heat{ID: 11, HeatNumber: 1, Competitors: []int{1, 2},
		StandAssignments: map[int]int{1: 1, 2: 2}}
	entries := map[int]HeatEntry{
		1: {CompetitorID: 1, Name: "Alex Pine", GearSharing: map[string]string{"crosscut": "saw-alpha"}},
		2: {CompetitorID: 2, Name: "Blake Fir", GearSharing: map[string]string{"crosscut": "saw-alpha"}},
	}

	result := ValidateHeat(event, heat, entries)
	assert.True(t, result.IsValid())
	assert.Contains(t, warningCodes(result), CodeGearSharingConflict)
}
