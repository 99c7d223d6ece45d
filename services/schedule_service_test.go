package services

import (
	"testing"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gPtr(g models.Gender) *models.Gender { return &g }

func weekendEvents() []*models.Event {
	return []*models.Event{
		// College.
		{ID: 1, Name: "Birling", EventType: models.EventCollege, Gender: gPtr(models.GenderMale)},
		{ID: 2, Name: "Axe Throw", EventType: models.EventCollege, IsOpen: true},
		{ID: 3, Name: "Underhand Speed", EventType: models.EventCollege, Gender: gPtr(models.GenderMale)},
		{ID: 4, Name: "Underhand Speed", EventType: models.EventCollege, Gender: gPtr(models.GenderFemale)},
		{ID: 5, Name: "1-Board Springboard", EventType: models.EventCollege, Gender: gPtr(models.GenderMale)},
		{ID: 6, Name: "1-Board Springboard", EventType: models.EventCollege, Gender: gPtr(models.GenderFemale)},
		{ID: 7, Name: "Standing Block Speed", EventType: models.EventCollege, Gender: gPtr(models.GenderMale)},
		{ID: 8, Name: "Standing Block Hard Hit", EventType: models.EventCollege, Gender: gPtr(models.GenderFemale)},
		{ID: 9, Name: "Chokerman's Race", EventType: models.EventCollege, Gender: gPtr(models.GenderMale), RequiresDualRuns: true},
		// Pro.
		{ID: 20, Name: "Springboard", EventType: models.EventPro},
		{ID: 21, Name: "Pro 1-Board", EventType: models.EventPro},
		{ID: 22, Name: "3-Board Jigger", EventType: models.EventPro},
		{ID: 23, Name: "Hot Saw", EventType: models.EventPro},
		{ID: 24, Name: "Single Buck", EventType: models.EventPro, Gender: gPtr(models.GenderMale)},
		{ID: 25, Name: "Underhand", EventType: models.EventPro, Gender: gPtr(models.GenderMale)},
	}
}

func slotEventIDs(slots []ScheduleSlot) []int {
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.EventID)
	}
	return out
}

func TestBuildScheduleFridayDayOrdering(t *testing.T) {
	schedule := BuildSchedule(weekendEvents(), nil, []int{7, 8})

	// Open list events lead, men before women within an event, Birling holds
	// the pond until last. Saturday picks and the feature springboard are out.
	assert.Equal(t, []int{2, 3, 4, 9, 1}, slotEventIDs(schedule.FridayDay))

	require.NotEmpty(t, schedule.FridayDay)
	assert.Equal(t, 1, schedule.FridayDay[0].Slot)
	assert.Equal(t, "Men's Underhand Speed", schedule.FridayDay[1].Label)
}

func TestBuildScheduleFridayFeatureDefaults(t *testing.T) {
	schedule := BuildSchedule(weekendEvents(), nil, nil)

	// Collegiate springboard opens the feature, then the default pro boards.
	assert.Equal(t, []int{5, 6, 21, 22}, slotEventIDs(schedule.FridayFeature))
}

func TestBuildScheduleFridayFeatureOperatorPicks(t *testing.T) {
	schedule := BuildSchedule(weekendEvents(), []int{23}, nil)

	assert.Equal(t, []int{5, 6, 23}, slotEventIDs(schedule.FridayFeature))

	// A Friday pick never reappears in the Saturday show.
	for _, slot := range schedule.SaturdayShow {
		assert.NotEqual(t, 23, slot.EventID)
	}
}

func TestBuildScheduleSaturdayInterleavesSpillover(t *testing.T) {
	schedule := BuildSchedule(weekendEvents(), nil, []int{7, 8})

	// Pro events in catalog order with a college spillover event every third
	// slot, then the Chokerman's Race second run closes the show.
	assert.Equal(t, []int{20, 25, 7, 23, 24, 8, 9}, slotEventIDs(schedule.SaturdayShow))

	last := schedule.SaturdayShow[len(schedule.SaturdayShow)-1]
	assert.Equal(t, 2, last.RunNumber)
	assert.Equal(t, 7, last.Slot)
	assert.Contains(t, last.Label, "Run 2")
}

func TestBuildScheduleSpilloverPriority(t *testing.T) {
	// Men's Standing Block Speed outranks Women's Standing Block Hard Hit in
	// the spillover order.
	schedule := BuildSchedule(weekendEvents(), nil, []int{8, 7})

	var spill []int
	for _, slot := range schedule.SaturdayShow {
		if slot.EventType == models.EventCollege && slot.RunNumber == 1 {
			spill = append(spill, slot.EventID)
		}
	}
	assert.Equal(t, []int{7, 8}, spill)
}
