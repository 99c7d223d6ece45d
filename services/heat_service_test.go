package services

import (
	"fmt"
	"testing"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func singles(n int) []HeatEntry {
	out := make([]HeatEntry, n)
	for i := 0; i < n; i++ {
		out[i] = HeatEntry{CompetitorID: i + 1, Name: fmt.Sprintf("Competitor %d", i+1), Gender: models.GenderMale}
	}
	return out
}

func TestGenerateHeatsFillsInOrder(t *testing.T) {
	event := &models.Event{ID: 1, Name: "Single Buck", EventType: models.EventPro, StandType: strPtr("saw_hand")}

	heats, err := GenerateHeats(event, singles(17))
	require.NoError(t, err)
	require.Len(t, heats, 5)

	sizes := make([]int, len(heats))
	for i, h := range heats {
		sizes[i] = len(h.Competitors)
		assert.Equal(t, i+1, h.HeatNumber)
		assert.Equal(t, 1, h.RunNumber)
	}
	assert.Equal(t, []int{4, 4, 4, 4, 1}, sizes)

	// Entry order carries straight through when nothing conflicts.
	assert.Equal(t, []int{1, 2, 3, 4}, heats[0].Competitors)
	assert.Equal(t, []int{17}, heats[4].Competitors)
}

func TestGenerateHeatsNoEntrants(t *testing.T) {
	event := &models.Event{ID: 1, Name: "Underhand Speed", EventType: models.EventCollege, StandType: strPtr("underhand")}
	_, err := GenerateHeats(event, nil)
	assert.ErrorIs(t, err, ErrNoEntrants)
}

func TestGenerateHeatsGearSharingAvoidance(t *testing.T) {
	event := &models.Event{ID: 3, Name: "Single Buck", EventType: models.EventCollege, StandType: strPtr("saw_hand")}

	entries := singles(8)
	// Competitors 1 and 2 share a crosscut saw; 5 and 6 share another.
	entries[0].GearSharing = map[string]string{"crosscut": "saw-alpha"}
	entries[1].GearSharing = map[string]string{"crosscut": "saw-alpha"}
	entries[4].GearSharing = map[string]string{"crosscut": "saw-bravo"}
	entries[5].GearSharing = map[string]string{"crosscut": "saw-bravo"}

	heats, err := GenerateHeats(event, entries)
	require.NoError(t, err)
	require.Len(t, heats, 2)

	heatOf := map[int]int{}
	for _, h := range heats {
		for _, id := range h.Competitors {
			heatOf[id] = h.HeatNumber
		}
	}
	assert.NotEqual(t, heatOf[1], heatOf[2], "shared saw must split across heats")
	assert.NotEqual(t, heatOf[5], heatOf[6], "shared saw must split across heats")
}

func TestGenerateHeatsGearSharingByMutualName(t *testing.T) {
	event := &models.Event{ID: 3, Name: "Single Buck", EventType: models.EventCollege, StandType: strPtr("saw_hand")}

	entries := singles(8)
	// Registration forms often name the saw's other user instead of a token.
	entries[0].GearSharing = map[string]string{"crosscut": "Competitor 2"}
	entries[1].GearSharing = map[string]string{"crosscut": "Competitor 1"}

	heats, err := GenerateHeats(event, entries)
	require.NoError(t, err)
	require.Len(t, heats, 2)

	heatOf := map[int]int{}
	for _, h := range heats {
		for _, id := range h.Competitors {
			heatOf[id] = h.HeatNumber
		}
	}
	assert.NotEqual(t, heatOf[1], heatOf[2], "competitors naming each other must split across heats")
}

func TestGenerateHeatsGearSharingOneSidedName(t *testing.T) {
	event := &models.Event{ID: 3, Name: "Single Buck", EventType: models.EventCollege, StandType: strPtr("saw_hand")}

	entries := singles(8)
	// Only one side declared the sharing; the split still has to happen.
	entries[0].GearSharing = map[string]string{"crosscut": "Competitor 2"}

	heats, err := GenerateHeats(event, entries)
	require.NoError(t, err)
	require.Len(t, heats, 2)

	heatOf := map[int]int{}
	for _, h := range heats {
		for _, id := range h.Competitors {
			heatOf[id] = h.HeatNumber
		}
	}
	assert.NotEqual(t, heatOf[1], heatOf[2], "a one-sided declaration must still split the pair")
}

func TestGenerateHeatsSpringboardLeftHanders(t *testing.T) {
	event := &models.Event{ID: 4, Name: "Springboard", EventType: models.EventPro, StandType: strPtr("springboard")}

	entries := singles(12) // capacity 4 -> 3 heats
	entries[2].IsLeftHanded = true
	entries[7].IsLeftHanded = true
	entries[11].IsLeftHanded = true

	heats, err := GenerateHeats(event, entries)
	require.NoError(t, err)
	require.Len(t, heats, 3)

	for _, h := range heats {
		lefties := 0
		for _, id := range h.Competitors {
			if id == 3 || id == 8 || id == 12 {
				lefties++
			}
		}
		assert.Equal(t, 1, lefties, "heat %d", h.HeatNumber)
	}
}

func TestGenerateHeatsCollegeStockSawStands(t *testing.T) {
	event := &models.Event{ID: 5, Name: "Stock Saw", EventType: models.EventCollege, StandType: strPtr("stock_saw")}

	heats, err := GenerateHeats(event, singles(5))
	require.NoError(t, err)
	require.Len(t, heats, 3)

	for _, h := range heats {
		for _, id := range h.Competitors {
			stand := h.StandAssignments[id]
			assert.Contains(t, []int{7, 8}, stand)
		}
	}
}

func TestGenerateHeatsPartneredPairsStayTogether(t *testing.T) {
	event := &models.Event{ID: 6, Name: "Double Buck", EventType: models.EventCollege, StandType: strPtr("saw_hand"), IsPartnered: true}

	entries := singles(8)
	for i := 0; i < 8; i += 2 {
		a, b := entries[i].CompetitorID, entries[i+1].CompetitorID
		entries[i].PartnerID = &b
		entries[i+1].PartnerID = &a
	}

	heats, err := GenerateHeats(event, entries)
	require.NoError(t, err)
	require.Len(t, heats, 1) // 4 pairs, capacity 4 units

	require.Len(t, heats[0].Competitors, 8)
	for i := 0; i < 8; i += 2 {
		a, b := entries[i].CompetitorID, entries[i+1].CompetitorID
		assert.Equal(t, heats[0].StandAssignments[a], heats[0].StandAssignments[b], "pair shares a stand")
	}
}

func TestGenerateHeatsPartneredMissingPartner(t *testing.T) {
	event := &models.Event{ID: 7, Name: "Jack & Jill Sawing", EventType: models.EventCollege, StandType: strPtr("saw_hand"), IsPartnered: true}

	entries := singles(2)
	missing := 99
	entries[0].PartnerID = &missing
	_, err := GenerateHeats(event, entries)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerateHeatsDualRunMirrorsStands(t *testing.T) {
	event := &models.Event{ID: 8, Name: "Speed Climb", EventType: models.EventCollege, StandType: strPtr("speed_climb"), RequiresDualRuns: true}

	heats, err := GenerateHeats(event, singles(4))
	require.NoError(t, err)
	require.Len(t, heats, 4) // 2 heats x 2 runs

	var run1, run2 []*models.Heat
	for _, h := range heats {
		if h.RunNumber == 1 {
			run1 = append(run1, h)
		} else {
			run2 = append(run2, h)
		}
	}
	require.Len(t, run1, 2)
	require.Len(t, run2, 2)

	for i := range run1 {
		assert.Equal(t, run1[i].Competitors, run2[i].Competitors)
		for _, id := range run1[i].Competitors {
			s1 := run1[i].StandAssignments[id]
			s2 := run2[i].StandAssignments[id]
			assert.NotEqual(t, s1, s2, "competitor %d must swap courses between runs", id)
		}
	}
}

func TestIsListOnlyEvent(t *testing.T) {
	listOnly := &models.Event{Name: "Axe Throw", EventType: models.EventCollege}
	assert.True(t, IsListOnlyEvent(listOnly))

	heated := &models.Event{Name: "Underhand Speed", EventType: models.EventCollege}
	assert.False(t, IsListOnlyEvent(heated))

	proAxe := &models.Event{Name: "Axe Throw", EventType: models.EventPro}
	assert.False(t, IsListOnlyEvent(proAxe))
}

func TestEntersEventMatchesIDOrName(t *testing.T) {
	event := &models.Event{ID: 42, Name: "Single Buck"}
	key := normalizeName(event.Name)

	assert.True(t, entersEvent([]string{"Single Buck"}, event, key))
	assert.True(t, entersEvent([]string{"single  buck"}, event, key))
	assert.True(t, entersEvent([]string{"42"}, event, key), "imports store event ids")
	assert.False(t, entersEvent([]string{"43"}, event, key))
	assert.False(t, entersEvent([]string{"Hot Saw"}, event, key))
	assert.False(t, entersEvent([]string{"42"}, nil, key))
}

func TestSnakeIndex(t *testing.T) {
	want := []int{0, 1, 2, 2, 1, 0, 0, 1}
	for i, w := range want {
		assert.Equal(t, w, snakeIndex(i, 3), "position %d", i)
	}
	assert.Equal(t, 0, snakeIndex(5, 1))
}
