package services

import (
	"context"
	"sort"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// ScheduleSlot is one entry in an ordered schedule block.
type ScheduleSlot struct {
	Slot      int              `json:"slot"`
	EventID   int              `json:"event_id"`
	Label     string           `json:"label"`
	EventType models.EventType `json:"event_type"`
	StandType *string          `json:"stand_type,omitempty"`
	RunNumber int              `json:"run_number"`
}

// Schedule is the three ordered blocks of a tournament weekend.
type Schedule struct {
	FridayDay     []ScheduleSlot `json:"friday_day"`
	FridayFeature []ScheduleSlot `json:"friday_feature"`
	SaturdayShow  []ScheduleSlot `json:"saturday_show"`
}

// fridayFeatureCollege is the collegiate event run under the Friday lights.
const fridayFeatureCollege = "1-Board Springboard"

// defaultFridayProEvents run in the Friday feature when the operator picks
// none explicitly.
var defaultFridayProEvents = []string{"Pro 1-Board", "3-Board Jigger"}

// saturdaySpillover orders operator-selected college events pushed into the
// Saturday show.
var saturdaySpillover = []struct {
	Name   string
	Gender models.Gender
}{
	{"Standing Block Speed", models.GenderMale},
	{"Standing Block Hard Hit", models.GenderMale},
	{"Standing Block Speed", models.GenderFemale},
	{"Standing Block Hard Hit", models.GenderFemale},
	{"Obstacle Pole", models.GenderMale},
}

func collegeRank(name string) int {
	key := normalizeName(name)
	for i, seed := range config.CollegeOpenEvents {
		if normalizeName(seed.Name) == key {
			return i
		}
	}
	for i, seed := range config.CollegeClosedEvents {
		if normalizeName(seed.Name) == key {
			return len(config.CollegeOpenEvents) + i
		}
	}
	return len(config.CollegeOpenEvents) + len(config.CollegeClosedEvents) + 100
}

func proRank(name string) int {
	key := normalizeName(name)
	for i, seed := range config.ProEvents {
		if normalizeName(seed.Name) == key {
			return i
		}
	}
	return len(config.ProEvents) + 100
}

func genderRank(g *models.Gender) int {
	if g != nil && *g == models.GenderFemale {
		return 1
	}
	return 0
}

func spilloverRank(e *models.Event) int {
	key := normalizeName(e.Name)
	for i, s := range saturdaySpillover {
		if normalizeName(s.Name) == key && e.Gender != nil && *e.Gender == s.Gender {
			return i
		}
	}
	return len(saturdaySpillover) + 100
}

// BuildSchedule partitions a tournament's events into the Friday day block,
// the Friday evening feature, and the Saturday show.
func BuildSchedule(events []*models.Event, fridayProEventIDs, saturdayCollegeEventIDs []int) *Schedule {
	fridayPro := map[int]bool{}
	for _, id := range fridayProEventIDs {
		fridayPro[id] = true
	}
	saturdayCollege := map[int]bool{}
	for _, id := range saturdayCollegeEventIDs {
		saturdayCollege[id] = true
	}

	var college, pro []*models.Event
	for _, e := range events {
		if e.EventType == models.EventCollege {
			college = append(college, e)
		} else {
			pro = append(pro, e)
		}
	}

	schedule := &Schedule{}

	// Friday day: college events not pushed to Saturday, Birling capping the
	// day, open list events first, then canonical order, men before women.
	var day []*models.Event
	var feature []*models.Event
	for _, e := range college {
		if saturdayCollege[e.ID] {
			continue
		}
		if normalizeName(e.Name) == normalizeName(fridayFeatureCollege) {
			feature = append(feature, e)
			continue
		}
		day = append(day, e)
	}
	sort.SliceStable(day, func(i, j int) bool {
		a, b := day[i], day[j]
		aBirling := normalizeName(a.Name) == "birling"
		bBirling := normalizeName(b.Name) == "birling"
		if aBirling != bBirling {
			return bBirling
		}
		if a.IsOpen != b.IsOpen {
			return a.IsOpen
		}
		if ra, rb := collegeRank(a.Name), collegeRank(b.Name); ra != rb {
			return ra < rb
		}
		return genderRank(a.Gender) < genderRank(b.Gender)
	})
	schedule.FridayDay = toSlots(day, 1)

	// Friday feature: the collegiate springboard, then the operator's pro
	// picks (or the default boards) in canonical order.
	sort.SliceStable(feature, func(i, j int) bool {
		return genderRank(feature[i].Gender) < genderRank(feature[j].Gender)
	})
	var featurePro []*models.Event
	for _, e := range pro {
		if fridayPro[e.ID] {
			featurePro = append(featurePro, e)
			continue
		}
		if len(fridayProEventIDs) == 0 {
			for _, name := range defaultFridayProEvents {
				if normalizeName(e.Name) == normalizeName(name) {
					featurePro = append(featurePro, e)
					fridayPro[e.ID] = true
				}
			}
		}
	}
	sort.SliceStable(featurePro, func(i, j int) bool {
		return proRank(featurePro[i].Name) < proRank(featurePro[j].Name)
	})
	schedule.FridayFeature = toSlots(append(feature, featurePro...), 1)

	// Saturday show: remaining pro events in canonical order, college
	// spillover dealt in every third slot, Chokerman's Race second runs last.
	var show []*models.Event
	for _, e := range pro {
		if !fridayPro[e.ID] {
			show = append(show, e)
		}
	}
	sort.SliceStable(show, func(i, j int) bool {
		return proRank(show[i].Name) < proRank(show[j].Name)
	})

	var spill []*models.Event
	for _, e := range college {
		if saturdayCollege[e.ID] {
			spill = append(spill, e)
		}
	}
	sort.SliceStable(spill, func(i, j int) bool {
		return spilloverRank(spill[i]) < spilloverRank(spill[j])
	})

	var mixed []*models.Event
	pi, ci := 0, 0
	for pi < len(show) || ci < len(spill) {
		slot := len(mixed) + 1
		if ci < len(spill) && (slot%3 == 0 || pi >= len(show)) {
			mixed = append(mixed, spill[ci])
			ci++
			continue
		}
		mixed = append(mixed, show[pi])
		pi++
	}
	schedule.SaturdayShow = toSlots(mixed, 1)

	// Dual-run Chokerman's Race closes the show with its second run.
	for _, e := range college {
		if normalizeName(e.Name) == normalizeName("Chokerman's Race") && e.RequiresDualRuns {
			schedule.SaturdayShow = append(schedule.SaturdayShow, ScheduleSlot{
				Slot:      len(schedule.SaturdayShow) + 1,
				EventID:   e.ID,
				Label:     e.DisplayName() + " (Run 2)",
				EventType: e.EventType,
				StandType: e.StandType,
				RunNumber: 2,
			})
		}
	}

	return schedule
}

func toSlots(events []*models.Event, startSlot int) []ScheduleSlot {
	out := make([]ScheduleSlot, 0, len(events))
	for i, e := range events {
		out = append(out, ScheduleSlot{
			Slot:      startSlot + i,
			EventID:   e.ID,
			Label:     e.DisplayName(),
			EventType: e.EventType,
			StandType: e.StandType,
			RunNumber: 1,
		})
	}
	return out
}

// HydratedSlot is a schedule slot with its heats attached for display.
type HydratedSlot struct {
	ScheduleSlot
	Heats []*models.Heat `json:"heats,omitempty"`
}

// ScheduleService builds and hydrates tournament schedules.
type ScheduleService struct {
	events repositories.EventRepository
	heats  repositories.HeatRepository
}

func NewScheduleService(events repositories.EventRepository, heats repositories.HeatRepository) *ScheduleService {
	return &ScheduleService{events: events, heats: heats}
}

func (s *ScheduleService) Build(ctx context.Context, tournamentID int, fridayProEventIDs, saturdayCollegeEventIDs []int) (*Schedule, error) {
	events, err := s.events.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	return BuildSchedule(events, fridayProEventIDs, saturdayCollegeEventIDs), nil
}

// Hydrate attaches each slot's heats (matching the slot's run number).
func (s *ScheduleService) Hydrate(ctx context.Context, slots []ScheduleSlot) ([]HydratedSlot, error) {
	out := make([]HydratedSlot, 0, len(slots))
	for _, slot := range slots {
		hydrated := HydratedSlot{ScheduleSlot: slot}
		heats, err := s.heats.ListByEvent(ctx, slot.EventID)
		if err != nil {
			return nil, err
		}
		for _, h := range heats {
			if h.RunNumber == slot.RunNumber {
				hydrated.Heats = append(hydrated.Heats, h)
			}
		}
		out = append(out, hydrated)
	}
	return out, nil
}
