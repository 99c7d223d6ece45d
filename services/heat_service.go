package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// HeatEntry is one competitor eligible for an event's heats.
type HeatEntry struct {
	CompetitorID int
	Name         string
	Gender       models.Gender
	GearSharing  map[string]string
	IsLeftHanded bool
	PartnerID    *int
}

// heatUnit is the placement unit: a single competitor, or a pair that
// competes together and always lands in the same heat on one stand.
type heatUnit struct {
	members []HeatEntry
}

func (u heatUnit) leftHanded() bool {
	for _, m := range u.members {
		if m.IsLeftHanded {
			return true
		}
	}
	return false
}

// gearToken returns the sharing token a unit carries for this event, or ""
// when its gear is not shared outside the unit.
func (u heatUnit) gearToken(event *models.Event) string {
	keys := []string{strconv.Itoa(event.ID), normalizeName(event.Name)}
	if event.StandType != nil {
		if cat := gearCategoryForStandType(*event.StandType); cat != "" {
			keys = append(keys, cat)
		}
	}
	for _, m := range u.members {
		for _, key := range keys {
			if tok, ok := m.GearSharing[key]; ok && tok != "" {
				return tok
			}
		}
	}
	return ""
}

// hasMemberNamed reports whether a gear value names one of the unit's members.
func (u heatUnit) hasMemberNamed(gearValue string) bool {
	norm := normalizeName(gearValue)
	for _, m := range u.members {
		if normalizeName(m.Name) == norm {
			return true
		}
	}
	return false
}

// gearCategoryForStandType maps stand types to the gear vocabulary used on
// registration forms.
func gearCategoryForStandType(standType string) string {
	switch standType {
	case "saw_hand":
		return "crosscut"
	case "stock_saw", "hot_saw":
		return "chainsaw"
	}
	return ""
}

// heatCapacity is how many units one heat of this event holds.
func heatCapacity(event *models.Event) int {
	capacity := 1
	if event.StandType != nil {
		if cfg, ok := config.StandConfigs[*event.StandType]; ok {
			capacity = cfg.Total
		}
		// Crosscut stands run in banks of four; college Stock Saw uses only
		// the two back stands.
		if *event.StandType == "saw_hand" {
			capacity = 4
		}
		if *event.StandType == "stock_saw" && event.EventType == models.EventCollege {
			capacity = len(config.CollegeStockSawStands)
		}
	}
	if event.MaxStands != nil && *event.MaxStands < capacity {
		capacity = *event.MaxStands
	}
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}

// standNumbers returns the physical stand numbers a heat of this event uses,
// in assignment order.
func standNumbers(event *models.Event, heatNumber, capacity int) []int {
	if event.StandType == nil {
		return sequence(1, capacity)
	}
	if *event.StandType == "stock_saw" && event.EventType == models.EventCollege {
		return append([]int(nil), config.CollegeStockSawStands...)
	}
	cfg, ok := config.StandConfigs[*event.StandType]
	if !ok {
		return sequence(1, capacity)
	}
	if len(cfg.Groups) > 0 {
		// Alternate stand banks between heats so crews can reset logs.
		group := cfg.Groups[(heatNumber-1)%len(cfg.Groups)]
		return append([]int(nil), group...)
	}
	if len(cfg.SpecificStands) > 0 {
		return append([]int(nil), cfg.SpecificStands...)
	}
	return sequence(1, cfg.Total)
}

func sequence(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// IsListOnlyEvent reports whether a college event runs from a sign-up list
// and therefore gets no heats.
func IsListOnlyEvent(event *models.Event) bool {
	if event.EventType != models.EventCollege {
		return false
	}
	for _, name := range config.ListOnlyCollegeEvents {
		if normalizeName(name) == normalizeName(event.Name) {
			return true
		}
	}
	return false
}

// GenerateHeats splits the entrants into balanced heats via a snake draft,
// keeping gear-sharing competitors apart and spreading left-handed
// springboard choppers one per heat. Dual-run events get a mirrored second
// run with the stand order reversed.
func GenerateHeats(event *models.Event, entries []HeatEntry) ([]*models.Heat, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntrants
	}

	units, err := buildUnits(event, entries)
	if err != nil {
		return nil, err
	}

	capacity := heatCapacity(event)
	numHeats := (len(units) + capacity - 1) / capacity

	heats := make([][]heatUnit, numHeats)
	remaining := units

	// Left-handed springboard choppers go first, one per heat, so every heat
	// has at most one stand rigged left.
	if event.StandType != nil && config.StandConfigs[*event.StandType].SupportsHandedness {
		var rest []heatUnit
		h := 0
		for _, u := range remaining {
			if u.leftHanded() && h < numHeats {
				heats[h] = append(heats[h], u)
				h++
				continue
			}
			rest = append(rest, u)
		}
		remaining = rest
	}

	placeUnits(event, heats, remaining, capacity)

	out := make([]*models.Heat, 0, numHeats)
	for i, units := range heats {
		heat := &models.Heat{
			EventID:          event.ID,
			HeatNumber:       i + 1,
			RunNumber:        1,
			StandAssignments: map[int]int{},
			Status:           models.StatusPending,
		}
		stands := standNumbers(event, i+1, capacity)
		for j, u := range units {
			for _, m := range u.members {
				heat.Competitors = append(heat.Competitors, m.CompetitorID)
				if j < len(stands) {
					heat.StandAssignments[m.CompetitorID] = stands[j]
				}
			}
		}
		out = append(out, heat)
	}

	if event.RequiresDualRuns {
		out = append(out, mirrorRun(event, out, capacity)...)
	}
	return out, nil
}

// buildUnits groups partnered entrants into pairs, preserving entry order.
func buildUnits(event *models.Event, entries []HeatEntry) ([]heatUnit, error) {
	if !event.IsPartnered {
		units := make([]heatUnit, len(entries))
		for i, e := range entries {
			units[i] = heatUnit{members: []HeatEntry{e}}
		}
		return units, nil
	}

	byID := make(map[int]HeatEntry, len(entries))
	for _, e := range entries {
		byID[e.CompetitorID] = e
	}

	used := make(map[int]bool, len(entries))
	var units []heatUnit
	for _, e := range entries {
		if used[e.CompetitorID] {
			continue
		}
		if e.PartnerID == nil {
			return nil, fmt.Errorf("%w: %s has no partner for %s", ErrValidationFailed, e.Name, event.Name)
		}
		partner, ok := byID[*e.PartnerID]
		if !ok || used[partner.CompetitorID] {
			return nil, fmt.Errorf("%w: partner of %s is not entered in %s", ErrValidationFailed, e.Name, event.Name)
		}
		used[e.CompetitorID] = true
		used[partner.CompetitorID] = true
		units = append(units, heatUnit{members: []HeatEntry{e, partner}})
	}
	return units, nil
}

// placeUnits runs the snake draft. The heat index stays put while the current
// heat has room and no gear conflict, and otherwise advances along the snake
// sequence; if no heat is conflict-free the unit falls back to the first heat
// with room.
func placeUnits(event *models.Event, heats [][]heatUnit, units []heatUnit, capacity int) {
	numHeats := len(heats)
	pos := 0
	for _, u := range units {
		placed := false
		for try := 0; try < 2*numHeats; try++ {
			h := snakeIndex(pos, numHeats)
			if len(heats[h]) < capacity && !hasGearConflict(event, heats[h], u) {
				heats[h] = append(heats[h], u)
				placed = true
				break
			}
			pos++
		}
		if placed {
			continue
		}
		for h := 0; h < numHeats; h++ {
			if len(heats[h]) < capacity {
				heats[h] = append(heats[h], u)
				break
			}
		}
	}
}

// snakeIndex maps draft position i onto heats serpentine-style:
// 0,1,...,n-1,n-1,...,1,0,0,1,...
func snakeIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	cycle := i % (2 * n)
	if cycle < n {
		return cycle
	}
	return 2*n - 1 - cycle
}

// hasGearConflict reports whether the candidate shares gear with anyone
// already in the heat. Registration forms carry either a group token both
// competitors write down, or the other competitor's name, so both shapes are
// checked in both directions.
func hasGearConflict(event *models.Event, heat []heatUnit, candidate heatUnit) bool {
	token := candidate.gearToken(event)
	for _, u := range heat {
		other := u.gearToken(event)
		if token != "" && other != "" && normalizeName(token) == normalizeName(other) {
			return true
		}
		if token != "" && u.hasMemberNamed(token) {
			return true
		}
		if other != "" && candidate.hasMemberNamed(other) {
			return true
		}
	}
	return false
}

// mirrorRun builds the run-2 heats for dual-run events: the same heats with
// stand order reversed so nobody draws the same lane twice.
func mirrorRun(event *models.Event, run1 []*models.Heat, capacity int) []*models.Heat {
	out := make([]*models.Heat, 0, len(run1))
	for _, h := range run1 {
		stands := standNumbers(event, h.HeatNumber, capacity)
		reversed := make([]int, len(stands))
		for i, s := range stands {
			reversed[len(stands)-1-i] = s
		}

		mirror := &models.Heat{
			EventID:          event.ID,
			HeatNumber:       h.HeatNumber,
			RunNumber:        2,
			Competitors:      append([]int(nil), h.Competitors...),
			StandAssignments: map[int]int{},
			Status:           models.StatusPending,
		}
		// Map each competitor's run-1 stand position to its mirror.
		position := map[int]int{}
		for i, s := range stands {
			position[s] = i
		}
		for _, id := range h.Competitors {
			if s, ok := h.StandAssignments[id]; ok {
				mirror.StandAssignments[id] = reversed[position[s]]
			}
		}
		out = append(out, mirror)
	}
	return out
}

// HeatService generates and persists heats for an event.
type HeatService struct {
	db      *sql.DB
	events  repositories.EventRepository
	heats   repositories.HeatRepository
	results repositories.ResultRepository
	college repositories.CollegeCompetitorRepository
	pros    repositories.ProCompetitorRepository
	audit   *AuditService
	logger  *slog.Logger
}

func NewHeatService(
	db *sql.DB,
	events repositories.EventRepository,
	heats repositories.HeatRepository,
	results repositories.ResultRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	audit *AuditService,
	logger *slog.Logger,
) *HeatService {
	return &HeatService{
		db:      db,
		events:  events,
		heats:   heats,
		results: results,
		college: college,
		pros:    pros,
		audit:   audit,
		logger:  logger,
	}
}

// GenerateForEvent rebuilds the event's heats from its current entrants.
// Existing heats for the event are replaced.
func (s *HeatService) GenerateForEvent(ctx context.Context, rc *models.RequestContext, eventID int) ([]*models.Heat, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	if IsListOnlyEvent(event) {
		return nil, fmt.Errorf("%w: %s runs from a sign-up list", ErrValidationFailed, event.Name)
	}

	entries, inferred, competitorType, err := s.entriesForEvent(ctx, event)
	if err != nil {
		return nil, err
	}

	heats, err := GenerateHeats(event, entries)
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.heats.DeleteByEvent(ctx, tx, eventID); err != nil {
			return err
		}
		for _, heat := range heats {
			if err := s.heats.Create(ctx, tx, heat, competitorType); err != nil {
				return err
			}
		}
		// Entrants picked up from events_entered get a pending result row so
		// the scoring sheet lists them before any score comes in.
		for _, e := range inferred {
			res := &models.EventResult{
				EventID:        eventID,
				CompetitorID:   e.CompetitorID,
				CompetitorType: competitorType,
				CompetitorName: e.Name,
				Status:         models.StatusPending,
			}
			if err := s.results.Create(ctx, tx, res); err != nil {
				return err
			}
		}
		if err := s.events.UpdateStatus(ctx, tx, eventID, models.StatusInProgress); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "heats.generate", "event", &eventID, map[string]interface{}{
			"event":    event.DisplayName(),
			"heats":    len(heats),
			"entrants": len(entries),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("heats generated",
		"event_id", eventID, "event", event.DisplayName(),
		"heats", len(heats), "entrants", len(entries))
	return heats, nil
}

func (s *HeatService) ListForEvent(ctx context.Context, eventID int) ([]*models.Heat, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, mapEventRepoError(err)
	}
	return s.heats.ListByEvent(ctx, eventID)
}

// entriesForEvent pulls the entrants of an event and resolves partner links
// by name. Existing result rows are authoritative: a competitor with a live
// result row is in regardless of the events_entered list, and one whose row
// is scratched stays out. Competitors matched only through events_entered are
// returned separately so the caller can create their pending result rows.
func (s *HeatService) entriesForEvent(ctx context.Context, event *models.Event) ([]HeatEntry, []HeatEntry, models.CompetitorType, error) {
	key := normalizeName(event.Name)

	results, err := s.results.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, nil, "", err
	}
	resultStatus := make(map[int]string, len(results))
	for _, res := range results {
		resultStatus[res.CompetitorID] = res.Status
	}

	if event.EventType == models.EventCollege {
		competitors, err := s.college.ListByTournament(ctx, event.TournamentID, activeOnly())
		if err != nil {
			return nil, nil, "", err
		}
		byName := make(map[string]int, len(competitors))
		for _, c := range competitors {
			byName[c.Name] = c.ID
		}

		var entries, inferred []HeatEntry
		for _, c := range competitors {
			status, hasResult := resultStatus[c.ID]
			if hasResult && status == models.StatusScratched {
				continue
			}
			if !hasResult {
				if !entersEvent(c.EventsEntered, event, key) {
					continue
				}
				if event.Gender != nil && c.Gender != *event.Gender {
					continue
				}
			}
			entry := HeatEntry{
				CompetitorID: c.ID,
				Name:         c.Name,
				Gender:       c.Gender,
				GearSharing:  c.GearSharing,
			}
			if partnerName := partnerFor(c.Partners, event, key); partnerName != "" {
				if id, ok := byName[partnerName]; ok {
					entry.PartnerID = &id
				}
			}
			entries = append(entries, entry)
			if !hasResult {
				inferred = append(inferred, entry)
			}
		}
		return entries, inferred, models.CompetitorCollege, nil
	}

	competitors, err := s.pros.ListByTournament(ctx, event.TournamentID, activeOnly())
	if err != nil {
		return nil, nil, "", err
	}
	byName := make(map[string]int, len(competitors))
	for _, c := range competitors {
		byName[c.Name] = c.ID
	}

	var entries, inferred []HeatEntry
	for _, c := range competitors {
		status, hasResult := resultStatus[c.ID]
		if hasResult && status == models.StatusScratched {
			continue
		}
		if !hasResult {
			if !entersEvent(c.EventsEntered, event, key) {
				continue
			}
			if event.Gender != nil && c.Gender != *event.Gender {
				continue
			}
		}
		entry := HeatEntry{
			CompetitorID: c.ID,
			Name:         c.Name,
			Gender:       c.Gender,
			GearSharing:  c.GearSharing,
			IsLeftHanded: c.IsLeftHandedSpringboard,
		}
		if partnerName := partnerFor(c.Partners, event, key); partnerName != "" {
			if id, ok := byName[partnerName]; ok {
				entry.PartnerID = &id
			}
		}
		entries = append(entries, entry)
		if !hasResult {
			inferred = append(inferred, entry)
		}
	}
	return entries, inferred, models.CompetitorPro, nil
}

// entersEvent matches an events_entered value by event id or normalized name,
// the same keys partnerFor accepts. A nil event matches by name only.
func entersEvent(eventsEntered []string, event *models.Event, normalizedEvent string) bool {
	for _, name := range eventsEntered {
		if event != nil && name == strconv.Itoa(event.ID) {
			return true
		}
		if normalizeName(name) == normalizedEvent {
			return true
		}
	}
	return false
}

// partnerFor looks up a competitor's declared partner for an event, keyed by
// event id, normalized name, or raw name.
func partnerFor(partners map[string]string, event *models.Event, key string) string {
	if name, ok := partners[strconv.Itoa(event.ID)]; ok {
		return name
	}
	for k, name := range partners {
		if normalizeName(k) == key {
			return name
		}
	}
	return ""
}

func mapEventRepoError(err error) error {
	if errors.Is(err, repositories.ErrEventNotFound) {
		return ErrEventNotFound
	}
	return err
}
