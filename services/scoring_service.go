package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// ScoreEntry is one competitor's raw value as keyed in from a heat sheet.
// Status may override to "dnf" or "scratched".
type ScoreEntry struct {
	CompetitorID int     `json:"competitor_id"`
	RawValue     string  `json:"raw_value"`
	Status       *string `json:"status,omitempty"`
}

// ParseScore converts a keyed-in value to a float. Empty and non-numeric
// strings fail so the caller can skip them.
func ParseScore(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable score %q", raw)
	}
	return v, nil
}

// ParsePayouts decodes a position→amount payout table. Returns nil for empty
// blobs and for blobs holding bracket or relay state instead of a table.
func ParsePayouts(blob string) map[int]float64 {
	if blob == "" || blob == "{}" {
		return nil
	}
	var raw map[string]float64
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil
	}
	out := make(map[int]float64, len(raw))
	for key, amount := range raw {
		pos, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[pos] = amount
	}
	return out
}

// RankResults assigns dense final positions to every rankable result and
// returns them in finishing order. Results without a value, or marked dnf or
// scratched, are left unranked.
func RankResults(results []*models.EventResult, scoringOrder string) []*models.EventResult {
	var ranked []*models.EventResult
	for _, r := range results {
		if r.ResultValue == nil || r.Status == models.StatusScratched || r.Status == models.StatusDNF {
			continue
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if scoringOrder == models.HighestWins {
			return *ranked[i].ResultValue > *ranked[j].ResultValue
		}
		return *ranked[i].ResultValue < *ranked[j].ResultValue
	})

	position := 0
	for i, r := range ranked {
		if i == 0 || *r.ResultValue != *ranked[i-1].ResultValue {
			position++
		}
		pos := position
		r.FinalPosition = &pos
	}
	return ranked
}

// FlagOutliers marks values more than two standard deviations from the mean.
// Needs at least three ranked values to say anything.
func FlagOutliers(ranked []*models.EventResult) {
	if len(ranked) < 3 {
		return
	}
	var sum float64
	for _, r := range ranked {
		sum += *r.ResultValue
	}
	mean := sum / float64(len(ranked))

	var variance float64
	for _, r := range ranked {
		d := *r.ResultValue - mean
		variance += d * d
	}
	sigma := math.Sqrt(variance / float64(len(ranked)))
	if sigma == 0 {
		return
	}

	for _, r := range ranked {
		if math.Abs(*r.ResultValue-mean) > 2*sigma {
			r.IsFlagged = true
		}
	}
}

// ApplyPlacements clears any prior placements and recomputes positions,
// placement points, payouts and outlier flags in place. Calling it again on
// the same results reproduces the same awards, never doubles them.
func ApplyPlacements(event *models.Event, results []*models.EventResult, payouts map[int]float64) {
	for _, r := range results {
		r.FinalPosition = nil
		r.PointsAwarded = 0
		r.PayoutAmount = 0
		r.IsFlagged = false
	}

	ranked := RankResults(results, event.ScoringOrder)
	for _, r := range ranked {
		if event.EventType == models.EventCollege {
			r.PointsAwarded = config.PlacementPoints[*r.FinalPosition]
		} else if payouts != nil {
			r.PayoutAmount = payouts[*r.FinalPosition]
		}
	}
	FlagOutliers(ranked)
}

// ScoringService records heat results and finalizes event placements.
type ScoringService struct {
	db      *sql.DB
	events  repositories.EventRepository
	heats   repositories.HeatRepository
	results repositories.ResultRepository
	college repositories.CollegeCompetitorRepository
	pros    repositories.ProCompetitorRepository
	teams   repositories.TeamRepository
	cache   cache.Cache
	audit   *AuditService
	logger  *slog.Logger
}

func NewScoringService(
	db *sql.DB,
	events repositories.EventRepository,
	heats repositories.HeatRepository,
	results repositories.ResultRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	teams repositories.TeamRepository,
	c cache.Cache,
	audit *AuditService,
	logger *slog.Logger,
) *ScoringService {
	return &ScoringService{
		db:      db,
		events:  events,
		heats:   heats,
		results: results,
		college: college,
		pros:    pros,
		teams:   teams,
		cache:   c,
		audit:   audit,
		logger:  logger,
	}
}

// SubmitHeat records raw values for one heat and marks it completed. The
// caller passes the heat version it scored against; a stale version is
// rejected so two judges cannot silently overwrite each other. Entries that
// had to be skipped come back as warnings so the judge sees what was dropped.
func (s *ScoringService) SubmitHeat(ctx context.Context, rc *models.RequestContext, heatID, version int, entries []ScoreEntry) (*models.Heat, []string, error) {
	heat, err := s.heats.GetByID(ctx, heatID)
	if err != nil {
		return nil, nil, mapScoringRepoError(err)
	}
	if heat.Version != version {
		return nil, nil, fmt.Errorf("%w: heat %d is at version %d, scored against %d",
			ErrVersionConflict, heatID, heat.Version, version)
	}

	event, err := s.events.GetByID(ctx, heat.EventID)
	if err != nil {
		return nil, nil, mapScoringRepoError(err)
	}
	if event.ScoringType == models.ScoringBracket {
		return nil, nil, fmt.Errorf("%w: %s is bracket-scored", ErrHeatNotScoreable, event.DisplayName())
	}

	competitorType := models.CompetitorCollege
	if event.EventType == models.EventPro {
		competitorType = models.CompetitorPro
	}

	vetted, warnings := vetScoreEntries(heat, entries)
	for _, w := range warnings {
		s.logger.Warn("score entry skipped", "heat_id", heatID, "reason", w)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, v := range vetted {
			if err := s.recordEntry(ctx, tx, event, heat, competitorType, v.entry, v.value, v.hasValue); err != nil {
				return err
			}
		}

		heat.Status = models.StatusCompleted
		if err := s.heats.Update(ctx, tx, heat, competitorType); err != nil {
			return mapScoringRepoError(err)
		}
		return s.audit.Log(ctx, tx, rc, "heat.score", "heat", &heatID, map[string]interface{}{
			"event_id": event.ID,
			"entries":  len(entries),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	cache.InvalidateTournament(s.cache, event.TournamentID)

	if !event.RequiresDualRuns {
		done, err := s.allHeatsCompleted(ctx, event.ID)
		if err != nil {
			return nil, nil, err
		}
		if done {
			if _, err := s.Finalize(ctx, rc, event.ID); err != nil {
				return nil, nil, err
			}
		}
	}
	return heat, warnings, nil
}

type vettedEntry struct {
	entry    ScoreEntry
	value    float64
	hasValue bool
}

// vetScoreEntries drops entries that cannot be recorded and says why, so the
// judge sees exactly which rows never made it onto the sheet.
func vetScoreEntries(heat *models.Heat, entries []ScoreEntry) ([]vettedEntry, []string) {
	inHeat := map[int]bool{}
	for _, id := range heat.Competitors {
		inHeat[id] = true
	}

	var vetted []vettedEntry
	var warnings []string
	for _, entry := range entries {
		if !inHeat[entry.CompetitorID] {
			warnings = append(warnings, fmt.Sprintf(
				"competitor %d is not in heat %d, entry skipped", entry.CompetitorID, heat.ID))
			continue
		}
		value, parseErr := ParseScore(entry.RawValue)
		if parseErr != nil && entry.Status == nil {
			warnings = append(warnings, fmt.Sprintf(
				"could not parse %q for competitor %d, entry skipped", entry.RawValue, entry.CompetitorID))
			continue
		}
		vetted = append(vetted, vettedEntry{entry: entry, value: value, hasValue: parseErr == nil})
	}
	return vetted, warnings
}

func (s *ScoringService) recordEntry(
	ctx context.Context,
	tx *sql.Tx,
	event *models.Event,
	heat *models.Heat,
	competitorType models.CompetitorType,
	entry ScoreEntry,
	value float64,
	hasValue bool,
) error {
	res, err := s.results.GetByCompetitor(ctx, event.ID, entry.CompetitorID, competitorType)
	switch {
	case errors.Is(err, repositories.ErrResultNotFound):
		name, nameErr := s.competitorName(ctx, competitorType, entry.CompetitorID)
		if nameErr != nil {
			return nameErr
		}
		res = &models.EventResult{
			EventID:        event.ID,
			CompetitorID:   entry.CompetitorID,
			CompetitorType: competitorType,
			CompetitorName: name,
			Status:         models.StatusPending,
		}
		if err := s.results.Create(ctx, tx, res); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	if hasValue {
		if event.RequiresDualRuns {
			if heat.RunNumber == 2 {
				res.Run2Value = &value
			} else {
				res.Run1Value = &value
			}
			res.ComputeBestRun(event.ScoringType)
		} else {
			res.ResultValue = &value
		}
	}
	if entry.Status != nil {
		res.Status = *entry.Status
	} else {
		res.Status = models.StatusCompleted
	}
	return mapScoringRepoError(s.results.Update(ctx, tx, res))
}

func (s *ScoringService) competitorName(ctx context.Context, competitorType models.CompetitorType, id int) (string, error) {
	if competitorType == models.CompetitorPro {
		c, err := s.pros.GetByID(ctx, id)
		if err != nil {
			return "", mapScoringRepoError(err)
		}
		return c.Name, nil
	}
	c, err := s.college.GetByID(ctx, id)
	if err != nil {
		return "", mapScoringRepoError(err)
	}
	return c.Name, nil
}

func (s *ScoringService) allHeatsCompleted(ctx context.Context, eventID int) (bool, error) {
	heats, err := s.heats.ListByEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	if len(heats) == 0 {
		return false, nil
	}
	for _, h := range heats {
		if h.Status != models.StatusCompleted {
			return false, nil
		}
	}
	return true, nil
}

// Finalize ranks an event's results, awards placement points or payouts, and
// marks the event completed. Safe to run again after corrections: prior
// awards are backed out before the new ones are applied.
func (s *ScoringService) Finalize(ctx context.Context, rc *models.RequestContext, eventID int) ([]*models.EventResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapScoringRepoError(err)
	}
	if event.ScoringType == models.ScoringBracket {
		return nil, fmt.Errorf("%w: %s finalizes through its bracket", ErrEventNotFinalizable, event.DisplayName())
	}

	results, err := s.results.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results recorded for %s", ErrEventNotFinalizable, event.DisplayName())
	}

	priorPoints := make(map[int]int, len(results))
	priorPayouts := make(map[int]float64, len(results))
	for _, r := range results {
		priorPoints[r.CompetitorID] = r.PointsAwarded
		priorPayouts[r.CompetitorID] = r.PayoutAmount
	}

	ApplyPlacements(event, results, ParsePayouts(event.Payouts))

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, r := range results {
			if err := s.results.Update(ctx, tx, r); err != nil {
				return mapScoringRepoError(err)
			}
		}

		if event.EventType == models.EventCollege {
			if err := s.settleCollegePoints(ctx, tx, event, results, priorPoints); err != nil {
				return err
			}
		} else {
			if err := s.settleProEarnings(ctx, tx, results, priorPayouts); err != nil {
				return err
			}
		}

		if err := s.events.UpdateStatus(ctx, tx, event.ID, models.StatusCompleted); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "event.finalize", "event", &event.ID, map[string]interface{}{
			"results": len(results),
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateTournament(s.cache, event.TournamentID)
	s.logger.Info("event finalized",
		"event_id", event.ID, "event", event.DisplayName(), "results", len(results))
	return results, nil
}

// settleCollegePoints replaces each competitor's prior award with the new one
// and recomputes every team total from its active members.
func (s *ScoringService) settleCollegePoints(
	ctx context.Context,
	tx *sql.Tx,
	event *models.Event,
	results []*models.EventResult,
	prior map[int]int,
) error {
	comps, err := s.college.ListByTournament(ctx, event.TournamentID, nil)
	if err != nil {
		return err
	}
	byID := make(map[int]*models.CollegeCompetitor, len(comps))
	for _, c := range comps {
		byID[c.ID] = c
	}

	for _, r := range results {
		comp, ok := byID[r.CompetitorID]
		if !ok {
			continue
		}
		points := comp.IndividualPoints - prior[r.CompetitorID] + r.PointsAwarded
		if points < 0 {
			points = 0
		}
		if points == comp.IndividualPoints {
			continue
		}
		comp.IndividualPoints = points
		if err := s.college.UpdateIndividualPoints(ctx, tx, comp.ID, points); err != nil {
			return err
		}
	}

	totals := map[int]int{}
	for _, c := range comps {
		if c.Status == models.CompetitorActive {
			totals[c.TeamID] += c.IndividualPoints
		}
	}
	for teamID, total := range totals {
		if err := s.teams.UpdateTotalPoints(ctx, tx, teamID, total); err != nil {
			return err
		}
	}
	return nil
}

func (s *ScoringService) settleProEarnings(
	ctx context.Context,
	tx *sql.Tx,
	results []*models.EventResult,
	prior map[int]float64,
) error {
	for _, r := range results {
		if prior[r.CompetitorID] == r.PayoutAmount {
			continue
		}
		comp, err := s.pros.GetByID(ctx, r.CompetitorID)
		if err != nil {
			return mapScoringRepoError(err)
		}
		earnings := comp.TotalEarnings - prior[r.CompetitorID] + r.PayoutAmount
		if earnings < 0 {
			earnings = 0
		}
		if err := s.pros.UpdateEarnings(ctx, tx, comp.ID, earnings); err != nil {
			return err
		}
	}
	return nil
}

// PlacementAward is an explicit position handed down by a bracket or relay,
// as opposed to one ranked from raw values.
type PlacementAward struct {
	CompetitorID int
	Name         string
	Position     int
}

// ApplyBracketPlacements writes bracket-decided positions to the event's
// results and settles points inside the caller's transaction. College points
// follow the placement table; pro bracket purses are settled by hand since
// the payout column carries the bracket state.
func (s *ScoringService) ApplyBracketPlacements(
	ctx context.Context,
	tx *sql.Tx,
	rc *models.RequestContext,
	event *models.Event,
	awards []PlacementAward,
) error {
	existing, err := s.results.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	byCompetitor := make(map[int]*models.EventResult, len(existing))
	priorPoints := make(map[int]int, len(existing))
	for _, r := range existing {
		byCompetitor[r.CompetitorID] = r
		priorPoints[r.CompetitorID] = r.PointsAwarded
	}
	competitorType := models.CompetitorCollege
	if event.EventType == models.EventPro {
		competitorType = models.CompetitorPro
	}

	results := make([]*models.EventResult, 0, len(awards))
	for _, award := range awards {
		res, ok := byCompetitor[award.CompetitorID]
		if !ok {
			res = &models.EventResult{
				EventID:        event.ID,
				CompetitorID:   award.CompetitorID,
				CompetitorType: competitorType,
				CompetitorName: award.Name,
				Status:         models.StatusPending,
			}
			if err := s.results.Create(ctx, tx, res); err != nil {
				return err
			}
		}
		pos := award.Position
		res.FinalPosition = &pos
		res.PointsAwarded = 0
		if event.EventType == models.EventCollege {
			res.PointsAwarded = config.PlacementPoints[pos]
		}
		res.Status = models.StatusCompleted
		if err := s.results.Update(ctx, tx, res); err != nil {
			return mapScoringRepoError(err)
		}
		results = append(results, res)
	}

	if event.EventType == models.EventCollege {
		if err := s.settleCollegePoints(ctx, tx, event, results, priorPoints); err != nil {
			return err
		}
	}
	if err := s.events.UpdateStatus(ctx, tx, event.ID, models.StatusCompleted); err != nil {
		return err
	}
	return s.audit.Log(ctx, tx, rc, "event.finalize", "event", &event.ID, map[string]interface{}{
		"results": len(results),
		"bracket": true,
	})
}

func mapScoringRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrHeatVersionConflict),
		errors.Is(err, repositories.ErrResultVersionConflict):
		return fmt.Errorf("%w: %v", ErrVersionConflict, err)
	case errors.Is(err, repositories.ErrHeatNotFound),
		errors.Is(err, repositories.ErrEventNotFound),
		errors.Is(err, repositories.ErrResultNotFound),
		errors.Is(err, repositories.ErrCollegeCompetitorNotFound),
		errors.Is(err, repositories.ErrProCompetitorNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
