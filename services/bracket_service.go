package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/brackets"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// BracketService runs the Partnered Axe Throw and Birling brackets, loading
// and persisting their state on the owning event.
type BracketService struct {
	db      *sql.DB
	events  repositories.EventRepository
	college repositories.CollegeCompetitorRepository
	pros    repositories.ProCompetitorRepository
	scoring *ScoringService
	cache   cache.Cache
	audit   *AuditService
	logger  *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	events repositories.EventRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	scoring *ScoringService,
	c cache.Cache,
	audit *AuditService,
	logger *slog.Logger,
) *BracketService {
	return &BracketService{
		db:      db,
		events:  events,
		college: college,
		pros:    pros,
		scoring: scoring,
		cache:   c,
		audit:   audit,
		logger:  logger,
	}
}

// State returns the live bracket state for an event.
func (s *BracketService) State(ctx context.Context, eventID int) (*brackets.State, error) {
	_, state, err := s.load(ctx, eventID)
	return state, err
}

func (s *BracketService) load(ctx context.Context, eventID int) (*models.Event, *brackets.State, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, mapEventRepoError(err)
	}
	state, err := brackets.ParseState(event.Payouts)
	if err != nil {
		return event, nil, mapBracketError(err)
	}
	return event, state, nil
}

func (s *BracketService) save(ctx context.Context, tx *sql.Tx, eventID int, state *brackets.State) error {
	raw, err := state.Marshal()
	if err != nil {
		return err
	}
	return s.events.UpdatePayouts(ctx, tx, eventID, raw)
}

// AxePairEntry names the two throwers of one Partnered Axe pair.
type AxePairEntry struct {
	Competitor1ID   int    `json:"competitor1_id"`
	Competitor1Name string `json:"competitor1_name"`
	Competitor2ID   int    `json:"competitor2_id"`
	Competitor2Name string `json:"competitor2_name"`
}

// InitPartneredAxe registers the pairs, in registration order, and opens the
// prelim round. Re-running replaces any prior bracket.
func (s *BracketService) InitPartneredAxe(ctx context.Context, rc *models.RequestContext, eventID int, entries []AxePairEntry) (*brackets.PartneredAxeState, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	if !event.IsPartnered || !event.HasPrelims {
		return nil, fmt.Errorf("%w: %s does not run a partnered prelim bracket", ErrValidationFailed, event.DisplayName())
	}

	pairs := make([]*brackets.AxePair, 0, len(entries))
	for i, e := range entries {
		pairs = append(pairs, &brackets.AxePair{
			ID:              i + 1,
			Competitor1ID:   e.Competitor1ID,
			Competitor1Name: e.Competitor1Name,
			Competitor2ID:   e.Competitor2ID,
			Competitor2Name: e.Competitor2Name,
		})
	}
	axe, err := brackets.NewPartneredAxe(pairs)
	if err != nil {
		return nil, mapBracketError(err)
	}

	state := &brackets.State{Type: brackets.TypePartneredAxe, PartneredAxe: axe}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.save(ctx, tx, eventID, state); err != nil {
			return err
		}
		if err := s.events.UpdateStatus(ctx, tx, eventID, models.StatusInProgress); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "bracket.init", "event", &eventID, map[string]interface{}{
			"type":  brackets.TypePartneredAxe,
			"pairs": len(pairs),
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return axe, nil
}

// RecordAxeScore records one pair's prelim or final combined score.
func (s *BracketService) RecordAxeScore(ctx context.Context, rc *models.RequestContext, eventID, pairID int, score float64, final bool) (*brackets.PartneredAxeState, error) {
	event, state, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	axe, err := s.axeState(state)
	if err != nil {
		return nil, err
	}

	if final {
		err = axe.RecordFinalScore(pairID, score)
	} else {
		err = axe.RecordPrelimScore(pairID, score)
	}
	if err != nil {
		return nil, mapBracketError(err)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.save(ctx, tx, eventID, state); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "bracket.score", "event", &eventID, map[string]interface{}{
			"pair_id": pairID,
			"final":   final,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return axe, nil
}

// AdvanceAxeFinals closes the prelims and seats the top four pairs.
func (s *BracketService) AdvanceAxeFinals(ctx context.Context, rc *models.RequestContext, eventID int) ([]*brackets.AxePair, error) {
	event, state, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	axe, err := s.axeState(state)
	if err != nil {
		return nil, err
	}

	finalists, err := axe.AdvanceToFinals()
	if err != nil {
		return nil, mapBracketError(err)
	}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.save(ctx, tx, eventID, state); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "bracket.advance", "event", &eventID, map[string]interface{}{
			"finalists": len(finalists),
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return finalists, nil
}

// FinalizeAxe locks placements and writes each thrower's event result.
func (s *BracketService) FinalizeAxe(ctx context.Context, rc *models.RequestContext, eventID int) ([]*brackets.AxePair, error) {
	event, state, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	axe, err := s.axeState(state)
	if err != nil {
		return nil, err
	}

	placed, err := axe.FinalizePlacements()
	if err != nil {
		return nil, mapBracketError(err)
	}
	var awards []PlacementAward
	for _, p := range placed {
		awards = append(awards,
			PlacementAward{CompetitorID: p.Competitor1ID, Name: p.Competitor1Name, Position: *p.FinalPosition},
			PlacementAward{CompetitorID: p.Competitor2ID, Name: p.Competitor2Name, Position: *p.FinalPosition},
		)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.save(ctx, tx, eventID, state); err != nil {
			return err
		}
		return s.scoring.ApplyBracketPlacements(ctx, tx, rc, event, awards)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	s.logger.Info("partnered axe finalized", "event_id", eventID, "pairs", len(placed))
	return placed, nil
}

func (s *BracketService) axeState(state *brackets.State) (*brackets.PartneredAxeState, error) {
	if state.Type != brackets.TypePartneredAxe || state.PartneredAxe == nil {
		return nil, mapBracketError(brackets.ErrWrongBracketType)
	}
	return state.PartneredAxe, nil
}

// SeedBirling builds the bracket from the event's entered competitors,
// seeding by individual points so the strongest rollers meet late.
func (s *BracketService) SeedBirling(ctx context.Context, rc *models.RequestContext, eventID int) (*brackets.BirlingState, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	if event.ScoringType != models.ScoringBracket {
		return nil, fmt.Errorf("%w: %s is not bracket-scored", ErrValidationFailed, event.DisplayName())
	}

	comps, err := s.college.ListByTournament(ctx, event.TournamentID, activeOnly())
	if err != nil {
		return nil, err
	}
	key := normalizeName(event.Name)
	var entered []*models.CollegeCompetitor
	for _, c := range comps {
		if event.Gender != nil && c.Gender != *event.Gender {
			continue
		}
		if entersEvent(c.EventsEntered, event, key) {
			entered = append(entered, c)
		}
	}
	sort.SliceStable(entered, func(i, j int) bool {
		if entered[i].IndividualPoints != entered[j].IndividualPoints {
			return entered[i].IndividualPoints > entered[j].IndividualPoints
		}
		return entered[i].ID < entered[j].ID
	})

	entrants := make([]brackets.BirlingEntrant, 0, len(entered))
	for i, c := range entered {
		entrants = append(entrants, brackets.BirlingEntrant{CompetitorID: c.ID, Name: c.Name, Seed: i + 1})
	}
	birling, err := brackets.NewBirling(entrants)
	if err != nil {
		return nil, mapBracketError(err)
	}

	state := &brackets.State{Type: brackets.TypeBirling, Birling: birling}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.save(ctx, tx, eventID, state); err != nil {
			return err
		}
		if err := s.events.UpdateStatus(ctx, tx, eventID, models.StatusInProgress); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "bracket.init", "event", &eventID, map[string]interface{}{
			"type":     brackets.TypeBirling,
			"entrants": len(entrants),
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return birling, nil
}

// ScoreBirlingMatch records a roll-off winner. When the loss eliminates the
// bracket's last open match, placements are settled in the same transaction.
func (s *BracketService) ScoreBirlingMatch(ctx context.Context, rc *models.RequestContext, eventID, matchID, winnerID int) (*brackets.BirlingState, error) {
	event, state, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if state.Type != brackets.TypeBirling || state.Birling == nil {
		return nil, mapBracketError(brackets.ErrWrongBracketType)
	}
	birling := state.Birling

	if err := birling.ScoreMatch(matchID, winnerID); err != nil {
		return nil, mapBracketError(err)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.save(ctx, tx, eventID, state); err != nil {
			return err
		}
		if err := s.audit.Log(ctx, tx, rc, "bracket.score", "event", &eventID, map[string]interface{}{
			"match_id": matchID,
			"winner":   winnerID,
		}); err != nil {
			return err
		}
		if !birling.Completed {
			return nil
		}

		placements, err := birling.FinalPlacements()
		if err != nil {
			return err
		}
		awards := make([]PlacementAward, 0, len(placements))
		for _, p := range placements {
			awards = append(awards, PlacementAward{CompetitorID: p.CompetitorID, Name: p.Name, Position: p.Position})
		}
		return s.scoring.ApplyBracketPlacements(ctx, tx, rc, event, awards)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	if birling.Completed {
		s.logger.Info("birling bracket completed", "event_id", eventID, "champion", birling.ChampionID)
	}
	return birling, nil
}

func mapBracketError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, brackets.ErrNoBracketState),
		errors.Is(err, brackets.ErrMatchNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, brackets.ErrBracketCompleted),
		errors.Is(err, brackets.ErrMatchAlreadyDone):
		return fmt.Errorf("%w: %v", ErrStatusTransition, err)
	}
	return fmt.Errorf("%w: %v", ErrValidationFailed, err)
}
