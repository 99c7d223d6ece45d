package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/brackets"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// RelayService runs the Pro-Am relay lottery and its race-day bookkeeping.
type RelayService struct {
	db      *sql.DB
	events  repositories.EventRepository
	college repositories.CollegeCompetitorRepository
	pros    repositories.ProCompetitorRepository
	cache   cache.Cache
	audit   *AuditService
	logger  *slog.Logger

	// newRand is swappable so draws can be reproduced.
	newRand func() *rand.Rand
}

func NewRelayService(
	db *sql.DB,
	events repositories.EventRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	c cache.Cache,
	audit *AuditService,
	logger *slog.Logger,
) *RelayService {
	return &RelayService{
		db:      db,
		events:  events,
		college: college,
		pros:    pros,
		cache:   c,
		audit:   audit,
		logger:  logger,
		newRand: func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
	}
}

// Pools gathers the four lottery buckets of opted-in, active competitors.
func (s *RelayService) Pools(ctx context.Context, tournamentID int) (brackets.RelayPools, error) {
	var pools brackets.RelayPools

	college, err := s.college.ListByTournament(ctx, tournamentID, activeOnly())
	if err != nil {
		return pools, err
	}
	for _, c := range college {
		if !c.LotteryOptIn {
			continue
		}
		member := brackets.RelayMember{
			CompetitorID:   c.ID,
			CompetitorType: string(models.CompetitorCollege),
			Name:           c.Name,
			Gender:         string(c.Gender),
		}
		if c.Gender == models.GenderFemale {
			pools.CollegeWomen = append(pools.CollegeWomen, member)
		} else {
			pools.CollegeMen = append(pools.CollegeMen, member)
		}
	}

	pros, err := s.pros.ListByTournament(ctx, tournamentID, activeOnly())
	if err != nil {
		return pools, err
	}
	for _, p := range pros {
		if !p.LotteryOptIn {
			continue
		}
		member := brackets.RelayMember{
			CompetitorID:   p.ID,
			CompetitorType: string(models.CompetitorPro),
			Name:           p.Name,
			Gender:         string(p.Gender),
		}
		if p.Gender == models.GenderFemale {
			pools.ProWomen = append(pools.ProWomen, member)
		} else {
			pools.ProMen = append(pools.ProMen, member)
		}
	}
	return pools, nil
}

// Draw runs the lottery for the requested number of teams. Re-drawing
// replaces any earlier draw wholesale.
func (s *RelayService) Draw(ctx context.Context, rc *models.RequestContext, eventID, numTeams int) (*brackets.RelayState, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	pools, err := s.Pools(ctx, event.TournamentID)
	if err != nil {
		return nil, err
	}

	relay := brackets.NewRelay()
	if err := relay.Draw(pools, numTeams, s.newRand()); err != nil {
		return nil, mapBracketError(err)
	}

	state := &brackets.State{Type: brackets.TypeRelay, Relay: relay}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.saveRelay(ctx, tx, eventID, state); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "relay.draw", "event", &eventID, map[string]interface{}{
			"teams":    numTeams,
			"capacity": pools.Capacity(),
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	s.logger.Info("relay drawn", "event_id", eventID, "teams", numTeams)
	return relay, nil
}

// Reset clears the draw back to not_drawn, e.g. before a re-draw on stage.
func (s *RelayService) Reset(ctx context.Context, rc *models.RequestContext, eventID int) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return mapEventRepoError(err)
	}
	state := &brackets.State{Type: brackets.TypeRelay, Relay: brackets.NewRelay()}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.saveRelay(ctx, tx, eventID, state); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "relay.reset", "event", &eventID, nil)
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return nil
}

// RecordTime records one team's leg time. The relay completes itself once
// every team has all four legs in.
func (s *RelayService) RecordTime(ctx context.Context, rc *models.RequestContext, eventID, teamNumber int, subEvent string, seconds float64) (*brackets.RelayState, error) {
	event, relay, state, err := s.loadRelay(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := relay.RecordTime(teamNumber, subEvent, seconds); err != nil {
		return nil, mapBracketError(err)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.saveRelay(ctx, tx, eventID, state); err != nil {
			return err
		}
		if relay.Status == brackets.RelayCompleted {
			if err := s.events.UpdateStatus(ctx, tx, eventID, models.StatusCompleted); err != nil {
				return err
			}
		}
		return s.audit.Log(ctx, tx, rc, "relay.time", "event", &eventID, map[string]interface{}{
			"team":      teamNumber,
			"sub_event": subEvent,
			"seconds":   seconds,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return relay, nil
}

// ReplaceMember swaps an injured or absent member for another opted-in
// competitor from the same lottery bucket.
func (s *RelayService) ReplaceMember(ctx context.Context, rc *models.RequestContext, eventID, teamNumber, outgoingID int, replacementID int, replacementType models.CompetitorType) (*brackets.RelayState, error) {
	event, relay, state, err := s.loadRelay(ctx, eventID)
	if err != nil {
		return nil, err
	}

	replacement, err := s.relayMember(ctx, replacementID, replacementType)
	if err != nil {
		return nil, err
	}
	if err := relay.ReplaceMember(teamNumber, outgoingID, replacement); err != nil {
		return nil, mapBracketError(err)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.saveRelay(ctx, tx, eventID, state); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "relay.replace", "event", &eventID, map[string]interface{}{
			"team":        teamNumber,
			"outgoing":    outgoingID,
			"replacement": replacementID,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, event.TournamentID)
	return relay, nil
}

// Standings returns the drawn teams ordered by total time.
func (s *RelayService) Standings(ctx context.Context, eventID int) ([]*brackets.RelayTeam, error) {
	_, relay, _, err := s.loadRelay(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return relay.Standings(), nil
}

func (s *RelayService) relayMember(ctx context.Context, competitorID int, competitorType models.CompetitorType) (brackets.RelayMember, error) {
	var member brackets.RelayMember
	if competitorType == models.CompetitorPro {
		p, err := s.pros.GetByID(ctx, competitorID)
		if err != nil {
			return member, mapScoringRepoError(err)
		}
		if p.Status != models.CompetitorActive || !p.LotteryOptIn {
			return member, fmt.Errorf("%w: %s is not an active lottery entrant", ErrValidationFailed, p.Name)
		}
		return brackets.RelayMember{
			CompetitorID:   p.ID,
			CompetitorType: string(models.CompetitorPro),
			Name:           p.Name,
			Gender:         string(p.Gender),
		}, nil
	}

	c, err := s.college.GetByID(ctx, competitorID)
	if err != nil {
		return member, mapScoringRepoError(err)
	}
	if c.Status != models.CompetitorActive || !c.LotteryOptIn {
		return member, fmt.Errorf("%w: %s is not an active lottery entrant", ErrValidationFailed, c.Name)
	}
	return brackets.RelayMember{
		CompetitorID:   c.ID,
		CompetitorType: string(models.CompetitorCollege),
		Name:           c.Name,
		Gender:         string(c.Gender),
	}, nil
}

func (s *RelayService) loadRelay(ctx context.Context, eventID int) (*models.Event, *brackets.RelayState, *brackets.State, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, nil, mapEventRepoError(err)
	}
	state, err := brackets.ParseState(event.Payouts)
	if err != nil {
		return nil, nil, nil, mapBracketError(err)
	}
	if state.Type != brackets.TypeRelay || state.Relay == nil {
		return nil, nil, nil, mapBracketError(brackets.ErrWrongBracketType)
	}
	return event, state.Relay, state, nil
}

func (s *RelayService) saveRelay(ctx context.Context, tx *sql.Tx, eventID int, state *brackets.State) error {
	raw, err := state.Marshal()
	if err != nil {
		return err
	}
	return s.events.UpdatePayouts(ctx, tx, eventID, raw)
}
