package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// TournamentService owns the tournament lifecycle and its event catalog.
type TournamentService struct {
	db          *sql.DB
	tournaments repositories.TournamentRepository
	events      repositories.EventRepository
	cache       cache.Cache
	audit       *AuditService
	logger      *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournaments repositories.TournamentRepository,
	events repositories.EventRepository,
	c cache.Cache,
	audit *AuditService,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		db:          db,
		tournaments: tournaments,
		events:      events,
		cache:       c,
		audit:       audit,
		logger:      logger,
	}
}

// Create opens a tournament in setup and seeds the standard event catalog.
func (s *TournamentService) Create(ctx context.Context, rc *models.RequestContext, t *models.Tournament) error {
	if t.Name == "" || t.Year == 0 {
		return fmt.Errorf("%w: tournament needs a name and year", ErrValidationFailed)
	}
	t.Status = models.TournamentSetup

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tournaments.Create(ctx, tx, t); err != nil {
			return err
		}
		created, err := s.seedEvents(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "tournament.create", "tournament", &t.ID, map[string]interface{}{
			"name":   t.Name,
			"year":   t.Year,
			"events": created,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("tournament created", "tournament_id", t.ID, "name", t.Name, "year", t.Year)
	return nil
}

// ConfigureEvents re-seeds any catalog events missing from the tournament.
// Running it twice changes nothing.
func (s *TournamentService) ConfigureEvents(ctx context.Context, rc *models.RequestContext, tournamentID int) (int, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return 0, err
	}
	var created int
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		created, err = s.seedEvents(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "tournament.configure_events", "tournament", &tournamentID, map[string]interface{}{
			"created": created,
		})
	})
	if err != nil {
		return 0, err
	}
	cache.InvalidateTournament(s.cache, tournamentID)
	return created, nil
}

func (s *TournamentService) seedEvents(ctx context.Context, tx *sql.Tx, tournamentID int) (int, error) {
	created := 0
	seed := func(eventType models.EventType, seeds []config.EventSeed, isOpen bool) error {
		for _, es := range seeds {
			genders := []*models.Gender{nil}
			if es.IsGendered {
				m, f := models.GenderMale, models.GenderFemale
				genders = []*models.Gender{&m, &f}
			}
			for _, gender := range genders {
				_, err := s.events.GetByName(ctx, tournamentID, eventType, es.Name, gender)
				if err == nil {
					continue
				}
				if !errors.Is(err, repositories.ErrEventNotFound) {
					return err
				}

				event := &models.Event{
					TournamentID:     tournamentID,
					Name:             es.Name,
					EventType:        eventType,
					Gender:           gender,
					ScoringType:      es.ScoringType,
					ScoringOrder:     scoringOrderFor(es.ScoringType),
					IsOpen:           isOpen,
					IsPartnered:      es.IsPartnered,
					RequiresDualRuns: es.RequiresDualRuns,
					HasPrelims:       es.HasPrelims,
					Status:           models.StatusPending,
				}
				if es.StandType != "" {
					st := es.StandType
					event.StandType = &st
				}
				if es.PartnerGender != "" {
					pg := es.PartnerGender
					event.PartnerGenderRequirement = &pg
				}
				if err := s.events.Create(ctx, tx, event); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	}

	if err := seed(models.EventCollege, config.CollegeOpenEvents, true); err != nil {
		return created, err
	}
	if err := seed(models.EventCollege, config.CollegeClosedEvents, false); err != nil {
		return created, err
	}
	if err := seed(models.EventPro, config.ProEvents, false); err != nil {
		return created, err
	}
	return created, nil
}

// scoringOrderFor: timed events rank ascending, everything else descending.
func scoringOrderFor(scoringType string) string {
	if scoringType == models.ScoringTime {
		return models.LowestWins
	}
	return models.HighestWins
}

func (s *TournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return nil, ErrTournamentNotFound
	}
	return t, err
}

func (s *TournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournaments.List(ctx)
}

// UpdateStatus advances the tournament through its lifecycle. Only forward
// steps are allowed.
func (s *TournamentService) UpdateStatus(ctx context.Context, rc *models.RequestContext, id int, next models.TournamentStatus) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !isValidTournamentTransition(t.Status, next) {
		return fmt.Errorf("%w: %s cannot move to %s", ErrStatusTransition, t.Status, next)
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tournaments.UpdateStatus(ctx, tx, id, next); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "tournament.status", "tournament", &id, map[string]interface{}{
			"from": t.Status,
			"to":   next,
		})
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, id)
	s.logger.Info("tournament status changed", "tournament_id", id, "from", t.Status, "to", next)
	return nil
}

func (s *TournamentService) Update(ctx context.Context, rc *models.RequestContext, t *models.Tournament) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tournaments.Update(ctx, tx, t); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "tournament.update", "tournament", &t.ID, nil)
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, t.ID)
	return nil
}

// Delete removes the tournament and, through the schema's cascades, all rows
// it owns. Audit rows survive.
func (s *TournamentService) Delete(ctx context.Context, rc *models.RequestContext, id int) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.audit.Log(ctx, tx, rc, "tournament.delete", "tournament", &id, nil); err != nil {
			return err
		}
		if err := s.tournaments.Delete(ctx, tx, id); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, id)
	s.logger.Info("tournament deleted", "tournament_id", id)
	return nil
}
