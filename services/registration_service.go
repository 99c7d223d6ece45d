package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// RegistrationService manages teams and competitors through the registration
// window.
type RegistrationService struct {
	db          *sql.DB
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	college     repositories.CollegeCompetitorRepository
	pros        repositories.ProCompetitorRepository
	captains    repositories.SchoolCaptainRepository
	cache       cache.Cache
	audit       *AuditService
	logger      *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	captains repositories.SchoolCaptainRepository,
	c cache.Cache,
	audit *AuditService,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:          db,
		tournaments: tournaments,
		teams:       teams,
		college:     college,
		pros:        pros,
		captains:    captains,
		cache:       c,
		audit:       audit,
		logger:      logger,
	}
}

// checkRegistrationOpen gates writes by tournament phase: college entries
// close once the pro day starts, pro entries once the tournament completes.
func (s *RegistrationService) checkRegistrationOpen(ctx context.Context, tournamentID int, audience models.CompetitorType) error {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	if err != nil {
		return err
	}

	switch t.Status {
	case models.TournamentSetup, models.TournamentCollegeActive:
		return nil
	case models.TournamentProActive:
		if audience == models.CompetitorPro {
			return nil
		}
	}
	return fmt.Errorf("%w: tournament is %s", ErrRegistrationClosed, t.Status)
}

// CreateTeam registers a team shell; members arrive separately.
func (s *RegistrationService) CreateTeam(ctx context.Context, rc *models.RequestContext, team *models.Team) error {
	if err := s.checkRegistrationOpen(ctx, team.TournamentID, models.CompetitorCollege); err != nil {
		return err
	}
	if team.TeamCode == "" || team.SchoolName == "" {
		return fmt.Errorf("%w: team code and school name are required", ErrValidationFailed)
	}
	team.Status = models.CompetitorActive

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.teams.Create(ctx, tx, team); err != nil {
			if errors.Is(err, repositories.ErrTeamCodeConflict) {
				return fmt.Errorf("%w: team code %s", ErrDuplicateEntry, team.TeamCode)
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "team.create", "team", &team.ID, map[string]interface{}{
			"team_code": team.TeamCode,
			"school":    team.SchoolName,
		})
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, team.TournamentID)
	return nil
}

// SetTeamStatus scratches or reinstates a whole team.
func (s *RegistrationService) SetTeamStatus(ctx context.Context, rc *models.RequestContext, teamID int, status string) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return ErrTeamNotFound
	}
	if err != nil {
		return err
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.teams.UpdateStatus(ctx, tx, teamID, status); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "team.status", "team", &teamID, map[string]interface{}{
			"status": status,
		})
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, team.TournamentID)
	return nil
}

// CreateCollegeCompetitor registers one athlete. Field and entry-cap errors
// block; composition warnings ride back to the caller.
func (s *RegistrationService) CreateCollegeCompetitor(ctx context.Context, rc *models.RequestContext, c *models.CollegeCompetitor) (*models.ValidationResult, error) {
	if err := s.checkRegistrationOpen(ctx, c.TournamentID, models.CompetitorCollege); err != nil {
		return nil, err
	}
	c.Status = models.CompetitorActive

	check := ValidateCollegeCompetitor(c)
	if !check.IsValid() {
		return &check, fmt.Errorf("%w: %s", ErrValidationFailed, check.Errors[0].Message)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.college.Create(ctx, tx, c); err != nil {
			if errors.Is(err, repositories.ErrCollegeCompetitorTeamInvalid) {
				return fmt.Errorf("%w: team %d does not exist", ErrValidationFailed, c.TeamID)
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.create", "college_competitor", &c.ID, map[string]interface{}{
			"name":    c.Name,
			"team_id": c.TeamID,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, c.TournamentID)
	return &check, nil
}

func (s *RegistrationService) UpdateCollegeCompetitor(ctx context.Context, rc *models.RequestContext, c *models.CollegeCompetitor) (*models.ValidationResult, error) {
	check := ValidateCollegeCompetitor(c)
	if !check.IsValid() {
		return &check, fmt.Errorf("%w: %s", ErrValidationFailed, check.Errors[0].Message)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.college.Update(ctx, tx, c); err != nil {
			if errors.Is(err, repositories.ErrCollegeCompetitorNotFound) {
				return ErrCompetitorNotFound
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.update", "college_competitor", &c.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, c.TournamentID)
	return &check, nil
}

// SetCollegeStatus scratches or reinstates an athlete and reports what the
// change does to the team's composition.
func (s *RegistrationService) SetCollegeStatus(ctx context.Context, rc *models.RequestContext, competitorID int, status string) (*models.ValidationResult, error) {
	c, err := s.college.GetByID(ctx, competitorID)
	if errors.Is(err, repositories.ErrCollegeCompetitorNotFound) {
		return nil, ErrCompetitorNotFound
	}
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.college.UpdateStatus(ctx, tx, competitorID, status); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.status", "college_competitor", &competitorID, map[string]interface{}{
			"status": status,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, c.TournamentID)

	// Re-check the team so the operator sees composition fallout immediately.
	team, err := s.teams.GetByID(ctx, c.TeamID)
	if err != nil {
		return nil, err
	}
	members, err := s.college.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.Members = make([]models.CollegeCompetitor, 0, len(members))
	for _, m := range members {
		team.Members = append(team.Members, *m)
	}
	check := ValidateTeam(team)
	return &check, nil
}

// CreateProCompetitor registers a pro. Review items come back as warnings.
func (s *RegistrationService) CreateProCompetitor(ctx context.Context, rc *models.RequestContext, p *models.ProCompetitor) (*models.ValidationResult, error) {
	if err := s.checkRegistrationOpen(ctx, p.TournamentID, models.CompetitorPro); err != nil {
		return nil, err
	}
	p.Status = models.CompetitorActive

	check := ValidateProCompetitor(p)
	if !check.IsValid() {
		return &check, fmt.Errorf("%w: %s", ErrValidationFailed, check.Errors[0].Message)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.pros.Create(ctx, tx, p); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.create", "pro_competitor", &p.ID, map[string]interface{}{
			"name": p.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, p.TournamentID)
	return &check, nil
}

func (s *RegistrationService) UpdateProCompetitor(ctx context.Context, rc *models.RequestContext, p *models.ProCompetitor) (*models.ValidationResult, error) {
	check := ValidateProCompetitor(p)
	if !check.IsValid() {
		return &check, fmt.Errorf("%w: %s", ErrValidationFailed, check.Errors[0].Message)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.pros.Update(ctx, tx, p); err != nil {
			if errors.Is(err, repositories.ErrProCompetitorNotFound) {
				return ErrCompetitorNotFound
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.update", "pro_competitor", &p.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, p.TournamentID)
	return &check, nil
}

// MarkFeePaid flips one entry fee to paid on a pro's ledger.
func (s *RegistrationService) MarkFeePaid(ctx context.Context, rc *models.RequestContext, competitorID int, feeKey string) (*models.ProCompetitor, error) {
	p, err := s.pros.GetByID(ctx, competitorID)
	if errors.Is(err, repositories.ErrProCompetitorNotFound) {
		return nil, ErrCompetitorNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, ok := p.EntryFees[feeKey]; !ok {
		return nil, fmt.Errorf("%w: no fee %q on file for %s", ErrValidationFailed, feeKey, p.Name)
	}
	if p.FeesPaid == nil {
		p.FeesPaid = map[string]bool{}
	}
	p.FeesPaid[feeKey] = true

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.pros.Update(ctx, tx, p); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.fee_paid", "pro_competitor", &competitorID, map[string]interface{}{
			"fee": feeKey,
		})
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateTournament(s.cache, p.TournamentID)
	return p, nil
}

func (s *RegistrationService) SetProStatus(ctx context.Context, rc *models.RequestContext, competitorID int, status string) error {
	p, err := s.pros.GetByID(ctx, competitorID)
	if errors.Is(err, repositories.ErrProCompetitorNotFound) {
		return ErrCompetitorNotFound
	}
	if err != nil {
		return err
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.pros.UpdateStatus(ctx, tx, competitorID, status); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "competitor.status", "pro_competitor", &competitorID, map[string]interface{}{
			"status": status,
		})
	})
	if err != nil {
		return err
	}
	cache.InvalidateTournament(s.cache, p.TournamentID)
	return nil
}

// EnsureCaptain creates the school's captain profile if it does not exist.
func (s *RegistrationService) EnsureCaptain(ctx context.Context, rc *models.RequestContext, tournamentID int, schoolName string) (*models.SchoolCaptain, error) {
	captain, err := s.captains.GetBySchool(ctx, tournamentID, schoolName)
	if err == nil {
		return captain, nil
	}
	if !errors.Is(err, repositories.ErrSchoolCaptainNotFound) {
		return nil, err
	}

	captain = &models.SchoolCaptain{TournamentID: tournamentID, SchoolName: schoolName}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.captains.Create(ctx, tx, captain); err != nil {
			if errors.Is(err, repositories.ErrSchoolCaptainConflict) {
				return fmt.Errorf("%w: captain for %s", ErrDuplicateEntry, schoolName)
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "captain.create", "school_captain", &captain.ID, map[string]interface{}{
			"school": schoolName,
		})
	})
	if err != nil {
		return nil, err
	}
	return captain, nil
}

// Teams returns the tournament's teams with members attached.
func (s *RegistrationService) Teams(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teams.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		members, err := s.college.ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		team.Members = make([]models.CollegeCompetitor, 0, len(members))
		for _, m := range members {
			team.Members = append(team.Members, *m)
		}
	}
	return teams, nil
}

func (s *RegistrationService) CollegeCompetitors(ctx context.Context, tournamentID int) ([]*models.CollegeCompetitor, error) {
	return s.college.ListByTournament(ctx, tournamentID, nil)
}

func (s *RegistrationService) ProCompetitors(ctx context.Context, tournamentID int) ([]*models.ProCompetitor, error) {
	return s.pros.ListByTournament(ctx, tournamentID, nil)
}
