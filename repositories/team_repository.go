package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamCodeConflict = errors.New("team code already exists for this tournament")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByCode(ctx context.Context, tournamentID int, teamCode string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *string) ([]*models.Team, error)
	ListBySchool(ctx context.Context, tournamentID int, schoolName string) ([]*models.Team, error)
	UpdateTotalPoints(ctx context.Context, exec SQLExecutor, id int, totalPoints int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, tournament_id, team_code, school_name, school_abbreviation, total_points, status`

func (r *postgresTeamRepository) scan(row interface{ Scan(...interface{}) error }, t *models.Team) error {
	return row.Scan(
		&t.ID,
		&t.TournamentID,
		&t.TeamCode,
		&t.SchoolName,
		&t.SchoolAbbreviation,
		&t.TotalPoints,
		&t.Status,
	)
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (tournament_id, team_code, school_name, school_abbreviation, total_points, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		team.TournamentID,
		team.TeamCode,
		team.SchoolName,
		team.SchoolAbbreviation,
		team.TotalPoints,
		team.Status,
	).Scan(&team.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamCodeConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), team)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) GetByCode(ctx context.Context, tournamentID int, teamCode string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 AND team_code = $2`

	team := &models.Team{}
	err := r.scan(r.db.QueryRowContext(ctx, query, tournamentID, teamCode), team)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %q: %w", teamCode, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY total_points DESC, team_code`

	return r.list(ctx, query, args...)
}

func (r *postgresTeamRepository) ListBySchool(ctx context.Context, tournamentID int, schoolName string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 AND school_name = $2 ORDER BY team_code`
	return r.list(ctx, query, tournamentID, schoolName)
}

func (r *postgresTeamRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var out []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := r.scan(rows, team); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (r *postgresTeamRepository) UpdateTotalPoints(ctx context.Context, exec SQLExecutor, id int, totalPoints int) error {
	result, err := exec.ExecContext(ctx, `UPDATE teams SET total_points = $1 WHERE id = $2`, totalPoints, id)
	if err != nil {
		return fmt.Errorf("failed to update team points: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error {
	result, err := exec.ExecContext(ctx, `UPDATE teams SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update team status: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
