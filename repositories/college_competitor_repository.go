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
	ErrCollegeCompetitorNotFound    = errors.New("college competitor not found")
	ErrCollegeCompetitorTeamInvalid = errors.New("college competitor team invalid")
)

type CollegeCompetitorRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.CollegeCompetitor) error
	GetByID(ctx context.Context, id int) (*models.CollegeCompetitor, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *string) ([]*models.CollegeCompetitor, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.CollegeCompetitor, error)
	Update(ctx context.Context, exec SQLExecutor, c *models.CollegeCompetitor) error
	UpdateIndividualPoints(ctx context.Context, exec SQLExecutor, id int, points int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresCollegeCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresCollegeCompetitorRepository(db *sql.DB) CollegeCompetitorRepository {
	return &postgresCollegeCompetitorRepository{db: db}
}

const collegeCompetitorColumns = `id, tournament_id, team_id, name, gender, individual_points,
	events_entered, partners, gear_sharing, lottery_opt_in, status`

func (r *postgresCollegeCompetitorRepository) scan(row interface{ Scan(...interface{}) error }, c *models.CollegeCompetitor) error {
	var eventsRaw, partnersRaw, gearRaw string
	if err := row.Scan(
		&c.ID,
		&c.TournamentID,
		&c.TeamID,
		&c.Name,
		&c.Gender,
		&c.IndividualPoints,
		&eventsRaw,
		&partnersRaw,
		&gearRaw,
		&c.LotteryOptIn,
		&c.Status,
	); err != nil {
		return err
	}

	var err error
	if c.EventsEntered, err = unmarshalStringSlice(eventsRaw); err != nil {
		return err
	}
	if c.Partners, err = unmarshalStringMap(partnersRaw); err != nil {
		return err
	}
	if c.GearSharing, err = unmarshalStringMap(gearRaw); err != nil {
		return err
	}
	return nil
}

func (r *postgresCollegeCompetitorRepository) Create(ctx context.Context, exec SQLExecutor, c *models.CollegeCompetitor) error {
	eventsRaw, err := marshalJSON(c.EventsEntered, "[]")
	if err != nil {
		return err
	}
	partnersRaw, err := marshalJSON(c.Partners, "{}")
	if err != nil {
		return err
	}
	gearRaw, err := marshalJSON(c.GearSharing, "{}")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO college_competitors
			(tournament_id, team_id, name, gender, individual_points, events_entered, partners, gear_sharing, lottery_opt_in, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query,
		c.TournamentID,
		c.TeamID,
		c.Name,
		c.Gender,
		c.IndividualPoints,
		eventsRaw,
		partnersRaw,
		gearRaw,
		c.LotteryOptIn,
		c.Status,
	).Scan(&c.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrCollegeCompetitorTeamInvalid
		}
		return fmt.Errorf("failed to create college competitor: %w", err)
	}
	return nil
}

func (r *postgresCollegeCompetitorRepository) GetByID(ctx context.Context, id int) (*models.CollegeCompetitor, error) {
	query := `SELECT ` + collegeCompetitorColumns + ` FROM college_competitors WHERE id = $1`

	c := &models.CollegeCompetitor{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollegeCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to scan college competitor by id %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCollegeCompetitorRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *string) ([]*models.CollegeCompetitor, error) {
	query := `SELECT ` + collegeCompetitorColumns + ` FROM college_competitors WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY name`

	return r.list(ctx, query, args...)
}

func (r *postgresCollegeCompetitorRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.CollegeCompetitor, error) {
	query := `SELECT ` + collegeCompetitorColumns + ` FROM college_competitors WHERE team_id = $1 ORDER BY name`
	return r.list(ctx, query, teamID)
}

func (r *postgresCollegeCompetitorRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.CollegeCompetitor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list college competitors: %w", err)
	}
	defer rows.Close()

	var out []*models.CollegeCompetitor
	for rows.Next() {
		c := &models.CollegeCompetitor{}
		if err := r.scan(rows, c); err != nil {
			return nil, fmt.Errorf("failed to scan college competitor row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresCollegeCompetitorRepository) Update(ctx context.Context, exec SQLExecutor, c *models.CollegeCompetitor) error {
	eventsRaw, err := marshalJSON(c.EventsEntered, "[]")
	if err != nil {
		return err
	}
	partnersRaw, err := marshalJSON(c.Partners, "{}")
	if err != nil {
		return err
	}
	gearRaw, err := marshalJSON(c.GearSharing, "{}")
	if err != nil {
		return err
	}

	query := `
		UPDATE college_competitors
		SET team_id = $1, name = $2, gender = $3, events_entered = $4, partners = $5,
		    gear_sharing = $6, lottery_opt_in = $7, status = $8
		WHERE id = $9`

	result, err := exec.ExecContext(ctx, query,
		c.TeamID, c.Name, c.Gender, eventsRaw, partnersRaw, gearRaw, c.LotteryOptIn, c.Status, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update college competitor: %w", err)
	}
	return checkAffectedRows(result, ErrCollegeCompetitorNotFound)
}

func (r *postgresCollegeCompetitorRepository) UpdateIndividualPoints(ctx context.Context, exec SQLExecutor, id int, points int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE college_competitors SET individual_points = $1 WHERE id = $2`, points, id)
	if err != nil {
		return fmt.Errorf("failed to update college competitor points: %w", err)
	}
	return checkAffectedRows(result, ErrCollegeCompetitorNotFound)
}

func (r *postgresCollegeCompetitorRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE college_competitors SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update college competitor status: %w", err)
	}
	return checkAffectedRows(result, ErrCollegeCompetitorNotFound)
}

func (r *postgresCollegeCompetitorRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM college_competitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete college competitor: %w", err)
	}
	return checkAffectedRows(result, ErrCollegeCompetitorNotFound)
}
