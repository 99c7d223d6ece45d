package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, e *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	GetByName(ctx context.Context, tournamentID int, eventType models.EventType, name string, gender *models.Gender) (*models.Event, error)
	ListByTournament(ctx context.Context, tournamentID int, eventType *models.EventType) ([]*models.Event, error)
	Update(ctx context.Context, exec SQLExecutor, e *models.Event) error
	UpdatePayouts(ctx context.Context, exec SQLExecutor, id int, payouts string) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, tournament_id, name, event_type, gender, scoring_type, scoring_order,
	is_open, is_partnered, partner_gender_requirement, requires_dual_runs, stand_type,
	max_stands, has_prelims, payouts, status`

func (r *postgresEventRepository) scan(row interface{ Scan(...interface{}) error }, e *models.Event) error {
	return row.Scan(
		&e.ID,
		&e.TournamentID,
		&e.Name,
		&e.EventType,
		&e.Gender,
		&e.ScoringType,
		&e.ScoringOrder,
		&e.IsOpen,
		&e.IsPartnered,
		&e.PartnerGenderRequirement,
		&e.RequiresDualRuns,
		&e.StandType,
		&e.MaxStands,
		&e.HasPrelims,
		&e.Payouts,
		&e.Status,
	)
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	query := `
		INSERT INTO events
			(tournament_id, name, event_type, gender, scoring_type, scoring_order, is_open,
			 is_partnered, partner_gender_requirement, requires_dual_runs, stand_type,
			 max_stands, has_prelims, payouts, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		e.TournamentID,
		e.Name,
		e.EventType,
		e.Gender,
		e.ScoringType,
		e.ScoringOrder,
		e.IsOpen,
		e.IsPartnered,
		e.PartnerGenderRequirement,
		e.RequiresDualRuns,
		e.StandType,
		e.MaxStands,
		e.HasPrelims,
		e.Payouts,
		e.Status,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e := &models.Event{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresEventRepository) GetByName(ctx context.Context, tournamentID int, eventType models.EventType, name string, gender *models.Gender) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE tournament_id = $1 AND event_type = $2 AND name = $3`
	args := []interface{}{tournamentID, eventType, name}
	if gender == nil {
		query += ` AND gender IS NULL`
	} else {
		query += ` AND gender = $4`
		args = append(args, *gender)
	}

	e := &models.Event{}
	err := r.scan(r.db.QueryRowContext(ctx, query, args...), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event %q: %w", name, err)
	}
	return e, nil
}

func (r *postgresEventRepository) ListByTournament(ctx context.Context, tournamentID int, eventType *models.EventType) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if eventType != nil {
		query += ` AND event_type = $2`
		args = append(args, *eventType)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		e := &models.Event{}
		if err := r.scan(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, gender = $2, scoring_type = $3, scoring_order = $4, is_open = $5,
		    is_partnered = $6, partner_gender_requirement = $7, requires_dual_runs = $8,
		    stand_type = $9, max_stands = $10, has_prelims = $11, payouts = $12, status = $13
		WHERE id = $14`

	result, err := exec.ExecContext(ctx, query,
		e.Name, e.Gender, e.ScoringType, e.ScoringOrder, e.IsOpen,
		e.IsPartnered, e.PartnerGenderRequirement, e.RequiresDualRuns,
		e.StandType, e.MaxStands, e.HasPrelims, e.Payouts, e.Status, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdatePayouts(ctx context.Context, exec SQLExecutor, id int, payouts string) error {
	result, err := exec.ExecContext(ctx, `UPDATE events SET payouts = $1 WHERE id = $2`, payouts, id)
	if err != nil {
		return fmt.Errorf("failed to update event payouts: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error {
	result, err := exec.ExecContext(ctx, `UPDATE events SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}
