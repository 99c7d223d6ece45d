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
	ErrResultNotFound        = errors.New("event result not found")
	ErrResultAlreadyExists   = errors.New("event result already exists for this competitor")
	ErrResultVersionConflict = errors.New("event result was modified concurrently")
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, res *models.EventResult) error
	GetByID(ctx context.Context, id int) (*models.EventResult, error)
	GetByCompetitor(ctx context.Context, eventID, competitorID int, competitorType models.CompetitorType) (*models.EventResult, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error)
	ListByCompetitor(ctx context.Context, competitorID int, competitorType models.CompetitorType) ([]*models.EventResult, error)
	// Update bumps the version and fails with ErrResultVersionConflict when the
	// stored row no longer carries res.Version.
	Update(ctx context.Context, exec SQLExecutor, res *models.EventResult) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

const resultColumns = `id, event_id, competitor_id, competitor_type, competitor_name, partner_name,
	result_value, result_unit, run1_value, run2_value, best_run, final_position,
	points_awarded, payout_amount, is_flagged, status, version`

func (r *postgresResultRepository) scan(row interface{ Scan(...interface{}) error }, res *models.EventResult) error {
	return row.Scan(
		&res.ID,
		&res.EventID,
		&res.CompetitorID,
		&res.CompetitorType,
		&res.CompetitorName,
		&res.PartnerName,
		&res.ResultValue,
		&res.ResultUnit,
		&res.Run1Value,
		&res.Run2Value,
		&res.BestRun,
		&res.FinalPosition,
		&res.PointsAwarded,
		&res.PayoutAmount,
		&res.IsFlagged,
		&res.Status,
		&res.Version,
	)
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, res *models.EventResult) error {
	query := `
		INSERT INTO event_results
			(event_id, competitor_id, competitor_type, competitor_name, partner_name,
			 result_value, result_unit, run1_value, run2_value, best_run, final_position,
			 points_awarded, payout_amount, is_flagged, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, version`

	err := exec.QueryRowContext(ctx, query,
		res.EventID,
		res.CompetitorID,
		res.CompetitorType,
		res.CompetitorName,
		res.PartnerName,
		res.ResultValue,
		res.ResultUnit,
		res.Run1Value,
		res.Run2Value,
		res.BestRun,
		res.FinalPosition,
		res.PointsAwarded,
		res.PayoutAmount,
		res.IsFlagged,
		res.Status,
	).Scan(&res.ID, &res.Version)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrResultAlreadyExists
		}
		return fmt.Errorf("failed to create event result: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) GetByID(ctx context.Context, id int) (*models.EventResult, error) {
	query := `SELECT ` + resultColumns + ` FROM event_results WHERE id = $1`

	res := &models.EventResult{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to scan event result by id %d: %w", id, err)
	}
	return res, nil
}

func (r *postgresResultRepository) GetByCompetitor(ctx context.Context, eventID, competitorID int, competitorType models.CompetitorType) (*models.EventResult, error) {
	query := `SELECT ` + resultColumns + ` FROM event_results
		WHERE event_id = $1 AND competitor_id = $2 AND competitor_type = $3`

	res := &models.EventResult{}
	err := r.scan(r.db.QueryRowContext(ctx, query, eventID, competitorID, competitorType), res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to scan event result: %w", err)
	}
	return res, nil
}

func (r *postgresResultRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error) {
	query := `SELECT ` + resultColumns + ` FROM event_results WHERE event_id = $1 ORDER BY id`
	return r.list(ctx, query, eventID)
}

func (r *postgresResultRepository) ListByCompetitor(ctx context.Context, competitorID int, competitorType models.CompetitorType) ([]*models.EventResult, error) {
	query := `SELECT ` + resultColumns + ` FROM event_results
		WHERE competitor_id = $1 AND competitor_type = $2 ORDER BY event_id`
	return r.list(ctx, query, competitorID, competitorType)
}

func (r *postgresResultRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.EventResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list event results: %w", err)
	}
	defer rows.Close()

	var out []*models.EventResult
	for rows.Next() {
		res := &models.EventResult{}
		if err := r.scan(rows, res); err != nil {
			return nil, fmt.Errorf("failed to scan event result row: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *postgresResultRepository) Update(ctx context.Context, exec SQLExecutor, res *models.EventResult) error {
	query := `
		UPDATE event_results
		SET competitor_name = $1, partner_name = $2, result_value = $3, result_unit = $4,
		    run1_value = $5, run2_value = $6, best_run = $7, final_position = $8,
		    points_awarded = $9, payout_amount = $10, is_flagged = $11, status = $12,
		    version = version + 1
		WHERE id = $13 AND version = $14`

	result, err := exec.ExecContext(ctx, query,
		res.CompetitorName, res.PartnerName, res.ResultValue, res.ResultUnit,
		res.Run1Value, res.Run2Value, res.BestRun, res.FinalPosition,
		res.PointsAwarded, res.PayoutAmount, res.IsFlagged, res.Status,
		res.ID, res.Version)
	if err != nil {
		return fmt.Errorf("failed to update event result: %w", err)
	}
	if err := checkAffectedRows(result, ErrResultVersionConflict); err != nil {
		return err
	}
	res.Version++
	return nil
}

func (r *postgresResultRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM event_results WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event result: %w", err)
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM event_results WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete event results: %w", err)
	}
	return nil
}
