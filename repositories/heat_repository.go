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
	ErrHeatNotFound        = errors.New("heat not found")
	ErrHeatAlreadyExists   = errors.New("heat already exists for this event, number and run")
	ErrHeatVersionConflict = errors.New("heat was modified concurrently")
)

type HeatRepository interface {
	Create(ctx context.Context, exec SQLExecutor, heat *models.Heat, competitorType models.CompetitorType) error
	GetByID(ctx context.Context, id int) (*models.Heat, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Heat, error)
	ListByFlight(ctx context.Context, flightID int) ([]*models.Heat, error)
	ListAssignments(ctx context.Context, heatID int) ([]*models.HeatAssignment, error)
	// Update bumps the version and fails with ErrHeatVersionConflict when the
	// stored row no longer carries heat.Version. The heat_assignments mirror is
	// rewritten in the same call.
	Update(ctx context.Context, exec SQLExecutor, heat *models.Heat, competitorType models.CompetitorType) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error
	SetFlight(ctx context.Context, exec SQLExecutor, id int, flightID *int) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

type postgresHeatRepository struct {
	db *sql.DB
}

func NewPostgresHeatRepository(db *sql.DB) HeatRepository {
	return &postgresHeatRepository{db: db}
}

const heatColumns = `id, event_id, heat_number, run_number, competitors, stand_assignments, status, version, flight_id`

func (r *postgresHeatRepository) scan(row interface{ Scan(...interface{}) error }, h *models.Heat) error {
	var competitorsRaw, standsRaw string
	if err := row.Scan(
		&h.ID,
		&h.EventID,
		&h.HeatNumber,
		&h.RunNumber,
		&competitorsRaw,
		&standsRaw,
		&h.Status,
		&h.Version,
		&h.FlightID,
	); err != nil {
		return err
	}

	var err error
	if h.Competitors, err = unmarshalIntSlice(competitorsRaw); err != nil {
		return err
	}
	if h.StandAssignments, err = unmarshalIntIntMap(standsRaw); err != nil {
		return err
	}
	return nil
}

func (r *postgresHeatRepository) Create(ctx context.Context, exec SQLExecutor, heat *models.Heat, competitorType models.CompetitorType) error {
	competitorsRaw, err := marshalJSON(heat.Competitors, "[]")
	if err != nil {
		return err
	}
	standsRaw, err := marshalIntIntMap(heat.StandAssignments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO heats (event_id, heat_number, run_number, competitors, stand_assignments, status, flight_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version`

	err = exec.QueryRowContext(ctx, query,
		heat.EventID,
		heat.HeatNumber,
		heat.RunNumber,
		competitorsRaw,
		standsRaw,
		heat.Status,
		heat.FlightID,
	).Scan(&heat.ID, &heat.Version)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrHeatAlreadyExists
		}
		return fmt.Errorf("failed to create heat: %w", err)
	}

	return r.writeAssignments(ctx, exec, heat, competitorType)
}

// writeAssignments rewrites the heat_assignments mirror so it is set-equal to
// heat.Competitors.
func (r *postgresHeatRepository) writeAssignments(ctx context.Context, exec SQLExecutor, heat *models.Heat, competitorType models.CompetitorType) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM heat_assignments WHERE heat_id = $1`, heat.ID); err != nil {
		return fmt.Errorf("failed to clear heat assignments: %w", err)
	}

	for _, competitorID := range heat.Competitors {
		var stand *int
		if s, ok := heat.StandAssignments[competitorID]; ok {
			stand = &s
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO heat_assignments (heat_id, competitor_id, competitor_type, stand_number)
			VALUES ($1, $2, $3, $4)`,
			heat.ID, competitorID, competitorType, stand)
		if err != nil {
			return fmt.Errorf("failed to create heat assignment: %w", err)
		}
	}
	return nil
}

func (r *postgresHeatRepository) GetByID(ctx context.Context, id int) (*models.Heat, error) {
	query := `SELECT ` + heatColumns + ` FROM heats WHERE id = $1`

	h := &models.Heat{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), h)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHeatNotFound
		}
		return nil, fmt.Errorf("failed to scan heat by id %d: %w", id, err)
	}
	return h, nil
}

func (r *postgresHeatRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Heat, error) {
	query := `SELECT ` + heatColumns + ` FROM heats WHERE event_id = $1 ORDER BY run_number, heat_number`
	return r.list(ctx, query, eventID)
}

func (r *postgresHeatRepository) ListByFlight(ctx context.Context, flightID int) ([]*models.Heat, error) {
	query := `SELECT ` + heatColumns + ` FROM heats WHERE flight_id = $1 ORDER BY id`
	return r.list(ctx, query, flightID)
}

func (r *postgresHeatRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Heat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list heats: %w", err)
	}
	defer rows.Close()

	var out []*models.Heat
	for rows.Next() {
		h := &models.Heat{}
		if err := r.scan(rows, h); err != nil {
			return nil, fmt.Errorf("failed to scan heat row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *postgresHeatRepository) ListAssignments(ctx context.Context, heatID int) ([]*models.HeatAssignment, error) {
	query := `SELECT id, heat_id, competitor_id, competitor_type, stand_number
		FROM heat_assignments WHERE heat_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, heatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list heat assignments: %w", err)
	}
	defer rows.Close()

	var out []*models.HeatAssignment
	for rows.Next() {
		a := &models.HeatAssignment{}
		if err := rows.Scan(&a.ID, &a.HeatID, &a.CompetitorID, &a.CompetitorType, &a.StandNumber); err != nil {
			return nil, fmt.Errorf("failed to scan heat assignment row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *postgresHeatRepository) Update(ctx context.Context, exec SQLExecutor, heat *models.Heat, competitorType models.CompetitorType) error {
	competitorsRaw, err := marshalJSON(heat.Competitors, "[]")
	if err != nil {
		return err
	}
	standsRaw, err := marshalIntIntMap(heat.StandAssignments)
	if err != nil {
		return err
	}

	query := `
		UPDATE heats
		SET competitors = $1, stand_assignments = $2, status = $3, flight_id = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6`

	result, err := exec.ExecContext(ctx, query,
		competitorsRaw, standsRaw, heat.Status, heat.FlightID, heat.ID, heat.Version)
	if err != nil {
		return fmt.Errorf("failed to update heat: %w", err)
	}
	if err := checkAffectedRows(result, ErrHeatVersionConflict); err != nil {
		return err
	}
	heat.Version++

	return r.writeAssignments(ctx, exec, heat, competitorType)
}

func (r *postgresHeatRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error {
	result, err := exec.ExecContext(ctx, `UPDATE heats SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update heat status: %w", err)
	}
	return checkAffectedRows(result, ErrHeatNotFound)
}

func (r *postgresHeatRepository) SetFlight(ctx context.Context, exec SQLExecutor, id int, flightID *int) error {
	result, err := exec.ExecContext(ctx, `UPDATE heats SET flight_id = $1 WHERE id = $2`, flightID, id)
	if err != nil {
		return fmt.Errorf("failed to set heat flight: %w", err)
	}
	return checkAffectedRows(result, ErrHeatNotFound)
}

func (r *postgresHeatRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM heats WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete heats: %w", err)
	}
	return nil
}
