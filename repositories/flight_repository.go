package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
)

var ErrFlightNotFound = errors.New("flight not found")

type FlightRepository interface {
	Create(ctx context.Context, exec SQLExecutor, f *models.Flight) error
	GetByID(ctx context.Context, id int) (*models.Flight, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Flight, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresFlightRepository struct {
	db *sql.DB
}

func NewPostgresFlightRepository(db *sql.DB) FlightRepository {
	return &postgresFlightRepository{db: db}
}

const flightColumns = `id, tournament_id, flight_number, name, status, notes`

func (r *postgresFlightRepository) scan(row interface{ Scan(...interface{}) error }, f *models.Flight) error {
	return row.Scan(&f.ID, &f.TournamentID, &f.FlightNumber, &f.Name, &f.Status, &f.Notes)
}

func (r *postgresFlightRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Flight) error {
	query := `
		INSERT INTO flights (tournament_id, flight_number, name, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		f.TournamentID, f.FlightNumber, f.Name, f.Status, f.Notes).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	return nil
}

func (r *postgresFlightRepository) GetByID(ctx context.Context, id int) (*models.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`

	f := &models.Flight{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to scan flight by id %d: %w", id, err)
	}
	return f, nil
}

func (r *postgresFlightRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE tournament_id = $1 ORDER BY flight_number`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	defer rows.Close()

	var out []*models.Flight
	for rows.Next() {
		f := &models.Flight{}
		if err := r.scan(rows, f); err != nil {
			return nil, fmt.Errorf("failed to scan flight row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *postgresFlightRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error {
	result, err := exec.ExecContext(ctx, `UPDATE flights SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update flight status: %w", err)
	}
	return checkAffectedRows(result, ErrFlightNotFound)
}

func (r *postgresFlightRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM flights WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete flights: %w", err)
	}
	return nil
}
