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
	ErrSchoolCaptainNotFound = errors.New("school captain not found")
	ErrSchoolCaptainConflict = errors.New("school captain already exists for this school")
)

type SchoolCaptainRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.SchoolCaptain) error
	GetByID(ctx context.Context, id int) (*models.SchoolCaptain, error)
	GetBySchool(ctx context.Context, tournamentID int, schoolName string) (*models.SchoolCaptain, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.SchoolCaptain, error)
	UpdatePinHash(ctx context.Context, exec SQLExecutor, id int, pinHash *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresSchoolCaptainRepository struct {
	db *sql.DB
}

func NewPostgresSchoolCaptainRepository(db *sql.DB) SchoolCaptainRepository {
	return &postgresSchoolCaptainRepository{db: db}
}

const schoolCaptainColumns = `id, tournament_id, school_name, pin_hash, created_at`

func (r *postgresSchoolCaptainRepository) scan(row interface{ Scan(...interface{}) error }, c *models.SchoolCaptain) error {
	return row.Scan(&c.ID, &c.TournamentID, &c.SchoolName, &c.PinHash, &c.CreatedAt)
}

func (r *postgresSchoolCaptainRepository) Create(ctx context.Context, exec SQLExecutor, c *models.SchoolCaptain) error {
	query := `
		INSERT INTO school_captains (tournament_id, school_name, pin_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query, c.TournamentID, c.SchoolName, c.PinHash).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSchoolCaptainConflict
		}
		return fmt.Errorf("failed to create school captain: %w", err)
	}
	return nil
}

func (r *postgresSchoolCaptainRepository) GetByID(ctx context.Context, id int) (*models.SchoolCaptain, error) {
	query := `SELECT ` + schoolCaptainColumns + ` FROM school_captains WHERE id = $1`

	c := &models.SchoolCaptain{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSchoolCaptainNotFound
		}
		return nil, fmt.Errorf("failed to scan school captain %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresSchoolCaptainRepository) GetBySchool(ctx context.Context, tournamentID int, schoolName string) (*models.SchoolCaptain, error) {
	query := `SELECT ` + schoolCaptainColumns + ` FROM school_captains
		WHERE tournament_id = $1 AND school_name = $2`

	c := &models.SchoolCaptain{}
	err := r.scan(r.db.QueryRowContext(ctx, query, tournamentID, schoolName), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSchoolCaptainNotFound
		}
		return nil, fmt.Errorf("failed to scan school captain %q: %w", schoolName, err)
	}
	return c, nil
}

func (r *postgresSchoolCaptainRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SchoolCaptain, error) {
	query := `SELECT ` + schoolCaptainColumns + ` FROM school_captains
		WHERE tournament_id = $1 ORDER BY school_name`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list school captains: %w", err)
	}
	defer rows.Close()

	var out []*models.SchoolCaptain
	for rows.Next() {
		c := &models.SchoolCaptain{}
		if err := r.scan(rows, c); err != nil {
			return nil, fmt.Errorf("failed to scan school captain row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresSchoolCaptainRepository) UpdatePinHash(ctx context.Context, exec SQLExecutor, id int, pinHash *string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE school_captains SET pin_hash = $1 WHERE id = $2`, pinHash, id)
	if err != nil {
		return fmt.Errorf("failed to update school captain pin: %w", err)
	}
	return checkAffectedRows(result, ErrSchoolCaptainNotFound)
}

func (r *postgresSchoolCaptainRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM school_captains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete school captain: %w", err)
	}
	return checkAffectedRows(result, ErrSchoolCaptainNotFound)
}
