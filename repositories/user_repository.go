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
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameConflict = errors.New("username already taken")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, u *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByCompetitor(ctx context.Context, competitorType models.CompetitorType, competitorID int) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, exec SQLExecutor, u *models.User) error
	UpdatePasswordHash(ctx context.Context, exec SQLExecutor, id int, passwordHash string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, username, password_hash, role, tournament_id, competitor_type,
	competitor_id, display_name, is_active, created_at, updated_at`

func (r *postgresUserRepository) scan(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.TournamentID,
		&u.CompetitorType,
		&u.CompetitorID,
		&u.DisplayName,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, u *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, tournament_id, competitor_type, competitor_id, display_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		u.Username,
		u.PasswordHash,
		u.Role,
		u.TournamentID,
		u.CompetitorType,
		u.CompetitorID,
		u.DisplayName,
		u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUsernameConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u := &models.User{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by id %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`

	u := &models.User{}
	err := r.scan(r.db.QueryRowContext(ctx, query, username), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user %q: %w", username, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByCompetitor(ctx context.Context, competitorType models.CompetitorType, competitorID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE competitor_type = $1 AND competitor_id = $2`

	u := &models.User{}
	err := r.scan(r.db.QueryRowContext(ctx, query, competitorType, competitorID), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user for competitor %d: %w", competitorID, err)
	}
	return u, nil
}

func (r *postgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := r.scan(rows, u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *postgresUserRepository) Update(ctx context.Context, exec SQLExecutor, u *models.User) error {
	query := `
		UPDATE users
		SET username = $1, role = $2, tournament_id = $3, competitor_type = $4,
		    competitor_id = $5, display_name = $6, is_active = $7, updated_at = now()
		WHERE id = $8`

	result, err := exec.ExecContext(ctx, query,
		u.Username, u.Role, u.TournamentID, u.CompetitorType,
		u.CompetitorID, u.DisplayName, u.IsActive, u.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUsernameConflict
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, exec SQLExecutor, id int, passwordHash string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
