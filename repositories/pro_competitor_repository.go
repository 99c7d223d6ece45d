package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
)

var ErrProCompetitorNotFound = errors.New("pro competitor not found")

type ProCompetitorRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.ProCompetitor) error
	GetByID(ctx context.Context, id int) (*models.ProCompetitor, error)
	GetByEmail(ctx context.Context, tournamentID int, email string) (*models.ProCompetitor, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *string) ([]*models.ProCompetitor, error)
	Update(ctx context.Context, exec SQLExecutor, c *models.ProCompetitor) error
	UpdateEarnings(ctx context.Context, exec SQLExecutor, id int, totalEarnings float64) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresProCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresProCompetitorRepository(db *sql.DB) ProCompetitorRepository {
	return &postgresProCompetitorRepository{db: db}
}

const proCompetitorColumns = `id, tournament_id, name, gender, address, phone, email, shirt_size,
	is_ala_member, lottery_opt_in, is_left_handed_springboard, events_entered, entry_fees,
	fees_paid, partners, gear_sharing, total_earnings, payout_settled, status`

func (r *postgresProCompetitorRepository) scan(row interface{ Scan(...interface{}) error }, c *models.ProCompetitor) error {
	var eventsRaw, feesRaw, paidRaw, partnersRaw, gearRaw string
	if err := row.Scan(
		&c.ID,
		&c.TournamentID,
		&c.Name,
		&c.Gender,
		&c.Address,
		&c.Phone,
		&c.Email,
		&c.ShirtSize,
		&c.IsALAMember,
		&c.LotteryOptIn,
		&c.IsLeftHandedSpringboard,
		&eventsRaw,
		&feesRaw,
		&paidRaw,
		&partnersRaw,
		&gearRaw,
		&c.TotalEarnings,
		&c.PayoutSettled,
		&c.Status,
	); err != nil {
		return err
	}

	var err error
	if c.EventsEntered, err = unmarshalStringSlice(eventsRaw); err != nil {
		return err
	}
	if c.EntryFees, err = unmarshalFloatMap(feesRaw); err != nil {
		return err
	}
	if c.FeesPaid, err = unmarshalBoolMap(paidRaw); err != nil {
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

func (r *postgresProCompetitorRepository) marshalColumns(c *models.ProCompetitor) (events, fees, paid, partners, gear string, err error) {
	if events, err = marshalJSON(c.EventsEntered, "[]"); err != nil {
		return
	}
	if fees, err = marshalJSON(c.EntryFees, "{}"); err != nil {
		return
	}
	if paid, err = marshalJSON(c.FeesPaid, "{}"); err != nil {
		return
	}
	if partners, err = marshalJSON(c.Partners, "{}"); err != nil {
		return
	}
	gear, err = marshalJSON(c.GearSharing, "{}")
	return
}

func (r *postgresProCompetitorRepository) Create(ctx context.Context, exec SQLExecutor, c *models.ProCompetitor) error {
	eventsRaw, feesRaw, paidRaw, partnersRaw, gearRaw, err := r.marshalColumns(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pro_competitors
			(tournament_id, name, gender, address, phone, email, shirt_size, is_ala_member,
			 lottery_opt_in, is_left_handed_springboard, events_entered, entry_fees, fees_paid,
			 partners, gear_sharing, total_earnings, payout_settled, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query,
		c.TournamentID,
		c.Name,
		c.Gender,
		c.Address,
		c.Phone,
		c.Email,
		c.ShirtSize,
		c.IsALAMember,
		c.LotteryOptIn,
		c.IsLeftHandedSpringboard,
		eventsRaw,
		feesRaw,
		paidRaw,
		partnersRaw,
		gearRaw,
		c.TotalEarnings,
		c.PayoutSettled,
		c.Status,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create pro competitor: %w", err)
	}
	return nil
}

func (r *postgresProCompetitorRepository) GetByID(ctx context.Context, id int) (*models.ProCompetitor, error) {
	query := `SELECT ` + proCompetitorColumns + ` FROM pro_competitors WHERE id = $1`

	c := &models.ProCompetitor{}
	err := r.scan(r.db.QueryRowContext(ctx, query, id), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to scan pro competitor by id %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresProCompetitorRepository) GetByEmail(ctx context.Context, tournamentID int, email string) (*models.ProCompetitor, error) {
	query := `SELECT ` + proCompetitorColumns + ` FROM pro_competitors
		WHERE tournament_id = $1 AND lower(email) = lower($2)`

	c := &models.ProCompetitor{}
	err := r.scan(r.db.QueryRowContext(ctx, query, tournamentID, email), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to scan pro competitor by email: %w", err)
	}
	return c, nil
}

func (r *postgresProCompetitorRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *string) ([]*models.ProCompetitor, error) {
	query := `SELECT ` + proCompetitorColumns + ` FROM pro_competitors WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pro competitors: %w", err)
	}
	defer rows.Close()

	var out []*models.ProCompetitor
	for rows.Next() {
		c := &models.ProCompetitor{}
		if err := r.scan(rows, c); err != nil {
			return nil, fmt.Errorf("failed to scan pro competitor row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresProCompetitorRepository) Update(ctx context.Context, exec SQLExecutor, c *models.ProCompetitor) error {
	eventsRaw, feesRaw, paidRaw, partnersRaw, gearRaw, err := r.marshalColumns(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE pro_competitors
		SET name = $1, gender = $2, address = $3, phone = $4, email = $5, shirt_size = $6,
		    is_ala_member = $7, lottery_opt_in = $8, is_left_handed_springboard = $9,
		    events_entered = $10, entry_fees = $11, fees_paid = $12, partners = $13,
		    gear_sharing = $14, payout_settled = $15, status = $16
		WHERE id = $17`

	result, err := exec.ExecContext(ctx, query,
		c.Name, c.Gender, c.Address, c.Phone, c.Email, c.ShirtSize,
		c.IsALAMember, c.LotteryOptIn, c.IsLeftHandedSpringboard,
		eventsRaw, feesRaw, paidRaw, partnersRaw, gearRaw, c.PayoutSettled, c.Status, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update pro competitor: %w", err)
	}
	return checkAffectedRows(result, ErrProCompetitorNotFound)
}

func (r *postgresProCompetitorRepository) UpdateEarnings(ctx context.Context, exec SQLExecutor, id int, totalEarnings float64) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE pro_competitors SET total_earnings = $1 WHERE id = $2`, totalEarnings, id)
	if err != nil {
		return fmt.Errorf("failed to update pro competitor earnings: %w", err)
	}
	return checkAffectedRows(result, ErrProCompetitorNotFound)
}

func (r *postgresProCompetitorRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE pro_competitors SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update pro competitor status: %w", err)
	}
	return checkAffectedRows(result, ErrProCompetitorNotFound)
}

func (r *postgresProCompetitorRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM pro_competitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pro competitor: %w", err)
	}
	return checkAffectedRows(result, ErrProCompetitorNotFound)
}
