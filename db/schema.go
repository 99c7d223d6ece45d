package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the full DDL for a fresh database. Statements are ordered so that
// foreign keys always reference already-created tables.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id SERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		year INT NOT NULL,
		college_date DATE,
		pro_date DATE,
		friday_feature_date DATE,
		status VARCHAR(50) NOT NULL DEFAULT 'setup',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		team_code VARCHAR(20) NOT NULL,
		school_name VARCHAR(200) NOT NULL,
		school_abbreviation VARCHAR(20) NOT NULL,
		total_points INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		CONSTRAINT teams_tournament_id_team_code_key UNIQUE (tournament_id, team_code)
	)`,

	`CREATE TABLE IF NOT EXISTS college_competitors (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		team_id INT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		name VARCHAR(200) NOT NULL,
		gender VARCHAR(1) NOT NULL,
		individual_points INT NOT NULL DEFAULT 0,
		events_entered TEXT NOT NULL DEFAULT '[]',
		partners TEXT NOT NULL DEFAULT '{}',
		gear_sharing TEXT NOT NULL DEFAULT '{}',
		lottery_opt_in BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(20) NOT NULL DEFAULT 'active'
	)`,

	`CREATE TABLE IF NOT EXISTS pro_competitors (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		name VARCHAR(200) NOT NULL,
		gender VARCHAR(1) NOT NULL,
		address TEXT,
		phone VARCHAR(50),
		email VARCHAR(200),
		shirt_size VARCHAR(10),
		is_ala_member BOOLEAN NOT NULL DEFAULT FALSE,
		lottery_opt_in BOOLEAN NOT NULL DEFAULT FALSE,
		is_left_handed_springboard BOOLEAN NOT NULL DEFAULT FALSE,
		events_entered TEXT NOT NULL DEFAULT '[]',
		entry_fees TEXT NOT NULL DEFAULT '{}',
		fees_paid TEXT NOT NULL DEFAULT '{}',
		partners TEXT NOT NULL DEFAULT '{}',
		gear_sharing TEXT NOT NULL DEFAULT '{}',
		total_earnings DOUBLE PRECISION NOT NULL DEFAULT 0,
		payout_settled BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(20) NOT NULL DEFAULT 'active'
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		name VARCHAR(200) NOT NULL,
		event_type VARCHAR(20) NOT NULL,
		gender VARCHAR(10),
		scoring_type VARCHAR(20) NOT NULL,
		scoring_order VARCHAR(20) NOT NULL DEFAULT 'lowest_wins',
		is_open BOOLEAN NOT NULL DEFAULT FALSE,
		is_partnered BOOLEAN NOT NULL DEFAULT FALSE,
		partner_gender_requirement VARCHAR(10),
		requires_dual_runs BOOLEAN NOT NULL DEFAULT FALSE,
		stand_type VARCHAR(50),
		max_stands INT,
		has_prelims BOOLEAN NOT NULL DEFAULT FALSE,
		payouts TEXT NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
	)`,
	`CREATE INDEX IF NOT EXISTS ix_events_tournament_type_status
		ON events (tournament_id, event_type, status)`,

	`CREATE TABLE IF NOT EXISTS flights (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		flight_number INT NOT NULL,
		name VARCHAR(100),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		notes TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS heats (
		id SERIAL PRIMARY KEY,
		event_id INT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		heat_number INT NOT NULL,
		run_number INT NOT NULL DEFAULT 1,
		competitors TEXT NOT NULL DEFAULT '[]',
		stand_assignments TEXT NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		version INT NOT NULL DEFAULT 1,
		flight_id INT REFERENCES flights(id) ON DELETE SET NULL,
		CONSTRAINT heats_event_id_heat_number_run_number_key UNIQUE (event_id, heat_number, run_number)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_heats_event_status ON heats (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS ix_heats_flight_id ON heats (flight_id)`,

	`CREATE TABLE IF NOT EXISTS heat_assignments (
		id SERIAL PRIMARY KEY,
		heat_id INT NOT NULL REFERENCES heats(id) ON DELETE CASCADE,
		competitor_id INT NOT NULL,
		competitor_type VARCHAR(20) NOT NULL,
		stand_number INT
	)`,
	`CREATE INDEX IF NOT EXISTS ix_heat_assignments_heat_id ON heat_assignments (heat_id)`,

	`CREATE TABLE IF NOT EXISTS event_results (
		id SERIAL PRIMARY KEY,
		event_id INT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		competitor_id INT NOT NULL,
		competitor_type VARCHAR(20) NOT NULL,
		competitor_name VARCHAR(200) NOT NULL,
		partner_name VARCHAR(200),
		result_value DOUBLE PRECISION,
		result_unit VARCHAR(20),
		run1_value DOUBLE PRECISION,
		run2_value DOUBLE PRECISION,
		best_run DOUBLE PRECISION,
		final_position INT,
		points_awarded INT NOT NULL DEFAULT 0,
		payout_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_flagged BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		version INT NOT NULL DEFAULT 1,
		CONSTRAINT event_results_event_competitor_key UNIQUE (event_id, competitor_id, competitor_type)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_event_results_event_status ON event_results (event_id, status)`,

	`CREATE TABLE IF NOT EXISTS school_captains (
		id SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		school_name VARCHAR(200) NOT NULL,
		pin_hash VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT school_captains_tournament_id_school_name_key UNIQUE (tournament_id, school_name)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(80) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'spectator',
		tournament_id INT REFERENCES tournaments(id) ON DELETE SET NULL,
		competitor_type VARCHAR(20),
		competitor_id INT,
		display_name VARCHAR(200),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id SERIAL PRIMARY KEY,
		actor_user_id INT REFERENCES users(id) ON DELETE SET NULL,
		action VARCHAR(80) NOT NULL,
		entity_type VARCHAR(80) NOT NULL,
		entity_id INT,
		ip_address VARCHAR(64),
		user_agent VARCHAR(255),
		details TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_audit_logs_created_at ON audit_logs (created_at)`,
	`CREATE INDEX IF NOT EXISTS ix_audit_logs_actor ON audit_logs (actor_user_id)`,
	`CREATE INDEX IF NOT EXISTS ix_audit_logs_action ON audit_logs (action)`,
}

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
