package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
)

// withTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. Panics roll back and re-raise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeName reduces an event name to a comparison key: lowercase with
// everything except letters and digits stripped.
func normalizeName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

func isValidTournamentTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentSetup:         {models.TournamentCollegeActive},
		models.TournamentCollegeActive: {models.TournamentProActive},
		models.TournamentProActive:     {models.TournamentCompleted},
		models.TournamentCompleted:     {},
	}
	for _, s := range allowed[current] {
		if next == s {
			return true
		}
	}
	return false
}

// activeOnly is the status filter most listings use.
func activeOnly() *string {
	s := models.CompetitorActive
	return &s
}
