package models

import "time"

// SchoolCaptain is a PIN-protected profile covering all teams from one
// school in a tournament. One captain per school per tournament.
type SchoolCaptain struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	SchoolName   string    `json:"school_name" db:"school_name"`
	PinHash      *string   `json:"-" db:"pin_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (c *SchoolCaptain) HasPin() bool {
	return c.PinHash != nil && *c.PinHash != ""
}
