package models

import "time"

// UserRole determines a user's write capabilities.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleJudge      UserRole = "judge"
	RoleScorer     UserRole = "scorer"
	RoleRegistrar  UserRole = "registrar"
	RoleCompetitor UserRole = "competitor"
	RoleSpectator  UserRole = "spectator"
	RoleViewer     UserRole = "viewer"
)

// User is an application account with role-based access control.
type User struct {
	ID             int             `json:"id" db:"id"`
	Username       string          `json:"username" db:"username"`
	PasswordHash   string          `json:"-" db:"password_hash"`
	Role           UserRole        `json:"role" db:"role"`
	TournamentID   *int            `json:"tournament_id,omitempty" db:"tournament_id"`
	CompetitorType *CompetitorType `json:"competitor_type,omitempty" db:"competitor_type"`
	CompetitorID   *int            `json:"competitor_id,omitempty" db:"competitor_id"`
	DisplayName    *string         `json:"display_name,omitempty" db:"display_name"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsJudge() bool {
	return u.Role == RoleAdmin || u.Role == RoleJudge
}

func (u *User) CanManageUsers() bool { return u.IsAdmin() }

func (u *User) CanRegister() bool {
	switch u.Role {
	case RoleAdmin, RoleJudge, RoleRegistrar:
		return true
	}
	return false
}

func (u *User) CanSchedule() bool {
	switch u.Role {
	case RoleAdmin, RoleJudge, RoleScorer:
		return true
	}
	return false
}

func (u *User) CanScore() bool {
	switch u.Role {
	case RoleAdmin, RoleJudge, RoleScorer:
		return true
	}
	return false
}

func (u *User) CanReport() bool {
	switch u.Role {
	case RoleAdmin, RoleJudge, RoleScorer, RoleRegistrar, RoleViewer, RoleSpectator:
		return true
	}
	return false
}
