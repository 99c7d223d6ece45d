package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	// Generic not-found, used when a more specific sentinel adds nothing.
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule failures.
	ErrValidationFailed    = errors.New("validation failed")
	ErrRegistrationClosed  = errors.New("registration is closed for this tournament")
	ErrEventNotScoreable   = errors.New("event cannot be scored in its current state")
	ErrHeatNotScoreable    = errors.New("heat cannot be scored in its current state")
	ErrEventNotFinalizable = errors.New("event is not ready to finalize")
	ErrNoEntrants          = errors.New("event has no entrants")
	ErrScheduleNotReady    = errors.New("schedule cannot be built yet")

	// Conflicts.
	ErrVersionConflict  = errors.New("record was modified concurrently, reload and retry")
	ErrDuplicateEntry   = errors.New("record already exists")
	ErrStatusTransition = errors.New("invalid status transition")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrUsernameConflict = errors.New("username is already in use")

	// Authentication and authorization.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidPin         = errors.New("invalid school captain pin")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrPermissionDenied   = errors.New("operation not allowed for the current user")

	// Entity-specific not-founds, kept for context in logs and clients.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrHeatNotFound       = errors.New("heat not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrCaptainNotFound    = errors.New("school captain not found")
)
