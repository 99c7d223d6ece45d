package models

// RequestContext carries the request-scoped facts services need for
// permission checks and audit rows. Handlers build it once per request and
// pass it explicitly; services never reach into HTTP state.
type RequestContext struct {
	Actor        *User
	TournamentID int
	IPAddress    string
	UserAgent    string
}

// ActorID returns the acting user's id, or nil for unauthenticated callers.
func (rc *RequestContext) ActorID() *int {
	if rc == nil || rc.Actor == nil {
		return nil
	}
	return &rc.Actor.ID
}
