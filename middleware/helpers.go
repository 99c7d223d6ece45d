package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
)

// UserFromContext returns the authenticated staff user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// CaptainFromContext returns the authenticated school captain, or nil.
func CaptainFromContext(ctx context.Context) *models.SchoolCaptain {
	captain, _ := ctx.Value(captainContextKey).(*models.SchoolCaptain)
	return captain
}

// BuildRequestContext assembles the request facts services want for audit
// rows. Works for authenticated and anonymous requests alike.
func BuildRequestContext(r *http.Request, tournamentID int) *models.RequestContext {
	return &models.RequestContext{
		Actor:        UserFromContext(r.Context()),
		TournamentID: tournamentID,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
