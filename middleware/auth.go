package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

type contextKey string

const (
	userContextKey    contextKey = "user"
	captainContextKey contextKey = "captain"
)

// Authenticate verifies the bearer token and loads the user onto the
// request context. Captain tokens (no user_id claim) are resolved to their
// captain profile instead.
func Authenticate(auth *services.AuthService, users UserLoader, captains CaptainLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := auth.VerifyToken(token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			if rawID, ok := claims["user_id"]; ok {
				id, ok := claimInt(rawID)
				if !ok {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				user, err := users.GetByID(ctx, id)
				if err != nil || !user.IsActive {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				ctx = context.WithValue(ctx, userContextKey, user)
			} else if rawID, ok := claims["captain_id"]; ok {
				id, ok := claimInt(rawID)
				if !ok {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				captain, err := captains.GetByID(ctx, id)
				if err != nil {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				ctx = context.WithValue(ctx, captainContextKey, captain)
			} else {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserLoader and CaptainLoader are the slices of the repositories the
// middleware needs, so tests can stub them.
type UserLoader interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type CaptainLoader interface {
	GetByID(ctx context.Context, id int) (*models.SchoolCaptain, error)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Token query parameter supports browser EventSource-style clients.
	return r.URL.Query().Get("token")
}

func claimInt(raw interface{}) (int, bool) {
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) || int(f) <= 0 {
		return 0, false
	}
	return int(f), true
}

// Require builds a capability gate from one of the models.User Can* methods.
func Require(capability func(*models.User) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || !capability(user) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Staff-role gates, named for what they protect.
var (
	RequireRegistrar = Require((*models.User).CanRegister)
	RequireScheduler = Require((*models.User).CanSchedule)
	RequireScorer    = Require((*models.User).CanScore)
	RequireReporter  = Require((*models.User).CanReport)
	RequireAdmin     = Require((*models.User).CanManageUsers)
)
