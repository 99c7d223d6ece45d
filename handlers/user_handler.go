package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// UserHandler covers staff account administration. Admin only; routes
// enforce that.
type UserHandler struct {
	auth  *services.AuthService
	users repositories.UserRepository
}

func NewUserHandler(auth *services.AuthService, users repositories.UserRepository) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// CreateHandler handles POST /users.
func (h *UserHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username       string                 `json:"username"`
		Password       string                 `json:"password"`
		Role           models.UserRole        `json:"role"`
		DisplayName    *string                `json:"display_name"`
		TournamentID   *int                   `json:"tournament_id"`
		CompetitorType *models.CompetitorType `json:"competitor_type"`
		CompetitorID   *int                   `json:"competitor_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user := &models.User{
		Username:       input.Username,
		Role:           input.Role,
		DisplayName:    input.DisplayName,
		TournamentID:   input.TournamentID,
		CompetitorType: input.CompetitorType,
		CompetitorID:   input.CompetitorID,
	}

	rc := middleware.BuildRequestContext(r, 0)
	if err := h.auth.CreateUser(r.Context(), rc, user, input.Password); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /users.
func (h *UserHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"users": users}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
