package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginHandler handles POST /auth/login.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CaptainLoginHandler handles POST /auth/captain-login. A school's first
// login with an unset PIN claims the profile.
func (h *AuthHandler) CaptainLoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID int    `json:"tournament_id"`
		SchoolName   string `json:"school_name"`
		Pin          string `json:"pin"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, input.TournamentID)
	captain, token, err := h.auth.CaptainLogin(r.Context(), rc, input.TournamentID, input.SchoolName, input.Pin)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"captain": captain, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ChangePasswordHandler handles POST /auth/change-password for the
// authenticated user.
func (h *AuthHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	if err := h.auth.ChangePassword(r.Context(), rc, user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "password updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetCaptainPinHandler handles POST /captains/{captainID}/reset-pin.
func (h *AuthHandler) ResetCaptainPinHandler(w http.ResponseWriter, r *http.Request) {
	captainID, err := getIDFromURL(r, "captainID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	if err := h.auth.ResetCaptainPin(r.Context(), rc, captainID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "pin reset"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
