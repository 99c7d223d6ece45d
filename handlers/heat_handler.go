package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// HeatHandler covers heat generation and the tournament-wide readiness
// check.
type HeatHandler struct {
	heats      *services.HeatService
	validation *services.ValidationService
}

func NewHeatHandler(heats *services.HeatService, validation *services.ValidationService) *HeatHandler {
	return &HeatHandler{heats: heats, validation: validation}
}

// GenerateHandler handles POST /events/{eventID}/heats. Regenerates the
// event's heats from current entries.
func (h *HeatHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	heats, err := h.heats.GenerateForEvent(r.Context(), rc, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"heats": heats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /events/{eventID}/heats.
func (h *HeatHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	heats, err := h.heats.ListForEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"heats": heats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ValidateTournamentHandler handles GET /tournaments/{tournamentID}/validate.
// Runs every registration and heat check and returns the combined report.
func (h *HeatHandler) ValidateTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.validation.ValidateTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"validation": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
