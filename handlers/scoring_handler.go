package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

type ScoringHandler struct {
	scoring *services.ScoringService
}

func NewScoringHandler(scoring *services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoring: scoring}
}

// SubmitHeatHandler handles POST /heats/{heatID}/scores. The client echoes
// the heat version it loaded; a stale version is a 409.
func (h *ScoringHandler) SubmitHeatHandler(w http.ResponseWriter, r *http.Request) {
	heatID, err := getIDFromURL(r, "heatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Version int                   `json:"version"`
		Entries []services.ScoreEntry `json:"entries"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	heat, warnings, err := h.scoring.SubmitHeat(r.Context(), rc, heatID, input.Version, input.Entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	body := jsonResponse{"heat": heat}
	if len(warnings) > 0 {
		body["warnings"] = warnings
	}
	if err := writeJSON(w, http.StatusOK, body, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeHandler handles POST /events/{eventID}/finalize: computes
// placements, awards points or payouts and completes the event.
func (h *ScoringHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	results, err := h.scoring.Finalize(r.Context(), rc, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
