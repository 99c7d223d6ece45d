package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// BracketHandler covers the Partnered Axe Throw prelim/final flow and the
// Birling single-elimination bracket.
type BracketHandler struct {
	brackets *services.BracketService
}

func NewBracketHandler(brackets *services.BracketService) *BracketHandler {
	return &BracketHandler{brackets: brackets}
}

// StateHandler handles GET /events/{eventID}/bracket.
func (h *BracketHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.brackets.State(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// InitAxeHandler handles POST /events/{eventID}/bracket/axe.
func (h *BracketHandler) InitAxeHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Pairs []services.AxePairEntry `json:"pairs"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.brackets.InitPartneredAxe(r.Context(), rc, eventID, input.Pairs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordAxeScoreHandler handles POST /events/{eventID}/bracket/axe/scores.
func (h *BracketHandler) RecordAxeScoreHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PairID int     `json:"pair_id"`
		Score  float64 `json:"score"`
		Final  bool    `json:"final"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.brackets.RecordAxeScore(r.Context(), rc, eventID, input.PairID, input.Score, input.Final)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceAxeFinalsHandler handles POST /events/{eventID}/bracket/axe/advance.
// Cuts the prelim field to the finals pairs.
func (h *BracketHandler) AdvanceAxeFinalsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	finalists, err := h.brackets.AdvanceAxeFinals(r.Context(), rc, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"finalists": finalists}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeAxeHandler handles POST /events/{eventID}/bracket/axe/finalize.
func (h *BracketHandler) FinalizeAxeHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	placements, err := h.brackets.FinalizeAxe(r.Context(), rc, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"placements": placements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SeedBirlingHandler handles POST /events/{eventID}/bracket/birling.
// Seeds the bracket from current individual points.
func (h *BracketHandler) SeedBirlingHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.brackets.SeedBirling(r.Context(), rc, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScoreBirlingMatchHandler handles POST /events/{eventID}/bracket/birling/matches.
// When the final match resolves, placements settle in the same transaction.
func (h *BracketHandler) ScoreBirlingMatchHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MatchID  int `json:"match_id"`
		WinnerID int `json:"winner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.brackets.ScoreBirlingMatch(r.Context(), rc, eventID, input.MatchID, input.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
