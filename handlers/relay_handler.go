package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// RelayHandler covers the Pro-Am relay lottery and race.
type RelayHandler struct {
	relay *services.RelayService
}

func NewRelayHandler(relay *services.RelayService) *RelayHandler {
	return &RelayHandler{relay: relay}
}

// PoolsHandler handles GET /tournaments/{tournamentID}/relay/pools: the
// opted-in competitors grouped into the four draw buckets.
func (h *RelayHandler) PoolsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pools, err := h.relay.Pools(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pools": pools, "capacity": pools.Capacity()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DrawHandler handles POST /events/{eventID}/relay/draw.
func (h *RelayHandler) DrawHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		NumTeams int `json:"num_teams"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.relay.Draw(r.Context(), rc, eventID, input.NumTeams)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"relay": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetHandler handles DELETE /events/{eventID}/relay: discards the draw.
func (h *RelayHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	if err := h.relay.Reset(r.Context(), rc, eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordTimeHandler handles POST /events/{eventID}/relay/times.
func (h *RelayHandler) RecordTimeHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamNumber int     `json:"team_number"`
		SubEvent   string  `json:"sub_event"`
		Seconds    float64 `json:"seconds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.relay.RecordTime(r.Context(), rc, eventID, input.TeamNumber, input.SubEvent, input.Seconds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"relay": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReplaceMemberHandler handles POST /events/{eventID}/relay/replacements.
func (h *RelayHandler) ReplaceMemberHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamNumber      int                   `json:"team_number"`
		OutgoingID      int                   `json:"outgoing_id"`
		ReplacementID   int                   `json:"replacement_id"`
		ReplacementType models.CompetitorType `json:"replacement_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	state, err := h.relay.ReplaceMember(r.Context(), rc, eventID, input.TeamNumber, input.OutgoingID, input.ReplacementID, input.ReplacementType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"relay": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler handles GET /events/{eventID}/relay/standings.
func (h *RelayHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.relay.Standings(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
