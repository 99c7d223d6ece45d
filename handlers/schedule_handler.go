package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

type ScheduleHandler struct {
	schedule *services.ScheduleService
}

func NewScheduleHandler(schedule *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// BuildHandler handles POST /tournaments/{tournamentID}/schedule. The
// operator may pick the Friday pro feature events and which college events
// spill into Saturday.
func (h *ScheduleHandler) BuildHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		FridayProEventIDs       []int `json:"friday_pro_event_ids"`
		SaturdayCollegeEventIDs []int `json:"saturday_college_event_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.schedule.Build(r.Context(), tournamentID, input.FridayProEventIDs, input.SaturdayCollegeEventIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": schedule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HydrateHandler handles POST /schedule/hydrate: attaches heat detail to a
// previously built slot list for the announcer view.
func (h *ScheduleHandler) HydrateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Slots []services.ScheduleSlot `json:"slots"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hydrated, err := h.schedule.Hydrate(r.Context(), input.Slots)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slots": hydrated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
