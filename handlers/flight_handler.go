package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

type FlightHandler struct {
	flights *services.FlightService
}

func NewFlightHandler(flights *services.FlightService) *FlightHandler {
	return &FlightHandler{flights: flights}
}

// BuildHandler handles POST /tournaments/{tournamentID}/flights. Queues the
// flight build on the job runner and returns the job for polling.
func (h *FlightHandler) BuildHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, tournamentID)
	job, err := h.flights.ScheduleBuild(rc, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"job": job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments/{tournamentID}/flights.
func (h *FlightHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	flights, err := h.flights.List(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flights": flights}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HeatsHandler handles GET /flights/{flightID}/heats.
func (h *FlightHandler) HeatsHandler(w http.ResponseWriter, r *http.Request) {
	flightID, err := getIDFromURL(r, "flightID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	heats, err := h.flights.Heats(r.Context(), flightID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"heats": heats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
