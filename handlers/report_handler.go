package handlers

import (
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// ReportHandler serves the cached read views. The public endpoints are
// unauthenticated; routing decides which face a request comes in through.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// StandingsHandler handles GET /tournaments/{tournamentID}/standings.
func (h *ReportHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reports.Standings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PollHandler handles GET /tournaments/{tournamentID}/standings-poll: the
// short-TTL view big screens refresh against.
func (h *ReportHandler) PollHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	poll, err := h.reports.Poll(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"poll": poll}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultsHandler handles GET /tournaments/{tournamentID}/results.
func (h *ReportHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.reports.Results(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScheduleHandler handles GET /tournaments/{tournamentID}/schedule.
func (h *ReportHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.reports.Schedule(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": schedule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CollegePortalHandler handles GET /tournaments/{tournamentID}/portal/college.
func (h *ReportHandler) CollegePortalHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	portal, err := h.reports.CollegePortalView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"portal": portal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ProPortalHandler handles GET /tournaments/{tournamentID}/portal/pro.
func (h *ReportHandler) ProPortalHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	portal, err := h.reports.ProPortalView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"portal": portal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
