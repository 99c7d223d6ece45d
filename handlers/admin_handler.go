package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/jobs"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// AdminHandler covers background jobs, backups, SMS and the audit trail.
type AdminHandler struct {
	runner jobs.Runner
	backup *services.BackupService
	notify *services.NotifyService
	audit  *services.AuditService
}

func NewAdminHandler(runner jobs.Runner, backup *services.BackupService, notify *services.NotifyService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{runner: runner, backup: backup, notify: notify, audit: audit}
}

// ListJobsHandler handles GET /admin/jobs.
func (h *AdminHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"jobs": h.runner.List()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetJobHandler handles GET /admin/jobs/{jobID}.
func (h *AdminHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	job, err := h.runner.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"job": job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScheduleBackupHandler handles POST /tournaments/{tournamentID}/backup.
// Queues a snapshot upload and returns the job for polling.
func (h *AdminHandler) ScheduleBackupHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	job, err := h.backup.Schedule(tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"job": job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BroadcastSMSHandler handles POST /tournaments/{tournamentID}/sms.
func (h *AdminHandler) BroadcastSMSHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Body string `json:"body"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	job, err := h.notify.BroadcastPros(r.Context(), tournamentID, input.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"job": job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAuditHandler handles GET /admin/audit?limit=&action=&actor=.
func (h *AdminHandler) ListAuditHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	var action *string
	if raw := r.URL.Query().Get("action"); raw != "" {
		action = &raw
	}
	var actor *int
	if raw := r.URL.Query().Get("actor"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			actor = &parsed
		}
	}

	entries, err := h.audit.List(r.Context(), limit, action, actor)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"audit": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
