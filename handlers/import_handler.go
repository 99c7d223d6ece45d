package handlers

import (
	"io"
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// ImportHandler accepts registration spreadsheets exported as CSV.
type ImportHandler struct {
	imports *services.ImportService
}

func NewImportHandler(imports *services.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// csvBody returns the uploaded file when the request is multipart, the raw
// body otherwise.
func csvBody(r *http.Request) io.Reader {
	if err := r.ParseMultipartForm(10 << 20); err == nil {
		file, _, err := r.FormFile("file")
		if err == nil {
			return file
		}
	}
	return r.Body
}

// ImportCollegeRosterHandler handles POST /tournaments/{tournamentID}/import/college.
// All-or-nothing: a single invalid team aborts the whole upload.
func (h *ImportHandler) ImportCollegeRosterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, tournamentID)
	summary, err := h.imports.ImportCollegeRoster(r.Context(), rc, tournamentID, csvBody(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewProEntriesHandler handles POST /tournaments/{tournamentID}/import/pro/preview.
// Parses the sheet and returns flagged entries without writing anything.
func (h *ImportHandler) PreviewProEntriesHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := getIDFromURL(r, "tournamentID"); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	previews, err := h.imports.ParseProEntries(csvBody(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": previews}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmProEntriesHandler handles POST /tournaments/{tournamentID}/import/pro/confirm.
// Takes the reviewed entries back and upserts them.
func (h *ImportHandler) ConfirmProEntriesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Entries []services.ProEntry `json:"entries"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, tournamentID)
	summary, err := h.imports.ConfirmProEntries(r.Context(), rc, tournamentID, input.Entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
