package handlers

import (
	"errors"
	"net/http"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// RegistrationHandler covers teams and competitors for both competitions.
type RegistrationHandler struct {
	registration *services.RegistrationService
}

func NewRegistrationHandler(registration *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// CreateTeamHandler handles POST /tournaments/{tournamentID}/teams.
func (h *RegistrationHandler) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamCode   string `json:"team_code"`
		SchoolName string `json:"school_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team := &models.Team{
		TournamentID: tournamentID,
		TeamCode:     input.TeamCode,
		SchoolName:   input.SchoolName,
	}
	rc := middleware.BuildRequestContext(r, tournamentID)
	if err := h.registration.CreateTeam(r.Context(), rc, team); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTeamsHandler handles GET /tournaments/{tournamentID}/teams.
func (h *RegistrationHandler) ListTeamsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.registration.Teams(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetTeamStatusHandler handles PATCH /teams/{teamID}/status.
func (h *RegistrationHandler) SetTeamStatusHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := readStatusInput(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	if err := h.registration.SetTeamStatus(r.Context(), rc, teamID, status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateCollegeCompetitorHandler handles POST /tournaments/{tournamentID}/college-competitors.
func (h *RegistrationHandler) CreateCollegeCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var competitor models.CollegeCompetitor
	if err := readJSON(w, r, &competitor); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitor.TournamentID = tournamentID

	rc := middleware.BuildRequestContext(r, tournamentID)
	check, err := h.registration.CreateCollegeCompetitor(r.Context(), rc, &competitor)
	if err != nil {
		writeValidationFailure(w, r, check, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competitor": competitor, "validation": check}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateCollegeCompetitorHandler handles PUT /college-competitors/{competitorID}.
func (h *RegistrationHandler) UpdateCollegeCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var competitor models.CollegeCompetitor
	if err := readJSON(w, r, &competitor); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitor.ID = competitorID

	rc := middleware.BuildRequestContext(r, competitor.TournamentID)
	check, err := h.registration.UpdateCollegeCompetitor(r.Context(), rc, &competitor)
	if err != nil {
		writeValidationFailure(w, r, check, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor, "validation": check}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetCollegeStatusHandler handles PATCH /college-competitors/{competitorID}/status.
// Scratching returns the team's post-change composition check.
func (h *RegistrationHandler) SetCollegeStatusHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := readStatusInput(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	check, err := h.registration.SetCollegeStatus(r.Context(), rc, competitorID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": status, "team_check": check}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateProCompetitorHandler handles POST /tournaments/{tournamentID}/pro-competitors.
func (h *RegistrationHandler) CreateProCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var competitor models.ProCompetitor
	if err := readJSON(w, r, &competitor); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitor.TournamentID = tournamentID

	rc := middleware.BuildRequestContext(r, tournamentID)
	check, err := h.registration.CreateProCompetitor(r.Context(), rc, &competitor)
	if err != nil {
		writeValidationFailure(w, r, check, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competitor": competitor, "validation": check}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateProCompetitorHandler handles PUT /pro-competitors/{competitorID}.
func (h *RegistrationHandler) UpdateProCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var competitor models.ProCompetitor
	if err := readJSON(w, r, &competitor); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitor.ID = competitorID

	rc := middleware.BuildRequestContext(r, competitor.TournamentID)
	check, err := h.registration.UpdateProCompetitor(r.Context(), rc, &competitor)
	if err != nil {
		writeValidationFailure(w, r, check, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor, "validation": check}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetProStatusHandler handles PATCH /pro-competitors/{competitorID}/status.
func (h *RegistrationHandler) SetProStatusHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := readStatusInput(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	if err := h.registration.SetProStatus(r.Context(), rc, competitorID, status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkFeePaidHandler handles POST /pro-competitors/{competitorID}/fees/paid.
func (h *RegistrationHandler) MarkFeePaidHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Fee string `json:"fee"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, 0)
	competitor, err := h.registration.MarkFeePaid(r.Context(), rc, competitorID, input.Fee)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor, "balance": competitor.FeesBalance()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EnsureCaptainHandler handles POST /tournaments/{tournamentID}/captains.
func (h *RegistrationHandler) EnsureCaptainHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		SchoolName string `json:"school_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rc := middleware.BuildRequestContext(r, tournamentID)
	captain, err := h.registration.EnsureCaptain(r.Context(), rc, tournamentID, input.SchoolName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"captain": captain}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func readStatusInput(w http.ResponseWriter, r *http.Request) (string, error) {
	var input struct {
		Status string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		return "", err
	}
	switch input.Status {
	case models.CompetitorActive, models.CompetitorScratched:
		return input.Status, nil
	}
	return "", errors.New("status must be active or scratched")
}

// writeValidationFailure prefers the structured result over the bare
// sentinel message when the service returned one.
func writeValidationFailure(w http.ResponseWriter, r *http.Request, check *models.ValidationResult, err error) {
	if check != nil && errors.Is(err, services.ErrValidationFailed) {
		unprocessableResponse(w, r, check)
		return
	}
	mapServiceErrorToHTTP(w, r, err)
}
