package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/jobs"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/storage"
)

// TournamentSnapshot is the full exportable state of one tournament.
type TournamentSnapshot struct {
	TakenAt     string                     `json:"taken_at"`
	Tournament  *models.Tournament         `json:"tournament"`
	Teams       []*models.Team             `json:"teams"`
	College     []*models.CollegeCompetitor `json:"college_competitors"`
	Pros        []*models.ProCompetitor    `json:"pro_competitors"`
	Events      []*models.Event            `json:"events"`
	Results     []*models.EventResult      `json:"results"`
	Heats       []*models.Heat             `json:"heats"`
	Flights     []*models.Flight           `json:"flights"`
}

// BackupService snapshots a tournament to object storage through the job
// runner.
type BackupService struct {
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	college     repositories.CollegeCompetitorRepository
	pros        repositories.ProCompetitorRepository
	events      repositories.EventRepository
	results     repositories.ResultRepository
	heats       repositories.HeatRepository
	flights     repositories.FlightRepository
	uploader    storage.FileUploader
	runner      jobs.Runner
	logger      *slog.Logger
}

func NewBackupService(
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	events repositories.EventRepository,
	results repositories.ResultRepository,
	heats repositories.HeatRepository,
	flights repositories.FlightRepository,
	uploader storage.FileUploader,
	runner jobs.Runner,
	logger *slog.Logger,
) *BackupService {
	return &BackupService{
		tournaments: tournaments,
		teams:       teams,
		college:     college,
		pros:        pros,
		events:      events,
		results:     results,
		heats:       heats,
		flights:     flights,
		uploader:    uploader,
		runner:      runner,
		logger:      logger,
	}
}

// Enabled reports whether an upload target is configured.
func (s *BackupService) Enabled() bool { return s.uploader != nil }

// Snapshot collects every entity the tournament owns.
func (s *BackupService) Snapshot(ctx context.Context, tournamentID int) (*TournamentSnapshot, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}

	snap := &TournamentSnapshot{
		TakenAt:    time.Now().UTC().Format(time.RFC3339),
		Tournament: tournament,
	}
	if snap.Teams, err = s.teams.ListByTournament(ctx, tournamentID, nil); err != nil {
		return nil, fmt.Errorf("failed to snapshot teams: %w", err)
	}
	if snap.College, err = s.college.ListByTournament(ctx, tournamentID, nil); err != nil {
		return nil, fmt.Errorf("failed to snapshot college competitors: %w", err)
	}
	if snap.Pros, err = s.pros.ListByTournament(ctx, tournamentID, nil); err != nil {
		return nil, fmt.Errorf("failed to snapshot pro competitors: %w", err)
	}
	if snap.Events, err = s.events.ListByTournament(ctx, tournamentID, nil); err != nil {
		return nil, fmt.Errorf("failed to snapshot events: %w", err)
	}
	if snap.Flights, err = s.flights.ListByTournament(ctx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to snapshot flights: %w", err)
	}
	for _, event := range snap.Events {
		results, err := s.results.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot results for event %d: %w", event.ID, err)
		}
		snap.Results = append(snap.Results, results...)

		heats, err := s.heats.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot heats for event %d: %w", event.ID, err)
		}
		snap.Heats = append(snap.Heats, heats...)
	}
	return snap, nil
}

// Run takes a snapshot now and uploads it, returning the stored object.
func (s *BackupService) Run(ctx context.Context, tournamentID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: backups are not configured", ErrValidationFailed)
	}

	snap, err := s.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	key := fmt.Sprintf("backups/tournament-%d-%s.json.gz", tournamentID, time.Now().UTC().Format("20060102-150405"))
	result, err := s.uploader.Upload(ctx, key, "application/gzip", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.logger.Info("tournament backup uploaded",
		"tournament_id", tournamentID,
		"key", result.Key,
		"teams", len(snap.Teams),
		"results", len(snap.Results),
	)
	return result, nil
}

// Schedule queues a backup on the job runner and returns the job record for
// polling.
func (s *BackupService) Schedule(tournamentID int) (*jobs.Job, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: backups are not configured", ErrValidationFailed)
	}
	label := fmt.Sprintf("backup tournament %d", tournamentID)
	return s.runner.Submit(label, func(ctx context.Context) (interface{}, error) {
		return s.Run(ctx, tournamentID)
	})
}
