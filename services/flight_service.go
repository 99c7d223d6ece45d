package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/jobs"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// FlightHeat is one candidate run-1 heat for the Saturday flight order.
type FlightHeat struct {
	HeatID      int
	EventID     int
	Label       string
	Competitors []int
}

// SpacingViolation marks a competitor who reappears too soon in the ordered
// heat list.
type SpacingViolation struct {
	Position     int    `json:"position"`
	HeatID       int    `json:"heat_id"`
	CompetitorID int    `json:"competitor_id"`
	Spacing      int    `json:"spacing"`
	Label        string `json:"label"`
}

const allNewScore = 1000.0

// OrderHeats sequences pro heats so competitors get the longest possible rest
// between appearances. Greedy: at each step the candidate with the best
// spacing score is appended. Heats of entirely fresh competitors always win;
// heats that would violate the minimum spacing are heavily penalized so they
// are placed only when nothing better remains.
func OrderHeats(candidates []FlightHeat) []FlightHeat {
	remaining := append([]FlightHeat(nil), candidates...)
	ordered := make([]FlightHeat, 0, len(remaining))
	last := map[int]int{}

	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := -1.0
		for i, c := range remaining {
			if score := spacingScore(c, last, len(ordered)); score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		chosen := remaining[bestIdx]
		for _, id := range chosen.Competitors {
			last[id] = len(ordered)
		}
		ordered = append(ordered, chosen)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return ordered
}

func spacingScore(c FlightHeat, last map[int]int, index int) float64 {
	minSpacing := -1
	total, seen := 0, 0
	for _, id := range c.Competitors {
		at, ok := last[id]
		if !ok {
			continue
		}
		spacing := index - at
		if minSpacing < 0 || spacing < minSpacing {
			minSpacing = spacing
		}
		total += spacing
		seen++
	}
	if seen == 0 {
		return allNewScore
	}

	if minSpacing < config.MinHeatSpacing {
		score := 50.0 - float64(config.MinHeatSpacing-minSpacing)*100.0
		if score < 0 {
			return 0
		}
		return score
	}

	score := float64(minSpacing)*10.0 + float64(total)/float64(seen)
	if minSpacing >= config.TargetHeatSpacing {
		score += 50
	}
	return score
}

// ValidateSpacing walks an ordered heat list and reports every competitor
// reappearing fewer than MinHeatSpacing heats after their previous run.
func ValidateSpacing(ordered []FlightHeat) []SpacingViolation {
	last := map[int]int{}
	var out []SpacingViolation
	for i, heat := range ordered {
		for _, id := range heat.Competitors {
			if at, ok := last[id]; ok {
				if spacing := i - at; spacing < config.MinHeatSpacing {
					out = append(out, SpacingViolation{
						Position:     i,
						HeatID:       heat.HeatID,
						CompetitorID: id,
						Spacing:      spacing,
						Label:        heat.Label,
					})
				}
			}
			last[id] = i
		}
	}
	return out
}

// SplitIntoFlights chunks the ordered heats into flights of HeatsPerFlight.
func SplitIntoFlights(ordered []FlightHeat) [][]FlightHeat {
	var out [][]FlightHeat
	for start := 0; start < len(ordered); start += config.HeatsPerFlight {
		end := start + config.HeatsPerFlight
		if end > len(ordered) {
			end = len(ordered)
		}
		out = append(out, ordered[start:end])
	}
	return out
}

// FlightService orders the pro run-1 heats into flights and persists them.
type FlightService struct {
	db      *sql.DB
	events  repositories.EventRepository
	heats   repositories.HeatRepository
	flights repositories.FlightRepository
	cache   cache.Cache
	runner  jobs.Runner
	audit   *AuditService
	logger  *slog.Logger
}

func NewFlightService(
	db *sql.DB,
	events repositories.EventRepository,
	heats repositories.HeatRepository,
	flights repositories.FlightRepository,
	c cache.Cache,
	runner jobs.Runner,
	audit *AuditService,
	logger *slog.Logger,
) *FlightService {
	return &FlightService{
		db:      db,
		events:  events,
		heats:   heats,
		flights: flights,
		cache:   c,
		runner:  runner,
		audit:   audit,
		logger:  logger,
	}
}

// ScheduleBuild queues a flight build on the job runner and returns the job
// record for polling. Ordering every pro heat takes long enough that the
// request should not wait on it.
func (s *FlightService) ScheduleBuild(rc *models.RequestContext, tournamentID int) (*jobs.Job, error) {
	label := fmt.Sprintf("build flights tournament %d", tournamentID)
	return s.runner.Submit(label, func(ctx context.Context) (interface{}, error) {
		return s.Build(ctx, rc, tournamentID)
	})
}

// BuildResult is the outcome of a flight build, including spacing warnings
// for operator review.
type BuildResult struct {
	Flights    []*models.Flight   `json:"flights"`
	HeatOrder  []FlightHeat       `json:"heat_order"`
	Violations []SpacingViolation `json:"violations"`
}

// Build rebuilds the tournament's flights from every pro event's run-1 heats.
func (s *FlightService) Build(ctx context.Context, rc *models.RequestContext, tournamentID int) (*BuildResult, error) {
	proType := models.EventPro
	events, err := s.events.ListByTournament(ctx, tournamentID, &proType)
	if err != nil {
		return nil, err
	}

	var candidates []FlightHeat
	for _, event := range events {
		heats, err := s.heats.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		for _, h := range heats {
			if h.RunNumber != 1 {
				continue
			}
			candidates = append(candidates, FlightHeat{
				HeatID:      h.ID,
				EventID:     event.ID,
				Label:       fmt.Sprintf("%s Heat %d", event.DisplayName(), h.HeatNumber),
				Competitors: h.Competitors,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no pro heats generated yet", ErrScheduleNotReady)
	}

	ordered := OrderHeats(candidates)
	chunks := SplitIntoFlights(ordered)

	result := &BuildResult{HeatOrder: ordered, Violations: ValidateSpacing(ordered)}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.flights.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		for i, chunk := range chunks {
			name := fmt.Sprintf("Flight %d", i+1)
			flight := &models.Flight{
				TournamentID: tournamentID,
				FlightNumber: i + 1,
				Name:         &name,
				Status:       models.StatusPending,
			}
			if err := s.flights.Create(ctx, tx, flight); err != nil {
				return err
			}
			for _, fh := range chunk {
				if err := s.heats.SetFlight(ctx, tx, fh.HeatID, &flight.ID); err != nil {
					return err
				}
			}
			result.Flights = append(result.Flights, flight)
		}
		return s.audit.Log(ctx, tx, rc, "flights.build", "tournament", &tournamentID, map[string]interface{}{
			"flights":    len(chunks),
			"heats":      len(ordered),
			"violations": len(result.Violations),
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateTournament(s.cache, tournamentID)
	s.logger.Info("flights built",
		"tournament_id", tournamentID,
		"flights", len(result.Flights),
		"heats", len(ordered),
		"spacing_violations", len(result.Violations))
	return result, nil
}

func (s *FlightService) List(ctx context.Context, tournamentID int) ([]*models.Flight, error) {
	return s.flights.ListByTournament(ctx, tournamentID)
}

func (s *FlightService) Heats(ctx context.Context, flightID int) ([]*models.Heat, error) {
	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		return nil, mapFlightRepoError(err)
	}
	return s.heats.ListByFlight(ctx, flightID)
}

func mapFlightRepoError(err error) error {
	if err == repositories.ErrFlightNotFound {
		return ErrNotFound
	}
	return err
}
