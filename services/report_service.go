package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// Leaderboard sizes for the public views.
const (
	topTeams       = 15
	topIndividuals = 10
	topProMoney    = 15
)

// TeamStanding is one row of the college team leaderboard.
type TeamStanding struct {
	Rank       int    `json:"rank"`
	TeamID     int    `json:"team_id"`
	TeamCode   string `json:"team_code"`
	SchoolName string `json:"school_name"`
	Points     int    `json:"points"`
}

// IndividualStanding is one row of the Bull or Belle of the Woods race.
type IndividualStanding struct {
	Rank         int    `json:"rank"`
	CompetitorID int    `json:"competitor_id"`
	Name         string `json:"name"`
	TeamCode     string `json:"team_code"`
	Points       int    `json:"points"`
}

// ProMoneyStanding is one row of the pro earnings leaderboard.
type ProMoneyStanding struct {
	Rank         int     `json:"rank"`
	CompetitorID int     `json:"competitor_id"`
	Name         string  `json:"name"`
	Earnings     float64 `json:"earnings"`
}

// StandingsReport is the full standings view for spectators and announcers.
type StandingsReport struct {
	Teams       []TeamStanding       `json:"teams"`
	Bull        []IndividualStanding `json:"bull_of_the_woods"`
	Belle       []IndividualStanding `json:"belle_of_the_woods"`
	ProMoney    []ProMoneyStanding   `json:"pro_money"`
	LastUpdated string               `json:"last_updated"`
}

// StandingsPoll is the trimmed payload the scoreboard polls every few
// seconds.
type StandingsPoll struct {
	Teams       []TeamStanding     `json:"teams"`
	ProMoney    []ProMoneyStanding `json:"pro_money"`
	LastUpdated string             `json:"last_updated"`
}

// EventResults groups one event's results for the results view.
type EventResults struct {
	Event   *models.Event         `json:"event"`
	Results []*models.EventResult `json:"results"`
}

// CollegePortal is the team-facing view: rosters plus the live leaderboard.
type CollegePortal struct {
	Teams       []*models.Team `json:"teams"`
	Standings   []TeamStanding `json:"standings"`
	LastUpdated string         `json:"last_updated"`
}

// ProPortal is the pro-facing view: roster with earnings plus the flight
// list.
type ProPortal struct {
	Competitors []*models.ProCompetitor `json:"competitors"`
	Flights     []*models.Flight        `json:"flights"`
	LastUpdated string                  `json:"last_updated"`
}

// ReportService serves the derived read views through the TTL cache.
type ReportService struct {
	teams    repositories.TeamRepository
	college  repositories.CollegeCompetitorRepository
	pros     repositories.ProCompetitorRepository
	events   repositories.EventRepository
	results  repositories.ResultRepository
	flights  repositories.FlightRepository
	schedule *ScheduleService
	cache    cache.Cache
	logger   *slog.Logger

	reportTTL time.Duration
	publicTTL time.Duration
}

func NewReportService(
	cfg *config.Config,
	teams repositories.TeamRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	events repositories.EventRepository,
	results repositories.ResultRepository,
	flights repositories.FlightRepository,
	schedule *ScheduleService,
	c cache.Cache,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		teams:     teams,
		college:   college,
		pros:      pros,
		events:    events,
		results:   results,
		flights:   flights,
		schedule:  schedule,
		cache:     c,
		logger:    logger,
		reportTTL: time.Duration(cfg.ReportCacheTTLSeconds) * time.Second,
		publicTTL: time.Duration(cfg.PublicCacheTTLSeconds) * time.Second,
	}
}

func stamp() string { return time.Now().UTC().Format(time.RFC3339) }

// Standings builds the full leaderboard view, hydrating the three boards in
// parallel on a cache miss.
func (s *ReportService) Standings(ctx context.Context, tournamentID int) (*StandingsReport, error) {
	key := cache.ReportKey(tournamentID, "standings")
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*StandingsReport), nil
	}

	var (
		teams   []*models.Team
		comps   []*models.CollegeCompetitor
		prolist []*models.ProCompetitor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teams, err = s.teams.ListByTournament(gctx, tournamentID, activeOnly())
		return err
	})
	g.Go(func() (err error) {
		comps, err = s.college.ListByTournament(gctx, tournamentID, activeOnly())
		return err
	})
	g.Go(func() (err error) {
		prolist, err = s.pros.ListByTournament(gctx, tournamentID, activeOnly())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &StandingsReport{
		Teams:       teamStandings(teams, topTeams),
		Bull:        individualStandings(comps, teams, models.GenderMale, topIndividuals),
		Belle:       individualStandings(comps, teams, models.GenderFemale, topIndividuals),
		ProMoney:    proMoneyStandings(prolist, topProMoney),
		LastUpdated: stamp(),
	}
	s.cache.Set(key, report, s.reportTTL)
	return report, nil
}

// Poll is the scoreboard's short-TTL standings payload.
func (s *ReportService) Poll(ctx context.Context, tournamentID int) (*StandingsPoll, error) {
	key := cache.StandingsPollKey(tournamentID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*StandingsPoll), nil
	}

	report, err := s.Standings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	poll := &StandingsPoll{
		Teams:       report.Teams,
		ProMoney:    report.ProMoney,
		LastUpdated: stamp(),
	}
	s.cache.Set(key, poll, s.publicTTL)
	return poll, nil
}

// Results builds the per-event results view.
func (s *ReportService) Results(ctx context.Context, tournamentID int) ([]EventResults, error) {
	key := cache.ReportKey(tournamentID, "results")
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]EventResults), nil
	}

	events, err := s.events.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}

	out := make([]EventResults, len(events))
	g, gctx := errgroup.WithContext(ctx)
	for i, event := range events {
		i, event := i, event
		g.Go(func() error {
			results, err := s.results.ListByEvent(gctx, event.ID)
			if err != nil {
				return err
			}
			sortResults(results)
			out[i] = EventResults{Event: event, Results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.Set(key, out, s.reportTTL)
	return out, nil
}

// Schedule is the default weekend schedule (no operator overrides), cached.
func (s *ReportService) Schedule(ctx context.Context, tournamentID int) (*Schedule, error) {
	key := cache.ReportKey(tournamentID, "schedule")
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*Schedule), nil
	}

	schedule, err := s.schedule.Build(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, schedule, s.reportTTL)
	return schedule, nil
}

// CollegePortalView hydrates team rosters and the leaderboard for captains.
func (s *ReportService) CollegePortalView(ctx context.Context, tournamentID int) (*CollegePortal, error) {
	key := cache.CollegePortalKey(tournamentID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*CollegePortal), nil
	}

	teams, err := s.teams.ListByTournament(ctx, tournamentID, activeOnly())
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, team := range teams {
		team := team
		g.Go(func() error {
			members, err := s.college.ListByTeam(gctx, team.ID)
			if err != nil {
				return err
			}
			team.Members = make([]models.CollegeCompetitor, 0, len(members))
			for _, m := range members {
				team.Members = append(team.Members, *m)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	portal := &CollegePortal{
		Teams:       teams,
		Standings:   teamStandings(teams, topTeams),
		LastUpdated: stamp(),
	}
	s.cache.Set(key, portal, s.reportTTL)
	return portal, nil
}

// ProPortalView hydrates the pro roster and flight list.
func (s *ReportService) ProPortalView(ctx context.Context, tournamentID int) (*ProPortal, error) {
	key := cache.ProPortalKey(tournamentID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*ProPortal), nil
	}

	var (
		prolist []*models.ProCompetitor
		flights []*models.Flight
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		prolist, err = s.pros.ListByTournament(gctx, tournamentID, activeOnly())
		return err
	})
	g.Go(func() (err error) {
		flights, err = s.flights.ListByTournament(gctx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	portal := &ProPortal{Competitors: prolist, Flights: flights, LastUpdated: stamp()}
	s.cache.Set(key, portal, s.reportTTL)
	return portal, nil
}

func teamStandings(teams []*models.Team, limit int) []TeamStanding {
	sorted := append([]*models.Team(nil), teams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalPoints != sorted[j].TotalPoints {
			return sorted[i].TotalPoints > sorted[j].TotalPoints
		}
		return sorted[i].TeamCode < sorted[j].TeamCode
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]TeamStanding, 0, len(sorted))
	for i, t := range sorted {
		out = append(out, TeamStanding{
			Rank:       i + 1,
			TeamID:     t.ID,
			TeamCode:   t.TeamCode,
			SchoolName: t.SchoolName,
			Points:     t.TotalPoints,
		})
	}
	return out
}

func individualStandings(comps []*models.CollegeCompetitor, teams []*models.Team, gender models.Gender, limit int) []IndividualStanding {
	codes := make(map[int]string, len(teams))
	for _, t := range teams {
		codes[t.ID] = t.TeamCode
	}

	var filtered []*models.CollegeCompetitor
	for _, c := range comps {
		if c.Gender == gender {
			filtered = append(filtered, c)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].IndividualPoints != filtered[j].IndividualPoints {
			return filtered[i].IndividualPoints > filtered[j].IndividualPoints
		}
		return filtered[i].Name < filtered[j].Name
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	out := make([]IndividualStanding, 0, len(filtered))
	for i, c := range filtered {
		out = append(out, IndividualStanding{
			Rank:         i + 1,
			CompetitorID: c.ID,
			Name:         c.Name,
			TeamCode:     codes[c.TeamID],
			Points:       c.IndividualPoints,
		})
	}
	return out
}

func proMoneyStandings(pros []*models.ProCompetitor, limit int) []ProMoneyStanding {
	sorted := append([]*models.ProCompetitor(nil), pros...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalEarnings != sorted[j].TotalEarnings {
			return sorted[i].TotalEarnings > sorted[j].TotalEarnings
		}
		return sorted[i].Name < sorted[j].Name
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]ProMoneyStanding, 0, len(sorted))
	for i, p := range sorted {
		out = append(out, ProMoneyStanding{
			Rank:         i + 1,
			CompetitorID: p.ID,
			Name:         p.Name,
			Earnings:     p.TotalEarnings,
		})
	}
	return out
}

// sortResults puts ranked results first in finishing order, then the rest in
// input order.
func sortResults(results []*models.EventResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].FinalPosition, results[j].FinalPosition
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}
