package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/handlers"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/middleware"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Tournaments  *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Imports      *handlers.ImportHandler
	Heats        *handlers.HeatHandler
	Flights      *handlers.FlightHandler
	Schedule     *handlers.ScheduleHandler
	Scoring      *handlers.ScoringHandler
	Brackets     *handlers.BracketHandler
	Relay        *handlers.RelayHandler
	Reports      *handlers.ReportHandler
	Admin        *handlers.AdminHandler
}

// InitRoutes wires the full API surface. Spectator endpoints under /public
// skip authentication entirely.
func InitRoutes(
	h Handlers,
	auth *services.AuthService,
	users repositories.UserRepository,
	captains repositories.SchoolCaptainRepository,
) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(30 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Login endpoints.
	router.Post("/auth/login", h.Auth.LoginHandler)
	router.Post("/auth/captain-login", h.Auth.CaptainLoginHandler)

	// Spectator surface, no auth. Big screens poll these.
	router.Route("/public/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/standings", h.Reports.StandingsHandler)
		r.Get("/standings-poll", h.Reports.PollHandler)
		r.Get("/results", h.Reports.ResultsHandler)
		r.Get("/schedule", h.Reports.ScheduleHandler)
	})

	// Everything else requires a valid token.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(auth, users, captains))

		r.Post("/auth/change-password", h.Auth.ChangePasswordHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournaments.ListHandler)
			r.Get("/{tournamentID}", h.Tournaments.GetByIDHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Tournaments.CreateHandler)
				r.Put("/{tournamentID}", h.Tournaments.UpdateHandler)
				r.Patch("/{tournamentID}/status", h.Tournaments.UpdateStatusHandler)
				r.Post("/{tournamentID}/events", h.Tournaments.ConfigureEventsHandler)
				r.Delete("/{tournamentID}", h.Tournaments.DeleteHandler)
				r.Post("/{tournamentID}/backup", h.Admin.ScheduleBackupHandler)
				r.Post("/{tournamentID}/sms", h.Admin.BroadcastSMSHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRegistrar)
				r.Post("/{tournamentID}/teams", h.Registration.CreateTeamHandler)
				r.Post("/{tournamentID}/college-competitors", h.Registration.CreateCollegeCompetitorHandler)
				r.Post("/{tournamentID}/pro-competitors", h.Registration.CreateProCompetitorHandler)
				r.Post("/{tournamentID}/captains", h.Registration.EnsureCaptainHandler)
				r.Post("/{tournamentID}/import/college", h.Imports.ImportCollegeRosterHandler)
				r.Post("/{tournamentID}/import/pro/preview", h.Imports.PreviewProEntriesHandler)
				r.Post("/{tournamentID}/import/pro/confirm", h.Imports.ConfirmProEntriesHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScheduler)
				r.Post("/{tournamentID}/flights", h.Flights.BuildHandler)
				r.Post("/{tournamentID}/schedule", h.Schedule.BuildHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireReporter)
				r.Get("/{tournamentID}/teams", h.Registration.ListTeamsHandler)
				r.Get("/{tournamentID}/validate", h.Heats.ValidateTournamentHandler)
				r.Get("/{tournamentID}/flights", h.Flights.ListHandler)
				r.Get("/{tournamentID}/standings", h.Reports.StandingsHandler)
				r.Get("/{tournamentID}/results", h.Reports.ResultsHandler)
				r.Get("/{tournamentID}/schedule", h.Reports.ScheduleHandler)
				r.Get("/{tournamentID}/portal/college", h.Reports.CollegePortalHandler)
				r.Get("/{tournamentID}/portal/pro", h.Reports.ProPortalHandler)
				r.Get("/{tournamentID}/relay/pools", h.Relay.PoolsHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRegistrar)
			r.Patch("/teams/{teamID}/status", h.Registration.SetTeamStatusHandler)
			r.Put("/college-competitors/{competitorID}", h.Registration.UpdateCollegeCompetitorHandler)
			r.Patch("/college-competitors/{competitorID}/status", h.Registration.SetCollegeStatusHandler)
			r.Put("/pro-competitors/{competitorID}", h.Registration.UpdateProCompetitorHandler)
			r.Patch("/pro-competitors/{competitorID}/status", h.Registration.SetProStatusHandler)
			r.Post("/pro-competitors/{competitorID}/fees/paid", h.Registration.MarkFeePaidHandler)
		})

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireReporter)
				r.Get("/heats", h.Heats.ListHandler)
				r.Get("/bracket", h.Brackets.StateHandler)
				r.Get("/relay/standings", h.Relay.StandingsHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScheduler)
				r.Post("/heats", h.Heats.GenerateHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScorer)
				r.Post("/finalize", h.Scoring.FinalizeHandler)
				r.Post("/bracket/axe", h.Brackets.InitAxeHandler)
				r.Post("/bracket/axe/scores", h.Brackets.RecordAxeScoreHandler)
				r.Post("/bracket/axe/advance", h.Brackets.AdvanceAxeFinalsHandler)
				r.Post("/bracket/axe/finalize", h.Brackets.FinalizeAxeHandler)
				r.Post("/bracket/birling", h.Brackets.SeedBirlingHandler)
				r.Post("/bracket/birling/matches", h.Brackets.ScoreBirlingMatchHandler)
				r.Post("/relay/draw", h.Relay.DrawHandler)
				r.Delete("/relay", h.Relay.ResetHandler)
				r.Post("/relay/times", h.Relay.RecordTimeHandler)
				r.Post("/relay/replacements", h.Relay.ReplaceMemberHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireScorer)
			r.Post("/heats/{heatID}/scores", h.Scoring.SubmitHeatHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireReporter)
			r.Get("/flights/{flightID}/heats", h.Flights.HeatsHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireScheduler)
			r.Post("/schedule/hydrate", h.Schedule.HydrateHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/users", h.Users.CreateHandler)
			r.Get("/users", h.Users.ListHandler)
			r.Post("/captains/{captainID}/reset-pin", h.Auth.ResetCaptainPinHandler)
			r.Get("/admin/jobs", h.Admin.ListJobsHandler)
			r.Get("/admin/jobs/{jobID}", h.Admin.GetJobHandler)
			r.Get("/admin/audit", h.Admin.ListAuditHandler)
		})
	})

	return router
}
