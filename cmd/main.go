package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/db"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/handlers"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/jobs"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/notify"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/routes"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/services"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/storage"
)

const jobQueueSize = 128

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("schema migrated")

	// Optional pieces degrade to no-ops when unconfigured.
	var uploader storage.FileUploader
	if cfg.BackupEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 backup uploader initialized")
	} else {
		logger.Info("backups disabled, R2 not configured")
	}

	var smsSender notify.SMSSender
	if cfg.SMSEnabled() {
		smsSender = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		logger.Info("Twilio SMS sender initialized")
	} else {
		smsSender = &notify.NoopSender{Logger: logger}
		logger.Info("SMS disabled, Twilio not configured")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	captainRepo := repositories.NewPostgresSchoolCaptainRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	collegeRepo := repositories.NewPostgresCollegeCompetitorRepository(dbConn)
	proRepo := repositories.NewPostgresProCompetitorRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	heatRepo := repositories.NewPostgresHeatRepository(dbConn)
	flightRepo := repositories.NewPostgresFlightRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditRepository(dbConn)
	logger.Info("repositories initialized")

	memCache := cache.NewMemory()
	pool := jobs.NewPool(cfg.JobMaxWorkers, jobQueueSize, logger)

	auditService := services.NewAuditService(auditRepo, logger)
	authService := services.NewAuthService(dbConn, userRepo, captainRepo, []byte(cfg.JWTSecretKey), auditService, logger)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, eventRepo, memCache, auditService, logger)
	registrationService := services.NewRegistrationService(dbConn, tournamentRepo, teamRepo, collegeRepo, proRepo, captainRepo, memCache, auditService, logger)
	importService := services.NewImportService(dbConn, teamRepo, collegeRepo, proRepo, eventRepo, resultRepo, memCache, auditService, logger)
	validationService := services.NewValidationService(teamRepo, collegeRepo, proRepo, eventRepo, heatRepo)
	heatService := services.NewHeatService(dbConn, eventRepo, heatRepo, resultRepo, collegeRepo, proRepo, auditService, logger)
	flightService := services.NewFlightService(dbConn, eventRepo, heatRepo, flightRepo, memCache, pool, auditService, logger)
	scheduleService := services.NewScheduleService(eventRepo, heatRepo)
	scoringService := services.NewScoringService(dbConn, eventRepo, heatRepo, resultRepo, collegeRepo, proRepo, teamRepo, memCache, auditService, logger)
	bracketService := services.NewBracketService(dbConn, eventRepo, collegeRepo, proRepo, scoringService, memCache, auditService, logger)
	relayService := services.NewRelayService(dbConn, eventRepo, collegeRepo, proRepo, memCache, auditService, logger)
	reportService := services.NewReportService(cfg, teamRepo, collegeRepo, proRepo, eventRepo, resultRepo, flightRepo, scheduleService, memCache, logger)
	backupService := services.NewBackupService(tournamentRepo, teamRepo, collegeRepo, proRepo, eventRepo, resultRepo, heatRepo, flightRepo, uploader, pool, logger)
	notifyService := services.NewNotifyService(proRepo, smsSender, pool, logger)
	logger.Info("services initialized")

	router := routes.InitRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Users:        handlers.NewUserHandler(authService, userRepo),
		Tournaments:  handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Imports:      handlers.NewImportHandler(importService),
		Heats:        handlers.NewHeatHandler(heatService, validationService),
		Flights:      handlers.NewFlightHandler(flightService),
		Schedule:     handlers.NewScheduleHandler(scheduleService),
		Scoring:      handlers.NewScoringHandler(scoringService),
		Brackets:     handlers.NewBracketHandler(bracketService),
		Relay:        handlers.NewRelayHandler(relayService),
		Reports:      handlers.NewReportHandler(reportService),
		Admin:        handlers.NewAdminHandler(pool, backupService, notifyService, auditService),
	}, authService, userRepo, captainRepo)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}
		if err := pool.Shutdown(shutdownCtx); err != nil {
			logger.Error("job pool shutdown failed", slog.Any("error", err))
		}
	}
	logger.Info("application exited")
}
