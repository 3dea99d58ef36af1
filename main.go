package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/budget-manager-be/internal/api"
	"github.com/isdelr/budget-manager-be/internal/auth"
	"github.com/isdelr/budget-manager-be/internal/config"
	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/files"
	"github.com/isdelr/budget-manager-be/internal/logger"
	"github.com/isdelr/budget-manager-be/internal/monitoring"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	// Set up database
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Photo storage
	store, err := files.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to prepare upload directory")
	}

	// Set up services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	activityService := services.NewActivityService(db)
	userService := services.NewUserService(db, tokens, activityService)
	dataService := services.NewDataService(db, activityService)
	profileService := services.NewProfileService(db, store, activityService)

	// Optional background cleanup of orphaned photos
	var sweeper *monitoring.PhotoSweeper
	if cfg.PhotoSweepSchedule != "" {
		sweeper = monitoring.NewPhotoSweeper(store, profileService, activityService, cfg.PhotoSweepGrace)
		if err := sweeper.Start(cfg.PhotoSweepSchedule); err != nil {
			log.Fatal().Err(err).Msg("Failed to start photo sweeper")
		}
	}

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Authenticator:  auth.NewAuthenticator(tokens, userService),
		Users:          userService,
		Data:           dataService,
		Profiles:       profileService,
		Activity:       activityService,
		CORSOrigins:    cfg.CORSOrigins,
		PublicBaseURL:  cfg.PublicBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		StartedAt:      startedAt,
	})

	// Set up server
	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", db.Driver()).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
