package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/api"
	"github.com/isdelr/fleet-admin-be/internal/auth"
	"github.com/isdelr/fleet-admin-be/internal/config"
	"github.com/isdelr/fleet-admin-be/internal/database"
	"github.com/isdelr/fleet-admin-be/internal/logger"
	"github.com/isdelr/fleet-admin-be/internal/monitoring"
	"github.com/isdelr/fleet-admin-be/internal/services"
	"github.com/isdelr/fleet-admin-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Set up database
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db, cfg.DatabaseDriver); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up token signing and password hashing
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Key:      cfg.JWT.Key,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	hashers, err := auth.DefaultHasherSet(cfg.PasswordScheme)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize password hashing")
	}

	// Set up WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	// Set up services
	eventService := services.NewEventService(db, hub)
	accountService := services.NewAccountService(db)
	authService, err := services.NewAuthService(accountService, hashers, tokens, eventService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}
	itemService := services.NewItemService(db, eventService)
	vehicleService := services.NewVehicleService(db, eventService)

	// Set up and run the event retention scheduler
	var scheduler *monitoring.Scheduler
	if cfg.EventRetention > 0 {
		scheduler, err = monitoring.NewScheduler(eventService, cfg.EventRetention, cfg.EventPruneSchedule)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event retention scheduler")
		}
		scheduler.Run()
	}

	// Set up router
	router := api.NewRouter(cfg, hub, db, tokens, authService, itemService, vehicleService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	stopHub()

	log.Info().Msg("Server exiting")
}
