package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scoutshq/outpost/internal/auth"
	"github.com/scoutshq/outpost/internal/bot"
	"github.com/scoutshq/outpost/internal/config"
	"github.com/scoutshq/outpost/internal/database"
	"github.com/scoutshq/outpost/internal/handler"
	"github.com/scoutshq/outpost/internal/scheduler"
	"github.com/scoutshq/outpost/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting Outpost API", "version", version, "env", cfg.Env)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	// Create indexes
	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and auth services
	userRepo := database.NewUserRepository(db)

	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenExpiry)
	if err != nil {
		slog.Error("Failed to initialize token service", "error", err)
		os.Exit(1)
	}
	authenticator := auth.NewAuthenticator(userRepo, tokens)

	// Initialize Telegram notifier
	var botAPI bot.API
	if cfg.BotToken != "" {
		client, err := bot.NewClient(cfg.BotToken)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
			os.Exit(1)
		}
		botAPI = client
	} else {
		slog.Warn("No Telegram bot token configured, notifications disabled")
		botAPI = bot.Discard{}
	}
	notifier := bot.NewNotifier(botAPI, cfg.ProjectName, cfg.ErrorChatID, cfg.DBDumpChatID)

	// Initialize scheduler with the fixed job list
	pingJob := scheduler.NewPingJob(notifier, cfg.ProbeHosts(), cfg.PathPrefix, cfg.ProbeTimeout)
	dumpJob := scheduler.NewDumpJob(db, notifier, "")

	sched := scheduler.New(notifier,
		scheduler.Job{
			Name:    "ping",
			Trigger: scheduler.Interval{Minutes: cfg.PingIntervalMinutes},
			Run:     pingJob.Run,
		},
		scheduler.Job{
			Name:    "db_dump",
			Trigger: scheduler.Daily{Hour: cfg.DumpHour},
			Run:     dumpJob.Run,
		},
	)
	if cfg.SchedulerEnabled {
		if err := sched.Start(ctx); err != nil {
			slog.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("Scheduler is disabled by configuration")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authenticator, tokens)
	pingHandler := handler.NewPingHandler(db, authenticator)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	// Create router
	router := handler.NewRouter(authHandler, pingHandler, cfg.PathPrefix, corsConfig, notifier)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop scheduler first (wait for in-flight jobs)
	if cfg.SchedulerEnabled {
		sched.Stop(shutdownCtx)
	}

	// Shutdown HTTP server
	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Outpost API stopped")
}
