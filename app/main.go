package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sarkarihub/sarkarihub/app/api"
	"github.com/sarkarihub/sarkarihub/app/cfg"
	"github.com/sarkarihub/sarkarihub/app/database"
	"github.com/sarkarihub/sarkarihub/app/feed"
	"github.com/sarkarihub/sarkarihub/app/store"
	"github.com/sarkarihub/sarkarihub/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Sarkari Hub server", "version", appConfig.Version)

	// Operational state database
	db, err := database.NewConnection(appConfig.StatePath)
	if err != nil {
		slog.Error("Failed to open state database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("State database ready", "path", appConfig.StatePath, "migration_version", version, "dirty", dirty)

	// Record store
	recordStore, err := store.New(context.Background(), appConfig.MongoURI, appConfig.MongoDB)
	if err != nil {
		slog.Error("Failed to connect to record store", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := recordStore.Close(closeCtx); err != nil {
			slog.Error("Failed to close record store", "error", err)
		}
	}()
	slog.Info("Connected to record store", "database", appConfig.MongoDB)

	// Feed source configurations
	configCache := feed.NewConfigCache(appConfig.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded feed configurations", "count", configCache.GetConfigCount())

	// Register feeds in the state database
	feedRepo := database.NewFeedRepository(db)
	runRepo := database.NewRunRepository(db)

	for _, feedConfig := range configCache.GetConfigs() {
		if err := feedRepo.UpsertFeed(feedConfig.Name, feedConfig.URL); err != nil {
			slog.Warn("Failed to register feed", "feed", feedConfig.Name, "error", err)
			continue
		}
		slog.Debug("Registered feed", "feed", feedConfig.Name, "url", feedConfig.URL)
	}

	// Background scheduler
	httpClient := &http.Client{Timeout: time.Duration(appConfig.FetchTimeout) * time.Second}
	scheduler := tasks.NewScheduler(configCache, feedRepo, runRepo, recordStore,
		httpClient, appConfig.UserAgent,
		time.Duration(appConfig.SchedulerInterval)*time.Second, appConfig.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appConfig.WorkerCount, "interval_seconds", appConfig.SchedulerInterval)

	// HTTP server
	apiHandler := api.NewHandler(configCache, feedRepo, runRepo, recordStore, scheduler, appConfig.Version)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
