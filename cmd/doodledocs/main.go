package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doodledocs/internal/config"
	"doodledocs/internal/logging"
	"doodledocs/internal/services"
)

func main() {
	runAPI := flag.Bool("api", false, "Run API Service")
	runRealtime := flag.Bool("realtime", false, "Run Realtime Service")
	runAll := flag.Bool("all", false, "Run All Services")
	flag.Parse()

	// Default to running everything if no specific flags are provided.
	if *runAll || (!*runAPI && !*runRealtime) {
		*runAPI = true
		*runRealtime = true
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	slog.Info("Starting DoodleDocs services",
		"api", *runAPI,
		"realtime", *runRealtime,
		"storage", cfg.Storage.Backend,
		"pubsub", cfg.PubSub.Backend,
	)

	mgr := services.NewManager(cfg, services.Options{
		RunAPI:      *runAPI,
		RunRealtime: *runRealtime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mgr.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Context for background tasks.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	mgr.Start(bgCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Cancel background tasks first so the dispatcher flushes the outbox.
	bgCancel()

	mgr.Shutdown(shutdownCtx)

	slog.Info("All services stopped")
}
