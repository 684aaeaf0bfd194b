// worker runs the membership sync from the eActivities API on an interval.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membership-portal/backend/internal/config"
	"membership-portal/backend/internal/db"
	"membership-portal/backend/internal/eactivities"
	memberrepo "membership-portal/backend/internal/member/repository"
	"membership-portal/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.EAAPIKey == "" {
		log.Fatal("EA_API_KEY is not set")
	}

	var logger *slog.Logger
	if cfg.Env == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "membership-portal-worker")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	client := eactivities.NewClient(cfg.EABaseURL, cfg.EAAPIKey)
	syncer := eactivities.NewSyncer(client, memberrepo.NewPostgresRepository(database), logger)

	runSync := func() {
		syncCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := syncer.Sync(syncCtx); err != nil {
			logger.Error("membership sync failed", slog.Any("error", err))
		}
	}

	log.Printf("membership sync worker running every %s", cfg.SyncEvery())
	runSync()

	ticker := time.NewTicker(cfg.SyncEvery())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runSync()
		case <-ctx.Done():
			log.Println("membership sync worker stopped")
			return
		}
	}
}
