package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminhandler "membership-portal/backend/internal/admin/handler"
	adminrepo "membership-portal/backend/internal/admin/repository"
	"membership-portal/backend/internal/audit"
	audithandler "membership-portal/backend/internal/audit/handler"
	auditrepo "membership-portal/backend/internal/audit/repository"
	"membership-portal/backend/internal/auth"
	authhandler "membership-portal/backend/internal/auth/handler"
	"membership-portal/backend/internal/config"
	"membership-portal/backend/internal/db"
	healthhandler "membership-portal/backend/internal/health/handler"
	memberrepo "membership-portal/backend/internal/member/repository"
	"membership-portal/backend/internal/security"
	"membership-portal/backend/internal/server"
	"membership-portal/backend/internal/server/middleware"
	sessionhandler "membership-portal/backend/internal/session/handler"
	sessionrepo "membership-portal/backend/internal/session/repository"
	"membership-portal/backend/internal/telemetry/otel"
	"membership-portal/backend/internal/user"
	userhandler "membership-portal/backend/internal/user/handler"
	userrepo "membership-portal/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *slog.Logger
	if cfg.Env == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "membership-portal-server")
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

	tokens, err := security.NewTokenProvider(security.Keys{
		Access:  []byte(cfg.AccessJWTSecret),
		Refresh: []byte(cfg.RefreshJWTSecret),
	}, cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(database)
	members := memberrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	admins := adminrepo.NewPostgresRepository(database)
	auditRepo := auditrepo.NewPostgresRepository(database)
	auditLog := audit.NewLogger(auditRepo, middleware.GetClientIP, logger)

	authSvc := auth.NewService(users, hasher, tokens, auditLog, logger)
	userSvc := user.NewService(users, members, hasher, auditLog, logger)

	router := server.NewRouter(server.Deps{
		Tokens:  tokens,
		Auth:    authhandler.NewHandler(authSvc, logger),
		Users:   userhandler.NewHandler(userSvc, logger),
		Session: sessionhandler.NewHandler(sessions, logger),
		Admins:  adminhandler.NewHandler(admins, hasher, auditLog, logger),
		Audit:   audithandler.NewHandler(auditRepo, logger),
		Health:  healthhandler.NewHandler(database, logger),
		Log:     logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
