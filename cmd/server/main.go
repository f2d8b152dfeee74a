package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"accounts/backend/internal/config"
	"accounts/backend/internal/httpserver"
	"accounts/backend/internal/infrastructure/postgres"
	"accounts/backend/internal/infrastructure/token"
	authusecase "accounts/backend/internal/usecase/auth"
	"accounts/backend/internal/usecase/rules"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		log.WithError(err).Fatal("failed to run database migrations")
	}

	tokenManager, err := token.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiry, cfg.JWTIssuer)
	if err != nil {
		log.WithError(err).Fatal("failed to configure token signing")
	}

	authService := authusecase.NewService(postgres.NewUserRepository(db.Pool), tokenManager)
	ruleRegistry := rules.NewRegistry()

	server := httpserver.NewServer(cfg, authService, ruleRegistry, log)
	log.WithField("addr", server.Addr()).Info("HTTP server listening")

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Info("HTTP server closed")
				return
			}
			log.WithError(err).Fatal("server error")
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	} else {
		log.Info("graceful shutdown completed")
	}
}
