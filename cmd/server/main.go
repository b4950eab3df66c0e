package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/api"
	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/auth"
	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/config"
	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/core"
	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// Resolve Firebase credentials once for both Google clients. The memory
	// driver in jwt mode is the only combination that runs without them.
	var creds *config.Credentials
	var credOpts []option.ClientOption
	if cfg.AuthMode == "firebase" || cfg.StoreDriver == "firestore" {
		creds, err = config.ResolveCredentials()
		if err != nil {
			logger.Fatal("failed to resolve firebase credentials", zap.Error(err))
		}
		if creds.Path != "" {
			credOpts = append(credOpts, option.WithCredentialsFile(creds.Path))
		} else {
			credOpts = append(credOpts, option.WithCredentialsJSON(creds.JSON))
		}
		logger.Info("firebase credentials resolved", zap.String("source", creds.Source))
	}

	projectID := cfg.FirestoreProjectID
	if projectID == "" && creds != nil {
		projectID = creds.ProjectID
	}

	var dbStore store.Store
	switch cfg.StoreDriver {
	case "firestore":
		fs, err := store.NewFirestoreStore(ctx, projectID, logger, credOpts...)
		if err != nil {
			logger.Fatal("failed to initialize firestore", zap.Error(err))
		}
		dbStore = fs
	case "memory":
		logger.Warn("using in-memory store; data will not survive a restart")
		dbStore = store.NewMemoryStore()
	}
	defer dbStore.Close()

	var verifier auth.Verifier
	switch cfg.AuthMode {
	case "firebase":
		verifier, err = auth.NewFirebaseVerifier(ctx, projectID, logger, credOpts...)
		if err != nil {
			logger.Fatal("failed to initialize firebase auth", zap.Error(err))
		}
	case "jwt":
		logger.Warn("using local jwt verifier; do not use in production")
		verifier = auth.NewJWTVerifier(cfg.JWTSecret, logger)
	}

	answerService := core.NewAnswerService(dbStore, logger)
	apiHandler := api.NewAPIHandler(answerService, verifier, logger)
	router := api.NewRouter(apiHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr),
			zap.String("auth_mode", cfg.AuthMode), zap.String("store_driver", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
