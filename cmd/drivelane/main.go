package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/db"
	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/auth"
	"github.com/drivelane/drivelane/internal/config"
	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/mq"
	"github.com/drivelane/drivelane/internal/realtime"
	"github.com/drivelane/drivelane/internal/router"
	"github.com/drivelane/drivelane/internal/scheduler"
	"github.com/drivelane/drivelane/internal/services"
	"github.com/drivelane/drivelane/internal/types"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	types.AllowedOrigins = cfg.AllowedOrigins
	logger.SetOutput(os.Stdout, !cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err = auth.InitJWT(cfg.JWTSecret, cfg.JWTTTL); err != nil {
		log.Fatalf("Error initializing JWT: %v", err)
	}

	conn, err := db.ConnectDatabase(cfg.DBDriver, cfg.DatabaseURL)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	events, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)

	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer events.Close()

	hub := realtime.NewHub()
	svc := services.New(conn, hub, events, services.NewWebhookAlerter(cfg.DiscordWebhook, cfg.SlackWebhook))

	if cfg.AdminEmail != "" {
		bootstrapAdmin(svc.Users, cfg)
	}

	retries := scheduler.NewScheduler(conn, svc.Notifications, cfg.NotificationRetryInterval, cfg.NotificationMaxAttempts)
	retries.Start()
	defer retries.Stop()

	r := router.NewRouter(router.Dependencies{
		DB:           conn,
		Services:     svc,
		Hub:          hub,
		Scheduler:    retries,
		Probe:        types.DatabaseConfig{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL, Timeout: 5},
		CookieDomain: cfg.CookieDomain,
		SecureCookie: cfg.IsProduction(),
		TokenTTL:     cfg.JWTTTL,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server_start", "listening", "port", cfg.Port, "environment", cfg.Environment)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server_stop", "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server_stop", "graceful shutdown failed", err)
	}
}

func bootstrapAdmin(users *services.UserService, cfg *config.Config) {
	admin, err := users.CreateAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)

	switch {
	case err == nil:
		logger.Info("admin_bootstrap", "admin account created", "user_id", admin.ID)
	case apperrors.Is(err, apperrors.KindConflict):
		logger.Debug("admin_bootstrap", "admin account already exists", "email", cfg.AdminEmail)
	default:
		logger.Error("admin_bootstrap", "failed to create admin account", err)
	}
}
