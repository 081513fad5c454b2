package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prudhvinik1/linkup/internal/config"
	"github.com/prudhvinik1/linkup/internal/database"
	"github.com/prudhvinik1/linkup/internal/handlers"
	"github.com/prudhvinik1/linkup/internal/realtime"
	"github.com/prudhvinik1/linkup/internal/repositories"
	"github.com/prudhvinik1/linkup/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer postgresPool.Close()

	if err := database.Migrate(ctx, postgresPool); err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(ctx, log, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	userRepo := repositories.NewPostgresUserRepository(postgresPool)
	connectionRepo := repositories.NewPostgresConnectionRepository(postgresPool)
	messageRepo := repositories.NewPostgresMessageRepository(postgresPool)
	notificationRepo := repositories.NewPostgresNotificationRepository(postgresPool)
	sessionRepo := repositories.NewRedisSessionRepository(redisClient)
	presenceRepo := repositories.NewRedisPresenceRepository(redisClient)

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, log, cfg.DispatchTimeout)

	notificationService := services.NewNotificationService(userRepo, notificationRepo, dispatcher, log)
	h := handlers.New(handlers.Options{
		Auth:           services.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret, cfg.JWTExpiry),
		Users:          services.NewUserService(userRepo),
		Connections:    services.NewConnectionService(userRepo, connectionRepo, notificationService, log),
		Notifications:  notificationService,
		Chat:           services.NewChatService(userRepo, connectionRepo, messageRepo, dispatcher, cfg.EchoToSender, log),
		Presence:       services.NewPresenceService(registry, presenceRepo, log),
		Log:            log,
		AllowedOrigins: cfg.Origins(),
		SessionBuffer:  cfg.SessionBuffer,
		BaseContext:    ctx,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.ServerPort)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	// graceful shutdown: ctx is done, which also closes every websocket session
	log.Info("shutting down server", "online", registry.Len())
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown incomplete", "error", err)
	}
	dispatcher.Close()

	log.Info("server stopped gracefully")
	return nil
}
