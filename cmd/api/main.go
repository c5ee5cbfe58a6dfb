package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/todo-tracker/internal/config"
	"github.com/Tomlord1122/todo-tracker/internal/database"
	"github.com/Tomlord1122/todo-tracker/internal/logging"
	"github.com/Tomlord1122/todo-tracker/internal/objectstore"
	"github.com/Tomlord1122/todo-tracker/internal/repository"
	"github.com/Tomlord1122/todo-tracker/internal/server"
	"github.com/Tomlord1122/todo-tracker/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, timeout time.Duration, log logging.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info(context.Background(), "shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error(ctxTimeout, "server forced to shutdown", "err", err)
	}

	if err := dbService.Close(); err != nil {
		log.Error(ctxTimeout, "closing database pool", "err", err)
	}

	done <- true
}

func main() {
	log := logging.NewJSON(os.Stdout, slog.LevelInfo)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "load config", "err", err)
		os.Exit(1)
	}

	dbService, err := database.New(cfg.DB)
	if err != nil {
		log.Error(ctx, "connect database", "err", err)
		os.Exit(1)
	}
	if err := dbService.Migrate(ctx); err != nil {
		log.Error(ctx, "migrate database", "err", err)
		os.Exit(1)
	}

	gormDB := dbService.GetDB()
	todoRepo := repository.NewGormTodoRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	profileRepo := repository.NewGormProfileRepository(gormDB)

	var avatars service.AvatarStore
	if cfg.S3.AvatarsEnabled() {
		store, err := objectstore.NewS3Store(ctx, cfg.S3)
		if err != nil {
			log.Error(ctx, "configure avatar store", "err", err)
			os.Exit(1)
		}
		avatars = store
	} else {
		log.Warn(ctx, "S3_BUCKET not set, avatar uploads disabled")
	}

	apiServer := server.NewServer(cfg, server.Deps{
		Todos:    service.NewTodoService(todoRepo, userRepo),
		Profiles: service.NewProfileService(profileRepo, userRepo, avatars, cfg.AvatarMaxBytes, log),
		DB:       dbService,
		Logger:   log,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, cfg.ShutdownTimeout, log, done)

	log.Info(ctx, "starting server", "addr", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "http server", "err", err)
		os.Exit(1)
	}

	<-done
	log.Info(ctx, "graceful shutdown complete")
}
