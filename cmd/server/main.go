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

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not load configuration", "err", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	logger := handlers.NewLogger(os.Stdout, cfg.App.Env, level)
	slog.SetDefault(logger)

	if cfg.App.GinMode != "" {
		gin.SetMode(cfg.App.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logger.Error("database unavailable", "err", err)
		os.Exit(1)
	}

	h, err := handlers.New(cfg, db, logger)
	if err != nil {
		logger.Error("could not set up handlers", "err", err)
		os.Exit(1)
	}
	r, err := handlers.Router(h)
	if err != nil {
		logger.Error("could not build router", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handlers.Wrap(r, logger, cfg.App.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	// Start server non-blocking
	go func() {
		logger.Info("server starting", "port", cfg.App.Port, "backend", cfg.Backend.URL, "auth_mode", cfg.Auth.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("could not run server", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown, then close the DB pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", "err", err)
	}

	if err := database.Close(db); err != nil {
		logger.Warn("could not close database", "err", err)
	}
	logger.Info("server stopped")
}
