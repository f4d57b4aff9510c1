package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/handlers"
)

var app http.Handler

func init() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load()
	if err != nil {
		app = unavailable(err)
		return
	}
	logger := handlers.NewLogger(os.Stdout, cfg.App.Env, slog.LevelInfo)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		app = unavailable(err)
		return
	}

	h, err := handlers.New(cfg, db, logger)
	if err != nil {
		app = unavailable(err)
		return
	}
	r, err := handlers.Router(h)
	if err != nil {
		app = unavailable(err)
		return
	}
	app = handlers.Wrap(r, logger, cfg.App.CORSOrigins)
}

// unavailable answers every request with 503 when startup failed
func unavailable(err error) http.Handler {
	slog.Error("dashboard startup failed", "err", err)
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	app.ServeHTTP(w, r)
}
