package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"gorm.io/gorm"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/auth"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/backend"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
)

// NewLogger returns a JSON logger whose attributes follow the ECS schema used for request logs
func NewLogger(w io.Writer, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "scheduler-dashboard"),
		slog.String("env", env),
	)
}

// Router registers every dashboard route on a new gin engine
func Router(h *Handler) (*gin.Engine, error) {
	tmpl, err := h.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	// Static files served from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/healthz", h.Healthz)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	pages := r.Group("/")
	pages.Use(h.SessionMiddleware())
	{
		pages.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, "/schedules")
		})
		pages.GET("/machines", h.Machines)
		pages.GET("/machine-types", h.MachineTypes)
		pages.GET("/jobs", h.Jobs)
		pages.GET("/schedules", h.Schedules)
		pages.POST("/schedules/solve", h.Solve)
		pages.GET("/schedules/:id", h.ScheduleTimeline)
		pages.POST("/schedules/:id/check", h.Check)
		pages.GET("/snapshots/:id", h.SnapshotTimeline)
	}

	api := r.Group("/api")
	api.Use(h.SessionMiddleware())
	{
		api.GET("/schedules/:id/layout", h.ScheduleLayout)
		api.GET("/snapshots", h.SnapshotHistory)
		api.GET("/snapshots/:id/layout", h.SnapshotLayout)
		api.POST("/layout", h.PreviewLayout)
		api.POST("/layout/validate", h.ValidateSchedule)
	}

	return r, nil
}

// Wrap adds request logging and, when origins are configured, CORS around the engine
func Wrap(engine http.Handler, logger *slog.Logger, origins []string) http.Handler {
	handler := httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	})(engine)

	if len(origins) == 0 {
		return handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		MaxAge:           300,
	})(handler)
}

// New wires a Handler from the configuration. In local auth mode the admin account is
// created when master_users is empty.
func New(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*Handler, error) {
	opts, err := cfg.Timeline.Options()
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	h := &Handler{
		DB:           db,
		Backend:      client,
		Sessions:     auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Provider:     &auth.BackendProvider{Backend: client},
		Timeline:     opts,
		Logger:       logger,
		SecureCookie: cfg.Auth.SecureCookie,
	}
	if cfg.Auth.Mode == config.AuthModeLocal {
		if err := auth.EnsureAdminExists(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			return nil, err
		}
		h.Provider = &auth.LocalProvider{DB: db}
	}
	return h, nil
}
