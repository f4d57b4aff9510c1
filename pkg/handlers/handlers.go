package handlers

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/auth"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/backend"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

//go:embed static/*
var staticEmbed embed.FS

//go:embed templates/*.gohtml
var templateEmbed embed.FS

// context keys set by SessionMiddleware
const (
	ctxUsername     = "username"
	ctxBackendToken = "backendToken"
)

var errStorage = errors.New("snapshot storage failed")

// Handler contains dependencies for the route handlers
type Handler struct {
	DB           *gorm.DB
	Backend      backend.API
	Sessions     *auth.Sessions
	Provider     auth.Provider
	Timeline     timeline.Options
	Logger       *slog.Logger
	SecureCookie bool
}

func (h *Handler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Templates parses the embedded page templates
func (h *Handler) Templates() (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(templateEmbed, "templates/*.gohtml")
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// SessionMiddleware verifies the session cookie. Pages redirect to the login form,
// API routes answer 401.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.SessionCookie)
		claims, err := h.Sessions.Verify(token)
		if err != nil {
			if isAPI(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Set(ctxBackendToken, claims.BackendToken)
		c.Next()
	}
}

// Healthz reports liveness
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// LoginPage serves the login form
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login", gin.H{"Title": "Sign in"})
}

// Login checks credentials with the configured provider and starts a session
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login", gin.H{"Title": "Sign in", "Error": "Username and password are required", "Username": req.Username})
		return
	}

	backendToken, err := h.Provider.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login", gin.H{"Title": "Sign in", "Error": "Invalid credentials", "Username": req.Username})
			return
		}
		h.log().Error("login failed", "username", req.Username, "err", err)
		c.HTML(http.StatusBadGateway, "login", gin.H{"Title": "Sign in", "Error": "Login service unavailable", "Username": req.Username})
		return
	}

	token, err := h.Sessions.Create(req.Username, backendToken)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "login", gin.H{"Title": "Sign in", "Error": "Could not create session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(h.Sessions.TTL().Seconds()), "/", "", h.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/schedules")
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", h.SecureCookie, true)
}

// respondError maps an error to a status and renders it as a page or JSON
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := http.StatusBadGateway, "Scheduling backend request failed"
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		if !isAPI(c) {
			h.clearSession(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		status, message = http.StatusUnauthorized, "Backend session expired"
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, database.ErrSnapshotNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, timeline.ErrNoValidWeekStart):
		status, message = http.StatusUnprocessableEntity, timeline.NoValidWeekMessage
	case errors.Is(err, errStorage):
		status, message = http.StatusInternalServerError, "Could not store snapshot"
	}

	if status >= http.StatusInternalServerError {
		h.log().Error("request failed", "path", c.Request.URL.Path, "status", status, "err", err)
	}

	if isAPI(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}
	c.HTML(status, "error", gin.H{"Title": http.StatusText(status), "Status": status, "Message": message, "Username": c.GetString(ctxUsername)})
	c.Abort()
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func backendToken(c *gin.Context) string {
	return c.GetString(ctxBackendToken)
}
