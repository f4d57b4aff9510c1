package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/auth"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/backend"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

type fakeBackend struct {
	schedules map[string]*models.Schedule
	err       error
}

func (f *fakeBackend) Login(_ context.Context, username, password string) (string, error) {
	if password != "pw" {
		return "", &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "bad credentials"}
	}
	return "tok-" + username, nil
}

func (f *fakeBackend) Machines(context.Context, string) ([]models.Machine, error) {
	return []models.Machine{{MachineID: "M1", Name: "Lathe", Type: "turning"}}, f.err
}

func (f *fakeBackend) MachineTypes(context.Context, string) ([]models.MachineType, error) {
	return []models.MachineType{{MachineTypeUUID: "t-1", Name: "Turning"}}, f.err
}

func (f *fakeBackend) Jobs(context.Context, string) ([]models.Job, error) {
	return []models.Job{{JobID: "j1", Name: "Bracket", DurationMinutes: models.IntPtr(60)}}, f.err
}

func (f *fakeBackend) Schedules(context.Context, string) ([]models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Schedule
	for _, s := range f.schedules {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeBackend) Schedule(_ context.Context, _ string, id string) (*models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.schedules[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: http.StatusNotFound, Message: "no such schedule"}
	}
	return s, nil
}

func (f *fakeBackend) Solve(_ context.Context, _ string, req models.SolveRequest) (*models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.schedules["s1"]
	s.ScheduleID = "solved"
	s.WeekStartDate = req.WeekStartDate
	return &s, nil
}

func (f *fakeBackend) Check(ctx context.Context, token, id string) (*models.Schedule, error) {
	return f.Schedule(ctx, token, id)
}

func sampleSchedule() *models.Schedule {
	lathe := &models.Machine{MachineID: "M1", Name: "Lathe"}
	return &models.Schedule{
		ScheduleID:    "s1",
		WeekStartDate: "2025-11-19",
		Machines:      []models.Machine{*lathe},
		ScheduledJobs: []models.ScheduledJob{
			{
				ID:                "monday",
				Job:               models.Job{Name: "Bracket", Description: "Cut and drill", DurationMinutes: models.IntPtr(60), Deadline: "2025-11-21"},
				AssignedMachine:   lathe,
				StartingTimeGrain: &models.StartingTimeGrain{StartingMinuteOfDay: models.IntPtr(450), Date: "2025-11-17"},
			},
			{
				ID:                "floating",
				Job:               models.Job{Name: "Deburr", DurationMinutes: models.IntPtr(30)},
				StartingTimeGrain: &models.StartingTimeGrain{StartingMinuteOfDay: models.IntPtr(0), Date: "2025-11-18"},
			},
			{
				ID:  "unplaced",
				Job: models.Job{Name: "Someday"},
			},
		},
	}
}

type testEnv struct {
	h      *Handler
	router *gin.Engine
	fake   *fakeBackend
	cookie *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "handlers.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	fake := &fakeBackend{schedules: map[string]*models.Schedule{
		"s1":     sampleSchedule(),
		"noweek": {ScheduleID: "noweek", WeekStartDate: "someday"},
	}}
	h := &Handler{
		DB:       db,
		Backend:  fake,
		Sessions: auth.NewSessions("test-secret", time.Hour),
		Provider: &auth.BackendProvider{Backend: fake},
		Timeline: timeline.DefaultOptions(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r, err := Router(h)
	require.NoError(t, err)

	token, err := h.Sessions.Create("ana", "tok-ana")
	require.NoError(t, err)
	return &testEnv{
		h:      h,
		router: r,
		fake:   fake,
		cookie: &http.Cookie{Name: auth.SessionCookie, Value: token},
	}
}

func (e *testEnv) do(method, path string, form url.Values, authed bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if authed {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(e.cookie)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthzAndStatic(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = env.do(http.MethodGet, "/static/app.css", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".tl-scroll")
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/schedules", nil, false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/api/schedules/s1/layout", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/", nil, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/schedules", w.Header().Get("Location"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="password"`)

	w = env.do(http.MethodPost, "/login", url.Values{"username": {"ana"}, "password": {"pw"}}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/schedules", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	claims, err := env.h.Sessions.Verify(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "tok-ana", claims.BackendToken)

	w = env.do(http.MethodPost, "/login", url.Values{"username": {"ana"}, "password": {"nope"}}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = env.do(http.MethodPost, "/login", url.Values{"username": {"ana"}}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/logout", nil, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestCatalogPages(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/machines", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lathe")

	w = env.do(http.MethodGet, "/machine-types", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Turning")

	w = env.do(http.MethodGet, "/jobs", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bracket")

	w = env.do(http.MethodGet, "/schedules", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2025-W47")
	assert.Contains(t, w.Body.String(), `href="/schedules/s1"`)
}

func TestScheduleTimelinePage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/schedules/s1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Mon 17 Nov")
	assert.Contains(t, body, "Sun 23 Nov")
	assert.Contains(t, body, "Lathe")
	assert.Contains(t, body, "Unassigned")
	assert.Contains(t, body, "left: 30.00px; width: 60.00px")
	assert.Contains(t, body, "1 job(s) not shown")
	assert.NotContains(t, body, "tl-popover")

	w = env.do(http.MethodGet, "/schedules/s1?zoom=2&job=monday", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, "left: 60.00px; width: 120.00px")
	assert.Contains(t, body, "tl-popover")
	assert.Contains(t, body, "Cut and drill")
	assert.Contains(t, body, "07:30 – 08:30")
	assert.Contains(t, body, "2025-11-21")
	assert.Contains(t, body, `href="/schedules/s1?zoom=2"`, "close control drops the selection")
	assert.Contains(t, body, "zoom=2.25")
	assert.Contains(t, body, "zoom=1.75")

	w = env.do(http.MethodGet, "/schedules/s1?job=nope", nil, true)
	assert.NotContains(t, w.Body.String(), "tl-popover")
}

func TestTimelineTrackFitsPopover(t *testing.T) {
	env := newTestEnv(t)
	single := sampleSchedule()
	single.ScheduleID = "single"
	single.ScheduledJobs = single.ScheduledJobs[:1]
	env.fake.schedules["single"] = single

	w := env.do(http.MethodGet, "/schedules/single", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "width: 4620.00px; height: 44.00px")

	w = env.do(http.MethodGet, "/schedules/single?job=monday", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "left: 30.00px; top: 50.00px", "popover sits below the only row")
	assert.Contains(t, body, "width: 4620.00px; height: 240.00px")
}

func TestCheckFormEscapesScheduleID(t *testing.T) {
	env := newTestEnv(t)
	odd := sampleSchedule()
	odd.ScheduleID = "a?b"
	env.fake.schedules["a?b"] = odd

	w := env.do(http.MethodGet, "/schedules/s1", nil, true)
	assert.Contains(t, w.Body.String(), `action="/schedules/s1/check"`)

	w = env.do(http.MethodGet, "/schedules/a%3Fb", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/schedules/a%3Fb/check"`)
}

func TestTimelineWithoutValidWeek(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/schedules/noweek", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), timeline.NoValidWeekMessage)
	assert.NotContains(t, w.Body.String(), "tl-scroll")

	w = env.do(http.MethodGet, "/api/schedules/noweek/layout", nil, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"No valid week start date in schedule"}`, w.Body.String())
}

type layoutResponse struct {
	Layout    timeline.View `json:"layout"`
	Zoom      zoomControls  `json:"zoom"`
	Selection *struct {
		Bar      timeline.Bar   `json:"bar"`
		Machine  string         `json:"machine"`
		Duration int            `json:"durationMinutes"`
		Position timeline.Point `json:"position"`
	} `json:"selection"`
}

func decodeLayout(t *testing.T, w *httptest.ResponseRecorder) layoutResponse {
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp layoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestScheduleLayoutJSON(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeLayout(t, env.do(http.MethodGet, "/api/schedules/s1/layout?zoom=99", nil, true))
	assert.Equal(t, 4.0, resp.Layout.PixelsPerMinute)
	assert.Equal(t, 4.0, resp.Zoom.Current)
	assert.False(t, resp.Zoom.CanIn)
	assert.True(t, resp.Zoom.CanOut)
	assert.Equal(t, 7*660*4.0, resp.Layout.TrackWidth)
	assert.Equal(t, "2025-11-17", resp.Layout.WeekStart)
	assert.Equal(t, timeline.ISOWeek{Week: 47, Year: 2025}, resp.Layout.Week)
	require.Len(t, resp.Layout.Rows, 2)
	assert.Equal(t, "m1", resp.Layout.Rows[0].Key)
	assert.Equal(t, timeline.UnassignedKey, resp.Layout.Rows[1].Key)
	assert.Equal(t, 1, resp.Layout.Hidden)
	assert.Nil(t, resp.Selection)

	resp = decodeLayout(t, env.do(http.MethodGet, "/api/schedules/s1/layout?zoom=2&job=monday", nil, true))
	require.NotNil(t, resp.Selection)
	assert.Equal(t, "Lathe", resp.Selection.Machine)
	assert.Equal(t, 60, resp.Selection.Duration)
	assert.Equal(t, timeline.Point{Left: 60, Top: 50}, resp.Selection.Position)

	resp = decodeLayout(t, env.do(http.MethodGet, "/api/schedules/s1/layout?zoom=2&job=floating", nil, true))
	require.NotNil(t, resp.Selection)
	assert.Equal(t, "Unassigned", resp.Selection.Machine)
	assert.Equal(t, 1, resp.Selection.Bar.DayIndex)
	assert.True(t, resp.Selection.Position.Above, "bottom row flips the popover above the bar")
	assert.Equal(t, 0.0, resp.Selection.Position.Top)
}

func TestBackendErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/schedules/missing", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/schedules/missing/layout", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.fake.err = &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "expired"}
	w = env.do(http.MethodGet, "/schedules/s1", nil, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/api/schedules/s1/layout", nil, true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.fake.err = &backend.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	w = env.do(http.MethodGet, "/machines", nil, true)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Scheduling backend request failed")
}

func TestSolveAndSnapshots(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/schedules/solve", url.Values{"weekStartDate": {"2025-11-19"}}, true)
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/snapshots/"), location)

	w = env.do(http.MethodGet, location, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Snapshot from solve by ana")
	assert.NotContains(t, w.Body.String(), "Check schedule")

	snapID := strings.TrimPrefix(location, "/snapshots/")
	resp := decodeLayout(t, env.do(http.MethodGet, "/api/snapshots/"+snapID+"/layout", nil, true))
	assert.Equal(t, "solved", resp.Layout.ScheduleID)

	w = env.do(http.MethodPost, "/schedules/s1/check", nil, true)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = env.do(http.MethodGet, "/api/snapshots", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Totals map[string]int `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, map[string]int{"snapshots": 2, "solves": 1, "checks": 1, "schedules": 2}, history.Totals)

	w = env.do(http.MethodGet, "/api/snapshots?limit=zero", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/snapshots/3f1c2a8e-5b4d-4c8a-9e1f-0a2b3c4d5e6f", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSolveRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/schedules/solve", url.Values{}, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/schedules?error=")

	w = env.do(http.MethodPost, "/schedules/solve", url.Values{"weekStartDate": {"next week"}}, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "not+a+date")
}

func TestValidateSchedule(t *testing.T) {
	env := newTestEnv(t)

	payload, err := json.Marshal(sampleSchedule())
	require.NoError(t, err)

	w := env.postJSON("/api/layout/validate", string(payload))
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Valid bool           `json:"valid"`
		Error string         `json:"error"`
		Stats map[string]any `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, "2025-W47", result.Stats["iso_week"])
	assert.Equal(t, float64(3), result.Stats["job_count"])
	assert.Equal(t, float64(1), result.Stats["hidden_count"])

	w = env.postJSON("/api/layout/validate", `{"weekStartDate":"2025-11-17","scheduledJobs":[{"id":"a"},{"id":"a"}]}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "Duplicate scheduled job ID: a")

	w = env.postJSON("/api/layout/validate", `{"weekStartDate":""}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, timeline.NoValidWeekMessage, result.Error)

	w = env.postJSON("/api/layout/validate", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeLayout(t, env.postJSON("/api/layout?zoom=0.5", string(payload)))
	assert.Equal(t, 0.5, resp.Layout.PixelsPerMinute)
}

func TestZoomLinks(t *testing.T) {
	z := timeline.NewZoom(timeline.DefaultZoomConfig())
	z.Set(4)

	zc := zoomLinks(z, "/schedules/s1", "")
	assert.Equal(t, "/schedules/s1?zoom=4", zc.InURL)
	assert.Equal(t, "/schedules/s1?zoom=3.75", zc.OutURL)
	assert.Equal(t, "/schedules/s1?zoom=1", zc.ResetURL)
	assert.Equal(t, 4.0, z.PixelsPerMinute(), "computing links leaves the zoom unchanged")

	assert.Equal(t, "/snapshots/x?job=a+b&zoom=0.25", timelineURL("/snapshots/x", 0.25, "a b"))
}
