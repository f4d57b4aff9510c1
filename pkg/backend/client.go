package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("backend rejected credentials")
)

// APIError is a non-2xx answer from the scheduling backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error [%d]: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match 401 and 404 answers with errors.Is
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// API is what the dashboard needs from the scheduling backend
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Machines(ctx context.Context, token string) ([]models.Machine, error)
	MachineTypes(ctx context.Context, token string) ([]models.MachineType, error)
	Jobs(ctx context.Context, token string) ([]models.Job, error)
	Schedules(ctx context.Context, token string) ([]models.Schedule, error)
	Schedule(ctx context.Context, token, id string) (*models.Schedule, error)
	Solve(ctx context.Context, token string, req models.SolveRequest) (*models.Schedule, error)
	Check(ctx context.Context, token, id string) (*models.Schedule, error)
}

// Client talks to the scheduling backend over REST
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a backend access token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	body := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login: %w", ErrUnauthorized)
	}
	return out.AccessToken, nil
}

// Machines lists all machines
func (c *Client) Machines(ctx context.Context, token string) ([]models.Machine, error) {
	var out []models.Machine
	return out, c.do(ctx, http.MethodGet, "/machines", token, nil, &out)
}

// MachineTypes lists all machine types
func (c *Client) MachineTypes(ctx context.Context, token string) ([]models.MachineType, error) {
	var out []models.MachineType
	return out, c.do(ctx, http.MethodGet, "/machine-types", token, nil, &out)
}

// Jobs lists all job definitions
func (c *Client) Jobs(ctx context.Context, token string) ([]models.Job, error) {
	var out []models.Job
	return out, c.do(ctx, http.MethodGet, "/jobs", token, nil, &out)
}

// Schedules lists stored schedules
func (c *Client) Schedules(ctx context.Context, token string) ([]models.Schedule, error) {
	var out []models.Schedule
	return out, c.do(ctx, http.MethodGet, "/schedules", token, nil, &out)
}

// Schedule fetches one schedule
func (c *Client) Schedule(ctx context.Context, token, id string) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.do(ctx, http.MethodGet, "/schedules/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Solve asks the backend to build a schedule for a week
func (c *Client) Solve(ctx context.Context, token string, req models.SolveRequest) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.do(ctx, http.MethodPost, "/schedules/solve", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Check asks the backend to re-validate a schedule
func (c *Client) Check(ctx context.Context, token, id string) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.do(ctx, http.MethodPost, "/schedules/"+url.PathEscape(id)+"/check", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body, resp.Status)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts {"error": ...} or {"message": ...} from an error body
func errorMessage(r io.Reader, fallback string) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return fallback
}
