package auth

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/backend"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour)

	token, err := s.Create("ana", "backend-token")
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "backend-token", claims.BackendToken)
}

func TestSessionSealsBackendToken(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	token, err := s.Create("ana", "backend-token")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"username":"ana"`)
	assert.NotContains(t, string(payload), "backend-token")

	// a correctly signed session carrying a bad sealed token is rejected
	forged, err := jwt.NewWithClaims(jwtAlgorithm, &Claims{Username: "ana", SealedToken: "AAAA"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidSession)

	token, err = s.Create("ana", "")
	require.NoError(t, err)
	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Empty(t, claims.BackendToken)
}

func TestSessionRejectsTampering(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	token, err := s.Create("ana", "")
	require.NoError(t, err)

	_, err = NewSessions("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.Verify("")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "ana"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionExpiry(t *testing.T) {
	s := NewSessions("secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := s.Create("ana", "")
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestEmptySecretStillSigns(t *testing.T) {
	s := NewSessions("", 0)
	assert.Equal(t, 24*time.Hour, s.TTL())

	token, err := s.Create("ana", "")
	require.NoError(t, err)
	_, err = s.Verify(token)
	assert.NoError(t, err)
}

func TestLocalProvider(t *testing.T) {
	db, err := database.InitDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "auth.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, EnsureAdminExists(db, "admin", "pw"))
	require.NoError(t, EnsureAdminExists(db, "someone-else", "other"))

	var count int64
	db.Model(&database.MasterUser{}).Count(&count)
	assert.Equal(t, int64(1), count)

	p := &LocalProvider{DB: db}
	token, err := p.Authenticate(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = p.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type stubBackend struct {
	backend.API
	token string
	err   error
}

func (s *stubBackend) Login(context.Context, string, string) (string, error) {
	return s.token, s.err
}

func TestBackendProvider(t *testing.T) {
	p := &BackendProvider{Backend: &stubBackend{token: "tok"}}
	token, err := p.Authenticate(context.Background(), "ana", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	p.Backend = &stubBackend{err: &backend.APIError{StatusCode: 401, Message: "nope"}}
	_, err = p.Authenticate(context.Background(), "ana", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	p.Backend = &stubBackend{err: &backend.APIError{StatusCode: 503, Message: "down"}}
	_, err = p.Authenticate(context.Background(), "ana", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
