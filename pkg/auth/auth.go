package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// SessionCookie is the name of the dashboard session cookie
const SessionCookie = "dashboard_session"

var jwtAlgorithm = jwt.SigningMethodHS256

// bcryptCost is lowered by tests
var bcryptCost = 14

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid session")
)

// Claims represents the session JWT claims. The backend token only travels sealed.
type Claims struct {
	Username     string `json:"username"`
	BackendToken string `json:"-"`
	SealedToken  string `json:"bt,omitempty"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Sessions issues and verifies session tokens
type Sessions struct {
	secret []byte
	aead   cipher.AEAD
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session signer. An empty secret gets a random one,
// so sessions do not survive a restart.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sealKey := make([]byte, chacha20poly1305.KeySize)
	_, _ = io.ReadFull(hkdf.New(sha256.New, key, nil, []byte("dashboard backend token")), sealKey)
	aead, _ := chacha20poly1305.NewX(sealKey)
	return &Sessions{secret: key, aead: aead, ttl: ttl, now: time.Now}
}

func (s *Sessions) seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(s.aead.Seal(nonce, nonce, []byte(plain), nil)), nil
}

func (s *Sessions) open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, box := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, box, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// TTL is how long an issued session stays valid
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Create creates a new session token for a user
func (s *Sessions) Create(username, backendToken string) (string, error) {
	sealed, err := s.seal(backendToken)
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := &Claims{
		Username:    username,
		SealedToken: sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.secret)
}

// Verify verifies a session token
func (s *Sessions) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwtAlgorithm.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	if !token.Valid || claims.Username == "" {
		return nil, ErrInvalidSession
	}
	if claims.BackendToken, err = s.open(claims.SealedToken); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	return claims, nil
}
