// Package auth stores the bearer credential used for authenticated calls.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/orbitfund/orbitfund/internal/config"
	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/logger"
)

// TokenEnv overrides the stored token when set.
const TokenEnv = "ORBITFUND_TOKEN"

// ErrNoCredential means no usable token is stored. It is the draft sentinel so
// the draft manager can tell a missing login from a broken store.
var ErrNoCredential = draft.ErrNoCredential

// Credentials is the persisted login.
type Credentials struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
}

// Store reads and writes credentials.yml.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a store at path. An empty path uses DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, now: time.Now}
}

// DefaultPath is credentials.yml next to the global config.
func DefaultPath() string {
	return filepath.Join(config.GlobalDir(), "credentials.yml")
}

// Path returns the credentials file location.
func (s *Store) Path() string { return s.path }

// Load reads the stored credentials.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if strings.TrimSpace(c.Token) == "" {
		return nil, ErrNoCredential
	}
	return &c, nil
}

// Save writes credentials readable only by the current user.
func (s *Store) Save(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	logger.Info("Stored credentials for %s", c.Username)
	return nil
}

// Clear removes stored credentials. Missing files are not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}

// Token returns the bearer token, preferring the environment. Expired tokens
// count as missing. It implements draft.CredentialSource.
func (s *Store) Token() (string, error) {
	tok := strings.TrimSpace(os.Getenv(TokenEnv))
	if tok == "" {
		c, err := s.Load()
		if err != nil {
			return "", err
		}
		tok = c.Token
	}

	info := Inspect(tok)
	if info.Expired(s.now()) {
		logger.Warn("Stored token expired at %s", info.ExpiresAt.Format(time.RFC3339))
		return "", fmt.Errorf("%w: token expired", ErrNoCredential)
	}
	return tok, nil
}

// TokenInfo is what can be read from a token without verifying it.
type TokenInfo struct {
	JWT       bool
	Subject   string
	ExpiresAt time.Time // zero when the token has no expiry
}

// Expired reports whether the token has an expiry in the past.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes JWT claims without verifying the signature. Verification is
// the backend's job; this only avoids sending tokens known to be stale.
// Opaque tokens yield a zero TokenInfo.
func Inspect(tok string) TokenInfo {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return TokenInfo{}
	}
	info := TokenInfo{JWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}
