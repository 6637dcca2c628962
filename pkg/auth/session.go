// Package auth wires the current user identity and access tokens for the
// rest of the toolkit. A session is either a dev-mode fixture identity or a
// token-file-backed session against the identity provider; both expose the
// same interface, so the API client and scrapers never know which they got.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tooldex/pkg/domain"
)

// ErrNotAuthenticated is returned when a token is requested from a session
// that has no usable credentials.
var ErrNotAuthenticated = errors.New("not authenticated")

// Identity is the signed-in user as the rest of the toolkit sees it.
type Identity struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name,omitempty"`
	Role        domain.Role `json:"role"`
}

// Session exposes the current identity and a token getter. The token getter
// satisfies httpclient.TokenSource so a session can be handed directly to
// the API client.
type Session interface {
	Identity() Identity
	Token(ctx context.Context) (string, error)
}

// DevSession is a fixture identity used when the app runs without the
// identity provider. The token is a static placeholder the dev backend
// accepts.
type DevSession struct {
	User     Identity
	DevToken string
}

// NewDevSession builds a dev session with a default local-admin identity.
func NewDevSession() *DevSession {
	return &DevSession{
		User: Identity{
			UserID:      "dev-user",
			Username:    "dev",
			Email:       "dev@localhost",
			DisplayName: "Local Developer",
			Role:        domain.RoleAdmin,
		},
		DevToken: "dev-token",
	}
}

// Identity returns the fixture identity.
func (s *DevSession) Identity() Identity {
	return s.User
}

// Token returns the static dev token.
func (s *DevSession) Token(ctx context.Context) (string, error) {
	if s.DevToken == "" {
		return "", ErrNotAuthenticated
	}
	return s.DevToken, nil
}

// ProviderSession is a session backed by a TokenManager for a real identity
// provider. The identity is whatever the provider reported at sign-in.
type ProviderSession struct {
	User   Identity
	Tokens *TokenManager
}

// Identity returns the provider-reported identity.
func (s *ProviderSession) Identity() Identity {
	return s.User
}

// SaveIdentity persists the identity the provider reported at sign-in.
// An empty path uses identity.json under the user config dir, next to the
// token files.
func SaveIdentity(id Identity, path string) error {
	if path == "" {
		var err error
		path, err = defaultIdentityFile()
		if err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ResumeSession rebuilds the provider-backed session from a saved identity
// and the provider's token manager. A missing identity file is not an
// error: the session starts with a zero identity and the first token
// request reports ErrNotAuthenticated if sign-in never happened.
func ResumeSession(tokens *TokenManager, path string) (*ProviderSession, error) {
	if path == "" {
		var err error
		path, err = defaultIdentityFile()
		if err != nil {
			return nil, err
		}
	}

	session := &ProviderSession{Tokens: tokens}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return session, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &session.User); err != nil {
		return nil, fmt.Errorf("decode saved identity: %w", err)
	}
	return session, nil
}

func defaultIdentityFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tooldex", "identity.json"), nil
}

// Token returns a valid access token, refreshing through the manager when
// the stored one has expired.
func (s *ProviderSession) Token(ctx context.Context) (string, error) {
	if s.Tokens == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := s.Tokens.GetToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
