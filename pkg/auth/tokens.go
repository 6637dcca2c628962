package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Provider names the OAuth integrations the directory scrapes through.
type Provider string

const (
	// ProviderTooldex is the directory backend's own identity provider.
	ProviderTooldex     Provider = "tooldex"
	ProviderGitHub      Provider = "github"
	ProviderRavelry     Provider = "ravelry"
	ProviderThingiverse Provider = "thingiverse"
	ProviderGoat        Provider = "goat"
)

// Token holds the OAuth token details for one provider.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// expired reports whether the token needs a refresh. A small margin keeps a
// token that expires mid-request from being handed out.
func (t *Token) expired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry.Add(-30 * time.Second))
}

// TokenManager handles token persistence and refresh for one provider.
// Tokens live in a per-provider JSON file under the user config dir.
type TokenManager struct {
	provider     Provider
	tokenFile    string
	tokenURL     string
	clientID     string
	clientSecret string

	client *http.Client

	mu    sync.Mutex
	token *Token
}

// ManagerConfig carries the provider endpoints and credentials.
type ManagerConfig struct {
	Provider     Provider
	TokenURL     string
	ClientID     string
	ClientSecret string

	// TokenFile overrides the default location; used in tests.
	TokenFile string
}

// NewTokenManager creates a token manager for the given provider and tries
// to load a previously saved token.
func NewTokenManager(cfg ManagerConfig) (*TokenManager, error) {
	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		tokenFile = filepath.Join(home, ".tooldex", fmt.Sprintf("%s_tokens.json", cfg.Provider))
	}

	tm := &TokenManager{
		provider:     cfg.Provider,
		tokenFile:    tokenFile,
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
	// Try to load existing token; a missing file just means sign-in is
	// required.
	_ = tm.LoadToken()
	return tm, nil
}

// LoadToken loads the token from disk.
func (tm *TokenManager) LoadToken() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	data, err := os.ReadFile(tm.tokenFile)
	if err != nil {
		return err
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	tm.token = &token
	return nil
}

// SaveToken saves the token to disk.
func (tm *TokenManager) SaveToken() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.saveLocked()
}

func (tm *TokenManager) saveLocked() error {
	if tm.token == nil {
		return nil
	}

	data, err := json.MarshalIndent(tm.token, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(tm.tokenFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(tm.tokenFile, data, 0600)
}

// SetToken stores a freshly obtained token and persists it.
func (tm *TokenManager) SetToken(token Token) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.token = &token
	return tm.saveLocked()
}

// GetToken returns a valid access token, refreshing if necessary.
func (tm *TokenManager) GetToken(ctx context.Context) (*Token, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token == nil {
		return nil, fmt.Errorf("%s: %w", tm.provider, ErrNotAuthenticated)
	}

	if !tm.token.expired() {
		tok := *tm.token
		return &tok, nil
	}

	if tm.token.RefreshToken == "" {
		return nil, fmt.Errorf("%s token expired and no refresh token available: %w", tm.provider, ErrNotAuthenticated)
	}

	refreshed, err := tm.refresh(ctx, tm.token.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh %s token: %w", tm.provider, err)
	}
	if refreshed.RefreshToken == "" {
		// Providers that rotate refresh tokens omit the old one on reuse.
		refreshed.RefreshToken = tm.token.RefreshToken
	}
	tm.token = refreshed
	if err := tm.saveLocked(); err != nil {
		return nil, err
	}

	tok := *tm.token
	return &tok, nil
}

// refresh exchanges a refresh token at the provider token endpoint.
func (tm *TokenManager) refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", tm.clientID)
	form.Set("client_secret", tm.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := tm.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}
	if token.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}
