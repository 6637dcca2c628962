package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooldex/pkg/domain"
)

func TestDevSession(t *testing.T) {
	s := NewDevSession()

	assert.Equal(t, domain.RoleAdmin, s.Identity().Role)
	assert.True(t, s.Identity().Role.CanModerate())

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dev-token", token)

	s.DevToken = ""
	_, err = s.Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRolePermissions(t *testing.T) {
	assert.False(t, domain.RoleUser.CanModerate())
	assert.False(t, domain.RoleUser.CanAdminister())
	assert.True(t, domain.RoleModerator.CanModerate())
	assert.False(t, domain.RoleModerator.CanAdminister())
	assert.True(t, domain.RoleAdmin.CanModerate())
	assert.True(t, domain.RoleAdmin.CanAdminister())
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "github_tokens.json")

	tm, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderGitHub,
		TokenFile: tokenFile,
	})
	require.NoError(t, err)

	_, err = tm.GetToken(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, tm.SetToken(Token{
		AccessToken: "abc123",
		Expiry:      time.Now().Add(time.Hour),
	}))

	// A fresh manager over the same file picks the token up from disk.
	tm2, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderGitHub,
		TokenFile: tokenFile,
	})
	require.NoError(t, err)

	tok, err := tm2.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok.AccessToken)
}

func TestTokenManager_RefreshesExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","expires_in":3600}`))
	}))
	defer server.Close()

	tm, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderThingiverse,
		TokenURL:  server.URL,
		ClientID:  "cid",
		TokenFile: filepath.Join(t.TempDir(), "thingiverse_tokens.json"),
	})
	require.NoError(t, err)

	require.NoError(t, tm.SetToken(Token{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		Expiry:       time.Now().Add(-time.Minute),
	}))

	tok, err := tm.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)
	// Rotating providers may omit the refresh token; the old one is kept.
	assert.Equal(t, "old-refresh", tok.RefreshToken)
	assert.True(t, tok.Expiry.After(time.Now()))
}

func TestProviderSession_Token(t *testing.T) {
	tm, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderRavelry,
		TokenFile: filepath.Join(t.TempDir(), "ravelry_tokens.json"),
	})
	require.NoError(t, err)
	require.NoError(t, tm.SetToken(Token{AccessToken: "rav-token", Expiry: time.Now().Add(time.Hour)}))

	s := &ProviderSession{
		User:   Identity{UserID: "u1", Role: domain.RoleUser},
		Tokens: tm,
	}

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rav-token", token)
}

func TestResumeSession_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	identityFile := filepath.Join(dir, "identity.json")

	require.NoError(t, SaveIdentity(Identity{
		UserID:   "u42",
		Username: "maker",
		Role:     domain.RoleModerator,
	}, identityFile))

	tm, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderTooldex,
		TokenFile: filepath.Join(dir, "tooldex_tokens.json"),
	})
	require.NoError(t, err)
	require.NoError(t, tm.SetToken(Token{AccessToken: "back-token", Expiry: time.Now().Add(time.Hour)}))

	session, err := ResumeSession(tm, identityFile)
	require.NoError(t, err)
	assert.Equal(t, "u42", session.Identity().UserID)
	assert.True(t, session.Identity().Role.CanModerate())

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "back-token", token)
}

func TestResumeSession_MissingIdentityFile(t *testing.T) {
	dir := t.TempDir()

	tm, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderTooldex,
		TokenFile: filepath.Join(dir, "tooldex_tokens.json"),
	})
	require.NoError(t, err)

	session, err := ResumeSession(tm, filepath.Join(dir, "identity.json"))
	require.NoError(t, err)
	assert.Equal(t, Identity{}, session.Identity())

	// Without a saved token the session reports sign-in is required.
	_, err = session.Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestManagedSource_Token(t *testing.T) {
	tm, err := NewTokenManager(ManagerConfig{
		Provider:  ProviderThingiverse,
		TokenFile: filepath.Join(t.TempDir(), "thingiverse_tokens.json"),
	})
	require.NoError(t, err)
	require.NoError(t, tm.SetToken(Token{AccessToken: "thing-token", Expiry: time.Now().Add(time.Hour)}))

	source := &ManagedSource{Manager: tm}
	token, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thing-token", token)
}
