package auth

import "context"

// StaticToken is a fixed bearer token, used for personal access tokens
// configured through the environment.
type StaticToken string

// Token returns the token as-is.
func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// ManagedSource adapts a TokenManager to the bearer token interface used by
// HTTP clients, refreshing through the provider when needed.
type ManagedSource struct {
	Manager *TokenManager
}

// Token returns a valid access token, refreshing it first if expired.
func (s *ManagedSource) Token(ctx context.Context) (string, error) {
	token, err := s.Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
