package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tally/internal/shared"
	"golang.org/x/oauth2"
)

const spotifyAccountsURL = "https://accounts.spotify.com"

// Scopes requested at login.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// TokenSet is the credential bundle handed back to the client after a code exchange or refresh.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenManager runs the OAuth authorization-code flow against Spotify Accounts.
//
// It holds only the registered client's credentials; tokens are returned to the caller and never stored.
type TokenManager struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewTokenManager builds a token manager for the registered client. An empty accountsURL selects Spotify Accounts.
func NewTokenManager(creds shared.SpotifyCredentials, accountsURL string, client *http.Client) (*TokenManager, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri", shared.ErrMissingCredentials)
	}
	if accountsURL == "" {
		accountsURL = spotifyAccountsURL
	}
	accountsURL = strings.TrimRight(accountsURL, "/")

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   accountsURL + "/authorize",
			TokenURL:  accountsURL + "/api/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &TokenManager{config: config, httpClient: client}, nil
}

// AuthURL returns the Spotify authorization URL for user login, carrying state for the callback.
func (m *TokenManager) AuthURL(state string) string {
	return m.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token set.
func (m *TokenManager) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingParameter)
	}

	tok, err := m.config.Exchange(m.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}
	return newTokenSet(tok), nil
}

// Refresh obtains a fresh access token. The returned refresh token is the one the upstream issued, or the
// caller's own when the upstream keeps it unchanged.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token", shared.ErrMissingParameter)
	}

	tok, err := m.config.TokenSource(m.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	set := newTokenSet(tok)
	if set.RefreshToken == "" {
		set.RefreshToken = refreshToken
	}
	return set, nil
}

func (m *TokenManager) withClient(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func newTokenSet(tok *oauth2.Token) *TokenSet {
	return &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn(tok),
	}
}

// expiresIn prefers the lifetime the upstream reported and falls back to the computed expiry.
func expiresIn(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	if tok.Expiry.IsZero() {
		return 0
	}
	return int64(time.Until(tok.Expiry).Round(time.Second) / time.Second)
}
