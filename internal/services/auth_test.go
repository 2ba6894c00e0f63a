package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/tally/internal/shared"
	tu "github.com/desertthunder/tally/internal/testing"
)

var testCreds = shared.SpotifyCredentials{
	ClientID:     "client",
	ClientSecret: "secret",
	RedirectURI:  "http://localhost:8888/auth/callback",
}

func newAccountsServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenManager(t *testing.T) {
	t.Run("NewTokenManager", func(t *testing.T) {
		tc := []struct {
			name  string
			creds shared.SpotifyCredentials
		}{
			{name: "missing client id", creds: shared.SpotifyCredentials{ClientSecret: "s", RedirectURI: "r"}},
			{name: "missing client secret", creds: shared.SpotifyCredentials{ClientID: "c", RedirectURI: "r"}},
			{name: "missing redirect uri", creds: shared.SpotifyCredentials{ClientID: "c", ClientSecret: "s"}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := NewTokenManager(tt.creds, "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials, got %v", err)
				}
			})
		}
	})

	t.Run("AuthURL", func(t *testing.T) {
		m, err := NewTokenManager(testCreds, "", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u, err := url.Parse(m.AuthURL("state-123"))
		if err != nil {
			t.Fatalf("invalid auth url: %v", err)
		}

		if u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
			t.Errorf("unexpected authorize endpoint %s", u)
		}

		q := u.Query()
		want := map[string]string{
			"response_type": "code",
			"client_id":     "client",
			"redirect_uri":  testCreds.RedirectURI,
			"state":         "state-123",
			"scope":         "user-read-private user-read-email playlist-read-private playlist-read-collaborative",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("expected %s=%q, got %q", k, v, q.Get(k))
			}
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		srv := newAccountsServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if id, secret, ok := r.BasicAuth(); !ok || id != "client" || secret != "secret" {
				t.Errorf("expected basic client auth, got %q/%q", id, secret)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("bad form: %v", err)
			}
			if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "the-code" {
				t.Errorf("unexpected form %v", r.PostForm)
			}
			if r.PostForm.Get("redirect_uri") != testCreds.RedirectURI {
				t.Errorf("expected redirect_uri, got %q", r.PostForm.Get("redirect_uri"))
			}
			tu.WriteJSON(w, http.StatusOK, map[string]any{
				"access_token":  "access",
				"token_type":    "Bearer",
				"expires_in":    3600,
				"refresh_token": "refresh",
				"scope":         "user-read-private",
			})
		})

		m, err := NewTokenManager(testCreds, srv.URL, srv.Client())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		set, err := m.Exchange(context.Background(), "the-code")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if set.AccessToken != "access" || set.RefreshToken != "refresh" || set.ExpiresIn != 3600 {
			t.Errorf("unexpected token set %+v", set)
		}
	})

	t.Run("Exchange Rejected", func(t *testing.T) {
		srv := newAccountsServer(t, tu.JSON(http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid authorization code",
		}))

		m, _ := NewTokenManager(testCreds, srv.URL, srv.Client())
		if _, err := m.Exchange(context.Background(), "stale"); !errors.Is(err, shared.ErrTokenExchange) {
			t.Errorf("expected ErrTokenExchange, got %v", err)
		}
	})

	t.Run("Exchange Missing Code", func(t *testing.T) {
		m, _ := NewTokenManager(testCreds, "", nil)
		if _, err := m.Exchange(context.Background(), ""); !errors.Is(err, shared.ErrMissingParameter) {
			t.Errorf("expected ErrMissingParameter, got %v", err)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Keeps Caller Refresh Token", func(t *testing.T) {
			srv := newAccountsServer(t, func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "old" {
					t.Errorf("unexpected form %v", r.PostForm)
				}
				tu.WriteJSON(w, http.StatusOK, map[string]any{
					"access_token": "fresh",
					"token_type":   "Bearer",
					"expires_in":   3600,
				})
			})

			m, _ := NewTokenManager(testCreds, srv.URL, srv.Client())
			set, err := m.Refresh(context.Background(), "old")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if set.AccessToken != "fresh" || set.RefreshToken != "old" || set.ExpiresIn != 3600 {
				t.Errorf("unexpected token set %+v", set)
			}
		})

		t.Run("Rotated Refresh Token", func(t *testing.T) {
			srv := newAccountsServer(t, tu.JSON(http.StatusOK, map[string]any{
				"access_token":  "fresh",
				"token_type":    "Bearer",
				"expires_in":    3600,
				"refresh_token": "rotated",
			}))

			m, _ := NewTokenManager(testCreds, srv.URL, srv.Client())
			set, err := m.Refresh(context.Background(), "old")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if set.RefreshToken != "rotated" {
				t.Errorf("expected rotated refresh token, got %s", set.RefreshToken)
			}
		})

		t.Run("Rejected", func(t *testing.T) {
			srv := newAccountsServer(t, tu.JSON(http.StatusBadRequest, map[string]any{"error": "invalid_grant"}))

			m, _ := NewTokenManager(testCreds, srv.URL, srv.Client())
			_, err := m.Refresh(context.Background(), "revoked")
			if !errors.Is(err, shared.ErrTokenExchange) {
				t.Errorf("expected ErrTokenExchange, got %v", err)
			}
			if !strings.Contains(err.Error(), "invalid_grant") {
				t.Errorf("expected upstream reason in error, got %v", err)
			}
		})

		t.Run("Missing Refresh Token", func(t *testing.T) {
			m, _ := NewTokenManager(testCreds, "", nil)
			if _, err := m.Refresh(context.Background(), ""); !errors.Is(err, shared.ErrMissingParameter) {
				t.Errorf("expected ErrMissingParameter, got %v", err)
			}
		})
	})
}
