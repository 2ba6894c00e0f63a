package server

import (
	"net/http"
	"net/url"
	"strconv"
)

// handleLogin redirects the browser to the Spotify consent page.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := s.newState()
	http.Redirect(w, r, s.tokens.AuthURL(state), http.StatusFound)
}

// handleCallback exchanges the authorization code and hands the tokens to the front end through the URL fragment.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("state") == "" {
		redirectFragment(w, r, url.Values{"error": {"state_mismatch"}})
		return
	}

	set, err := s.tokens.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		s.logger.Error("token exchange failed", "error", err)
		redirectFragment(w, r, url.Values{
			"error":   {"token_exchange_failed"},
			"message": {err.Error()},
		})
		return
	}

	redirectFragment(w, r, url.Values{
		"access_token":  {set.AccessToken},
		"refresh_token": {set.RefreshToken},
		"expires_in":    {strconv.FormatInt(set.ExpiresIn, 10)},
	})
}

// handleRefresh renews an access token from the refresh_token query parameter.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.URL.Query().Get("refresh_token")
	if refreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token missing.")
		return
	}

	set, err := s.tokens.Refresh(r.Context(), refreshToken)
	if err != nil {
		s.logger.Error("token refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to refresh token.")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func redirectFragment(w http.ResponseWriter, r *http.Request, values url.Values) {
	http.Redirect(w, r, "/#"+values.Encode(), http.StatusFound)
}
