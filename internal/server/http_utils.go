package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/tally/internal/shared"
)

const (
	msgMissingToken     = "Unauthorized: Access token missing."
	msgMissingPlaylist  = "Bad Request: Playlist ID is missing."
	msgInvalidToken     = "Unauthorized: Invalid or expired Spotify access token."
	msgPlaylistNotFound = "Playlist not found or not accessible."
)

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeUpstreamError maps err onto a status code and message. fallback is used for 500s.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, shared.ErrMissingCredential):
		writeError(w, http.StatusUnauthorized, msgMissingToken)
	case errors.Is(err, shared.ErrMissingParameter):
		writeError(w, http.StatusBadRequest, msgMissingPlaylist)
	case errors.Is(err, shared.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, http.StatusNotFound, msgPlaylistNotFound)
	default:
		s.logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
