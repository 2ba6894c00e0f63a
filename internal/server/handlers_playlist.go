package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "tally"})
}

// playlistID reads the route parameter, writing a 400 when it is empty.
func playlistID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "playlistID")
	if id == "" {
		writeError(w, http.StatusBadRequest, msgMissingPlaylist)
		return "", false
	}
	return id, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, ok := playlistID(w, r)
	if !ok {
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, err, "Failed to analyze playlist data.")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleContributors(w http.ResponseWriter, r *http.Request) {
	id, ok := playlistID(w, r)
	if !ok {
		return
	}

	contributors, err := s.analyzer.Contributors(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, err, "Failed to fetch contributors data.")
		return
	}

	writeJSON(w, http.StatusOK, contributors)
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	id, ok := playlistID(w, r)
	if !ok {
		return
	}

	tracks, err := s.analyzer.Tracks(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, err, "Failed to fetch track data.")
		return
	}

	writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleMyPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.library.UserPlaylists(r.Context())
	if err != nil {
		s.writeUpstreamError(w, err, "Failed to fetch user playlists.")
		return
	}

	writeJSON(w, http.StatusOK, playlists)
}
