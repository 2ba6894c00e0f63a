package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler builds the router with every route and middleware registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.corsOrigin))
	if s.requestTimeout > 0 {
		r.Use(middleware.Timeout(s.requestTimeout))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", s.handleLogin)
		r.Get("/callback", s.handleCallback)
		r.Get("/refresh_token", s.handleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireCredential)

		r.Route("/playlist", func(r chi.Router) {
			for _, path := range []string{"/analyze/", "/analyze/{playlistID}"} {
				r.Get(path, s.handleAnalyze)
			}
			for _, path := range []string{"/contributors/", "/contributors/{playlistID}"} {
				r.Get(path, s.handleContributors)
			}
			for _, path := range []string{"/tracks/", "/tracks/{playlistID}"} {
				r.Get(path, s.handleTracks)
			}
		})

		r.Get("/me/playlists", s.handleMyPlaylists)
	})

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}

	return r
}
