// package server contains middleware & handlers for the playlist analysis web service
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/analysis"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/services"
	"github.com/desertthunder/tally/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Analyzer computes playlist statistics. Implemented by [analysis.Analyzer].
type Analyzer interface {
	Analyze(ctx context.Context, playlistID string) (*analysis.Result, error)
	Contributors(ctx context.Context, playlistID string) ([]analysis.ContributorCount, error)
	Tracks(ctx context.Context, playlistID string) ([]models.TrackSummary, error)
}

// Library lists the current user's playlists. Implemented by [services.SpotifyClient].
type Library interface {
	UserPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// Tokens runs the OAuth flow. Implemented by [services.TokenManager].
type Tokens interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*services.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenSet, error)
}

// Options configures a [Server].
type Options struct {
	Analyzer       Analyzer
	Library        Library
	Tokens         Tokens
	Logger         *log.Logger
	CORSOrigin     string        // Access-Control-Allow-Origin value (default: *)
	StaticDir      string        // Directory served at / when set
	RequestTimeout time.Duration // Whole-request bound; <= 0 disables it
	NewState       func() string // OAuth state generator (default: shared.GenerateID)
}

// Server holds the dependencies of the HTTP handlers. It keeps no per-user state.
type Server struct {
	analyzer       Analyzer
	library        Library
	tokens         Tokens
	logger         *log.Logger
	corsOrigin     string
	staticDir      string
	requestTimeout time.Duration
	newState       func() string
}

// New creates a server from opts, filling defaults for the optional fields.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.NewState == nil {
		opts.NewState = shared.GenerateID
	}

	return &Server{
		analyzer:       opts.Analyzer,
		library:        opts.Library,
		tokens:         opts.Tokens,
		logger:         shared.WithLogger(opts.Logger, "component", "server"),
		corsOrigin:     opts.CORSOrigin,
		staticDir:      opts.StaticDir,
		requestTimeout: opts.RequestTimeout,
		newState:       opts.NewState,
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}
	return nil
}
