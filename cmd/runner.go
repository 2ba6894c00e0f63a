package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/analysis"
	"github.com/desertthunder/tally/internal/services"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyClient
	analyzer   *analysis.Analyzer
	tokens     *services.TokenManager
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration, wiring the Spotify client, analyzer and,
// when client credentials are configured, the token manager.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Spotify.Timeout()}
	}

	spotify := services.NewSpotifyClient(services.SpotifyClientOpts{
		BaseURL:           opts.Config.Spotify.APIURL,
		HTTPClient:        opts.HTTPClient,
		RequestsPerSecond: opts.Config.Spotify.RequestsPerSecond,
		Logger:            opts.Logger,
	})

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    spotify,
		analyzer: analysis.NewAnalyzer(spotify, analysis.AnalyzerOpts{
			LookupConcurrency: opts.Config.Spotify.LookupConcurrency,
			Logger:            opts.Logger,
		}),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if creds := opts.Config.Credentials.Spotify; creds.Configured() {
		tokens, err := services.NewTokenManager(creds, opts.Config.Spotify.AccountsURL, opts.HTTPClient)
		if err != nil {
			r.logger.Warn("spotify oauth disabled", "error", err)
		} else {
			r.tokens = tokens
		}
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, playlistCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireTokens returns the token manager or an error naming the missing configuration.
func (r *Runner) requireTokens() (*services.TokenManager, error) {
	if r.tokens == nil {
		return nil, fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or [credentials.spotify] in %s",
			shared.ErrMissingCredentials, r.configPath)
	}
	return r.tokens, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
