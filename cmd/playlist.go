package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/tally/internal/analysis"
	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/services"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistAnalyze prints the genre, artist and contributor tallies of a playlist.
func (r *Runner) PlaylistAnalyze(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	result, err := withCredential(ctx, r, cmd, func(ctx context.Context) (*analysis.Result, error) {
		return r.analyzer.Analyze(ctx, playlistID)
	})
	if err != nil {
		return err
	}
	return r.render(cmd, result, int(cmd.Int("limit")))
}

// PlaylistContributors prints the contributor tally of a playlist.
func (r *Runner) PlaylistContributors(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	contributors, err := withCredential(ctx, r, cmd, func(ctx context.Context) ([]analysis.ContributorCount, error) {
		return r.analyzer.Contributors(ctx, playlistID)
	})
	if err != nil {
		return err
	}
	return r.render(cmd, contributors, 0)
}

// PlaylistTracks prints the flattened track list of a playlist.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	tracks, err := withCredential(ctx, r, cmd, func(ctx context.Context) ([]models.TrackSummary, error) {
		return r.analyzer.Tracks(ctx, playlistID)
	})
	if err != nil {
		return err
	}
	return r.render(cmd, tracks, 0)
}

// PlaylistMine prints the current user's playlists.
func (r *Runner) PlaylistMine(ctx context.Context, cmd *cli.Command) error {
	playlists, err := withCredential(ctx, r, cmd, r.spotify.UserPlaylists)
	if err != nil {
		return err
	}
	return r.render(cmd, playlists, 0)
}

// withCredential runs fn with the access token from --token in its context.
//
// When the upstream rejects the token and --refresh-token is set, the token is renewed once and fn retried.
// A refresh token alone is exchanged up front.
func withCredential[T any](ctx context.Context, r *Runner, cmd *cli.Command, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	token := cmd.String("token")
	refreshToken := cmd.String("refresh-token")

	if token == "" {
		if refreshToken == "" {
			return zero, fmt.Errorf("%w: pass --token or set SPOTIFY_ACCESS_TOKEN", shared.ErrMissingCredential)
		}
		renewed, err := r.refreshAccessToken(ctx, refreshToken)
		if err != nil {
			return zero, err
		}
		token = renewed
	}

	result, err := fn(services.WithCredential(ctx, token))
	if err == nil || !errors.Is(err, shared.ErrUnauthorized) || refreshToken == "" {
		return result, err
	}

	r.writePlainln("⚠ Access token rejected. Refreshing...")
	renewed, refreshErr := r.refreshAccessToken(ctx, refreshToken)
	if refreshErr != nil {
		return zero, fmt.Errorf("reauthorization failed: %w", refreshErr)
	}
	return fn(services.WithCredential(ctx, renewed))
}

func (r *Runner) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	tokens, err := r.requireTokens()
	if err != nil {
		return "", err
	}

	set, err := tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	r.logger.Info("access token refreshed", "expires_in", set.ExpiresIn)
	return set.AccessToken, nil
}

// render encodes data with --format and writes it to --output or the runner's output.
func (r *Runner) render(cmd *cli.Command, data any, limit int) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	out, err := formatter.Render(format, data, limit)
	if err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, out, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.logger.Info("output saved", "file", path)
		return r.writePlain("%s %s\n", formatter.Styles().OK("✓ Saved"), path)
	}

	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
