package main

import (
	"context"

	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the Spotify authorization URL, optionally opening it in a browser.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	tokens, err := r.requireTokens()
	if err != nil {
		return err
	}

	authURL := tokens.AuthURL(shared.GenerateID())
	if err := r.writePlain("%s\n", authURL); err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			return r.writePlainln("⚠ Could not open browser automatically.")
		}
	}
	return nil
}

// AuthRefresh exchanges a refresh token and prints the new token set as JSON.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	tokens, err := r.requireTokens()
	if err != nil {
		return err
	}

	set, err := tokens.Refresh(ctx, cmd.String("refresh-token"))
	if err != nil {
		return err
	}

	r.logger.Info("access token refreshed", "expires_in", set.ExpiresIn)
	return r.writeJSON(set, true)
}
