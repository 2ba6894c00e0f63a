package main

import (
	"context"
	"strings"

	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded default configuration to disk.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// ConfigShow prints the effective configuration with the client secret masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	masked := *r.config
	masked.Credentials.Spotify.ClientSecret = mask(masked.Credentials.Spotify.ClientSecret)
	return r.writeJSON(masked, true)
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
