package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/tally/internal/server"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	tokens, err := r.requireTokens()
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("static") {
		cfg.StaticDir = cmd.String("static")
	}

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err != nil || !info.IsDir() {
			return fmt.Errorf("%w: static directory %q not found", shared.ErrInvalidConfig, cfg.StaticDir)
		}
	}

	srv := server.New(server.Options{
		Analyzer:       r.analyzer,
		Library:        r.spotify,
		Tokens:         tokens,
		Logger:         r.logger,
		CORSOrigin:     cfg.CORSOrigin,
		StaticDir:      cfg.StaticDir,
		RequestTimeout: cfg.RequestTimeout(),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Bool("open") {
		loginURL := fmt.Sprintf("http://localhost:%d/auth/login", cfg.Port)
		go func() {
			time.Sleep(100 * time.Millisecond)
			if err := shared.OpenBrowser(loginURL); err != nil {
				r.logger.Warnf("failed to open browser automatically %v", err)
			}
		}()
	}

	return srv.ListenAndServe(ctx, cfg.Addr())
}
