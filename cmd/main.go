package main

import (
	"context"
	"os"

	"github.com/desertthunder/tally/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := defaultConfigPath
	if v := os.Getenv("TALLY_CONFIG"); v != "" {
		configPath = v
	}

	config, err := loadConfig(configPath, os.Getenv)
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig reads path when it exists, otherwise starts from the embedded defaults, then applies
// environment overrides and validates the result.
func loadConfig(path string, getenv func(string) string) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tally",
		Usage:     "Analyze Spotify playlists and serve the analysis API",
		Version:   "0.1.0",
		Commands:  r.register(),
		Writer:    r.output,
		ErrWriter: r.output,
	}
}
