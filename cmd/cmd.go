// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// credentialFlags are shared by every command that calls the Spotify Web API on a user's behalf.
func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Spotify access token",
			Sources: cli.EnvVars("SPOTIFY_ACCESS_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "refresh-token",
			Usage:   "Refresh token used to renew an expired access token",
			Sources: cli.EnvVars("SPOTIFY_REFRESH_TOKEN"),
		},
	}
}

// outputFlags control how results are rendered.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown or csv",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
	}
}

func playlistFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "Spotify playlist ID",
			Required: true,
		},
	}
	flags = append(flags, extra...)
	flags = append(flags, credentialFlags()...)
	return append(flags, outputFlags()...)
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the playlist analysis HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "static",
				Usage: "Directory of front-end files to serve at / (overrides server.static_dir)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the login page in a browser once the server is up",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles the OAuth flow from the terminal
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify OAuth helpers",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the Spotify authorization URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in a browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "refresh",
				Usage: "Exchange a refresh token for a new access token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "refresh-token",
						Usage:    "Refresh token issued at login",
						Sources:  cli.EnvVars("SPOTIFY_REFRESH_TOKEN"),
						Required: true,
					},
				},
				Action: r.AuthRefresh,
			},
		},
	}
}

// playlistCommand handles playlist analysis
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist analysis",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Tally genres, artists and contributors of a playlist",
				Flags: playlistFlags(&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"n"},
					Usage:   "Rows per tally in text and markdown output (0 for all)",
					Value:   10,
				}),
				Action: r.PlaylistAnalyze,
			},
			{
				Name:   "contributors",
				Usage:  "Tally who added the tracks of a playlist",
				Flags:  playlistFlags(),
				Action: r.PlaylistContributors,
			},
			{
				Name:   "tracks",
				Usage:  "List the tracks of a playlist",
				Flags:  playlistFlags(),
				Action: r.PlaylistTracks,
			},
			{
				Name:   "mine",
				Usage:  "List the current user's playlists",
				Flags:  append(credentialFlags(), outputFlags()...),
				Action: r.PlaylistMine,
			},
		},
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration helpers",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration (secrets masked)",
				Action: r.ConfigShow,
			},
		},
	}
}
