// starsync mirrors a local music library's capture list to favorites on the
// remote catalogue site.
//
// Command groups:
//   - setup: database migrations and browser session capture
//   - status/scan: reconcile the capture list against local files
//   - crawl/search/sync: background jobs against the catalogue
//   - track/state: per-track actions and state maintenance
//   - serve/tui: read-only HTTP status and the interactive terminal UI
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles first-run configuration: scan cache database and catalogue session.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the scan cache and catalogue session",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the scan cache database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "session",
				Usage: "Save catalogue session cookies from a browser 'Copy as cURL' command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from the browser DevTools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing the cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Path to write the session file (defaults to catalogue.session_file)",
					},
					configFlag(),
				},
				Action: r.SetupSession,
			},
		},
	}
}

// statusCommand reports the reconciled capture list.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show which captured tracks are missing locally and their catalogue state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv, or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"o"},
				Usage:   "Write a CSV export to the given path instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "rescan",
				Usage: "Re-walk the music directories instead of using the scan cache",
			},
		},
		Action: r.Status,
	}
}

// scanCommand walks the music directories and refreshes the scan cache.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "scan",
		Usage:  "Scan the local music library and reconcile against the capture list",
		Action: r.ScanLibrary,
	}
}

// crawlCommand imports the favorites listing from the catalogue.
func crawlCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "crawl",
		Usage:  "Crawl the catalogue favorites pages and import starred state",
		Action: r.Crawl,
	}
}

// searchCommand resolves capture list entries to catalogue tracks.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalogue for a track and remember its URL",
		ArgsUsage: "[\"Artist - Title\"]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Search every unresolved capture list entry",
			},
		},
		Action: r.SearchTracks,
	}
}

// syncCommand stars every resolved capture list entry.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Favorite every capture list track on the catalogue",
		Action: r.SyncStars,
	}
}

// trackCommand groups per-track actions.
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "Star, unstar, or dismiss a single track",
		Commands: []*cli.Command{
			{
				Name:      "star",
				Usage:     "Favorite a track on the catalogue",
				ArgsUsage: "\"Artist - Title\"",
				Action:    r.Star,
			},
			{
				Name:      "unstar",
				Usage:     "Remove a catalogue favorite and dismiss the track",
				ArgsUsage: "\"Artist - Title\"",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Confirm removing the remote favorite",
					},
				},
				Action: r.Unstar,
			},
			{
				Name:      "dismiss",
				Usage:     "Exclude a track from sync without touching the catalogue",
				ArgsUsage: "\"Artist - Title\"",
				Action:    r.Dismiss,
			},
			{
				Name:      "undismiss",
				Usage:     "Re-include a dismissed track in sync",
				ArgsUsage: "\"Artist - Title\"",
				Action:    r.Undismiss,
			},
			{
				Name:      "ack",
				Usage:     "Acknowledge that the catalogue version differs from local tags",
				ArgsUsage: "\"Artist - Title\"",
				Action:    r.AcknowledgeVersion,
			},
		},
	}
}

// stateCommand groups state store maintenance.
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect and maintain the persisted track state",
		Commands: []*cli.Command{
			{
				Name:   "reset-notfound",
				Usage:  "Clear all not-found flags so searches retry those tracks",
				Action: r.ResetNotFound,
			},
			{
				Name:   "outcomes",
				Usage:  "Print the append-only action log as JSON",
				Action: r.Outcomes,
			},
		},
	}
}

// serveCommand runs the read-only status HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve status and job progress over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to bind (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse and sync the capture list interactively",
		Action: r.TUI,
	}
}
