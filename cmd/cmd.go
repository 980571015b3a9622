// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// analyzeCommand uploads one audio file for a copyright-risk analysis.
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze an audio file for copyright risk",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Analyze,
	}
}

// compareCommand analyzes an AI song against a specific copyrighted song.
func compareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Compare an AI-generated song against a copyrighted song",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "ai-song"},
			&cli.StringArg{Name: "copyrighted-song"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Compare,
	}
}

// libraryCommand manages saved analyses.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage saved analyses",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved analyses, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "show",
				Usage: "Show one saved analysis",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryShow,
			},
			{
				Name:  "rename",
				Usage: "Rename a saved analysis",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "title"},
				},
				Action: r.LibraryRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved analysis",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryDelete,
			},
			{
				Name:  "export",
				Usage: "Export the library or one analysis to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (base filename or directory)",
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "Analysis ID for markdown export",
					},
					&cli.BoolFlag{
						Name:  "audio",
						Usage: "Include stored audio in markdown export",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every analysis as a markdown bundle",
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// catalogCommand browses and submits to the public Cleared Catalog.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Cleared Catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog entries",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "submit",
				Usage: "Submit a cleared track to the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Track description",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Contact email",
					},
					&cli.StringFlag{
						Name:  "audio",
						Usage: "Path to the audio file",
					},
				},
				Action: r.CatalogSubmit,
			},
		},
	}
}

// chatCommand sends one assistant turn and streams the reply.
func chatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Ask Melody, the AI assistant",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "message"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Clear the conversation before sending",
			},
		},
		Action: r.Chat,
	}
}

// reportCommand groups report and creative-tool operations.
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Reports and creative tools",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate the narrative report for a saved analysis",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ReportGenerate,
			},
			{
				Name:  "brainstorm",
				Usage: "Brainstorm remix ideas for a saved analysis",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Brainstorming strategy",
						Value: "safer-rewrite",
					},
					&cli.StringFlag{
						Name:  "theme",
						Usage: "Optional creative theme",
					},
				},
				Action: r.Brainstorm,
			},
			{
				Name:    "enhance-prompt",
				Aliases: []string{"enhance"},
				Usage:   "Rewrite a music-generation prompt (omit the argument to resume the last draft)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "prompt"},
				},
				Action: r.EnhancePrompt,
			},
			{
				Name:  "stems",
				Usage: "Suggest replacement ideas for a flagged stem",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "stem"},
				},
				Action: r.StemAlternatives,
			},
		},
	}
}

// shareCommand publishes a saved analysis and prints its share link.
func shareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "share",
		Usage: "Publish a saved analysis and print its share link",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Share,
	}
}

// openCommand resolves a share link and displays the analysis.
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open a shared analysis by link or ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "browser",
				Usage: "Open the link in the default browser instead",
			},
		},
		Action: r.Open,
	}
}

// accountCommand manages the local account record.
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage the signed-in account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in (local only, no credentials)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email address",
						Required: true,
					},
				},
				Action: r.AccountLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear all local state",
				Action: r.AccountLogout,
			},
			{
				Name:  "update",
				Usage: "Update account details",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Email address",
					},
				},
				Action: r.AccountUpdate,
			},
			{
				Name:   "show",
				Usage:  "Show the current account",
				Action: r.AccountShow,
			},
		},
	}
}

// statusCommand reports backend health.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check backend service health",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// feedbackCommand submits user feedback.
func feedbackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "feedback",
		Usage: "Send feedback to the MelodyCompare team",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Feedback type: bug, feature, or general",
				Value: "general",
			},
			&cli.StringFlag{
				Name:     "message",
				Aliases:  []string{"m"},
				Usage:    "Feedback message",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Contact email",
			},
		},
		Action: r.Feedback,
	}
}

// setupCommand initializes configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "share",
				Usage: "Open a shared analysis link on startup",
			},
		},
		Action: r.TUI,
	}
}
