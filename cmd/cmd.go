// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the cache
// database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the cache database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the authenticated session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "confirm",
						Usage: "Password confirmation (defaults to --password)",
					},
				},
				Action: r.AuthSignUp,
			},
			{
				Name:    "signin",
				Aliases: []string{"login"},
				Usage:   "Sign in and store the session cookie",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthSignIn,
			},
			{
				Name:    "signout",
				Aliases: []string{"logout"},
				Usage:   "End the current session",
				Action:  r.AuthSignOut,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.AuthWhoami,
			},
			{
				Name:  "import",
				Usage: "Import a browser session from a cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// booksCommand handles book generation, tracking and download operations
func booksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "books",
		Aliases: []string{"book"},
		Usage:   "Book generation operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your books",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by lifecycle group (ready or pending)",
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Read from the local mirror instead of the network",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.BooksList,
			},
			{
				Name:  "show",
				Usage: "Show one book with its covers",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.BooksShow,
			},
			{
				Name:  "create",
				Usage: "Start generating a new book",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Subject domain (see 'books options')",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "sub-niche",
						Usage:    "Sub-niche within the domain",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Page length",
						Value: 30,
					},
				},
				Action: r.BooksCreate,
			},
			{
				Name:  "options",
				Usage: "List valid domains, sub-niches and page lengths",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.BooksOptions,
			},
			{
				Name:  "delete",
				Usage: "Delete a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.BooksDelete,
			},
			{
				Name:  "cover",
				Usage: "Select a cover for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "cover",
						Usage:    "Cover ID to select",
						Required: true,
					},
				},
				Action: r.BooksSelectCover,
			},
			{
				Name:  "download",
				Usage: "Download a finished book as PDF",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.BooksDownload,
			},
			{
				Name:  "watch",
				Usage: "Poll a generating book until it settles",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Polls per second",
						Value: 0.5,
					},
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Give up after this many minutes",
						Value: 30,
					},
				},
				Action: r.BooksWatch,
			},
			{
				Name:  "download-all",
				Usage: "Download every finished book",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory (default: books_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent downloads",
						Value: 3,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Downloads per second across all workers",
						Value: 2,
					},
				},
				Action: r.BooksDownloadAll,
			},
			{
				Name:  "export",
				Usage: "Export the library listing to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown or txt",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (base name for csv, directory for markdown)",
					},
				},
				Action: r.BooksExport,
			},
		},
	}
}

// paymentsCommand handles plan and subscription operations
func paymentsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "payments",
		Aliases: []string{"pay", "billing"},
		Usage:   "Plans, subscription and payment history",
		Commands: []*cli.Command{
			{
				Name:  "plans",
				Usage: "List available subscription plans",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PaymentsPlans,
			},
			{
				Name:    "subscription",
				Aliases: []string{"status"},
				Usage:   "Show the current subscription",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PaymentsSubscription,
			},
			{
				Name:  "history",
				Usage: "List past payments",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PaymentsHistory,
			},
			{
				Name:  "subscribe",
				Usage: "Create a subscription with a saved payment method",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "plan",
						Usage:    "Plan ID to subscribe to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "payment-method",
						Usage: "Provider payment method ID",
					},
				},
				Action: r.PaymentsSubscribe,
			},
			{
				Name:  "checkout",
				Usage: "Subscribe through the provider's hosted checkout page",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "plan",
						Usage:    "Plan ID to subscribe to",
						Required: true,
					},
				},
				Action: r.PaymentsCheckout,
			},
			{
				Name:   "cancel",
				Usage:  "Cancel the subscription at the period boundary",
				Action: r.PaymentsCancel,
			},
			{
				Name:   "reactivate",
				Usage:  "Undo a pending cancellation",
				Action: r.PaymentsReactivate,
			},
			{
				Name:  "change-plan",
				Usage: "Switch the subscription to a different plan",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "plan",
						Usage:    "Plan ID to switch to",
						Required: true,
					},
				},
				Action: r.PaymentsChangePlan,
			},
		},
	}
}

// cacheCommand handles the local offline mirror of the book collection
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Local book cache operations",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Mirror the remote collection into the local database",
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached books without touching the network",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by exact status",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CacheList,
			},
		},
	}
}

// openCommand resolves an app path and opens it in the browser.
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open an app page in the browser (guard rules apply)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Action: r.NavOpen,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
