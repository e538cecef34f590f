package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/inkwell/internal/api"
	"github.com/desertthunder/inkwell/internal/nav"
	"github.com/desertthunder/inkwell/internal/session"
	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/desertthunder/inkwell/internal/stores"
	"github.com/desertthunder/inkwell/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	sessionPath string
	// restored is set when a persisted session was loaded into the cookie
	// jar, so auth failures can distinguish "expired" from "never signed in".
	restored bool
	client   *api.Client
	session  *session.Store
	books    *stores.BooksStore
	payments *stores.PaymentsStore
	guard    *nav.Guard
	engine   *tasks.WatchEngine
	notifier shared.Notifier
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	SessionPath string
	Client      *api.Client
	Notifier    shared.Notifier
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
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
	if opts.Client == nil {
		opts.Client = api.NewClient(opts.Config.API.BaseURL, nil)
		opts.Client.SetTimeouts(opts.Config.API.Timeout(), opts.Config.API.DownloadTimeout())
	}
	if opts.Notifier == nil {
		opts.Notifier = shared.NewLogNotifier(opts.Logger)
	}
	if opts.SessionPath == "" {
		if path, err := shared.DefaultSessionPath(); err == nil {
			opts.SessionPath = path
		}
	}

	restored := false
	if opts.SessionPath != "" {
		if saved, err := shared.LoadSessionFile(opts.SessionPath); err == nil && saved.Matches(opts.Client.BaseURL()) {
			if err := opts.Client.ImportCookies(saved.Cookies); err == nil {
				restored = true
			}
		}
	}

	sess := session.NewStore(opts.Client, opts.Logger)
	books := stores.NewBooksStore(opts.Client, opts.Logger)
	payments := stores.NewPaymentsStore(opts.Client, opts.Logger, opts.Notifier)

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		sessionPath: opts.SessionPath,
		restored:    restored,
		client:      opts.Client,
		session:     sess,
		books:       books,
		payments:    payments,
		guard:       nav.NewGuard(sess),
		engine:      tasks.NewWatchEngine(books, books),
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

// saveSession persists the backend cookies so the next invocation starts
// signed in. Failures are logged, not surfaced; the current process is
// authenticated either way.
func (r *Runner) saveSession() {
	if r.sessionPath == "" {
		return
	}
	file := &shared.SessionFile{
		BaseURL: r.client.BaseURL(),
		Cookies: r.client.Cookies(),
	}
	if err := shared.SaveSessionFile(r.sessionPath, file); err != nil {
		r.logger.Warn("failed to save session", "error", err)
		return
	}
	r.logger.Debug("session saved", "path", r.sessionPath)
}

// clearSession deletes the persisted session file.
func (r *Runner) clearSession() {
	if r.sessionPath == "" {
		return
	}
	if err := shared.RemoveSessionFile(r.sessionPath); err != nil {
		r.logger.Warn("failed to remove session file", "error", err)
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, booksCommand, paymentsCommand, cacheCommand, openCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
