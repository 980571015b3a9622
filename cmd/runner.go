package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/repositories"
	"github.com/melodycompare/mcx/internal/services"
	"github.com/melodycompare/mcx/internal/session"
	"github.com/melodycompare/mcx/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	api    services.Backend
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	API    services.Backend
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		api:    opts.API,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger swaps the runner's logger, used to redirect logs while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, analyzeCommand, compareCommand, libraryCommand, catalogCommand,
		chatCommand, reportCommand, shareCommand, openCommand, accountCommand,
		statusCommand, feedbackCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// stateSession bundles the persistent stores with a bootstrapped controller.
type stateSession struct {
	db      *sql.DB
	store   *repositories.StateStore
	library *repositories.LibraryRepository
	ctrl    *session.Controller
}

// openState opens the local database and restores the session. The returned
// cleanup must be called when the command finishes.
func (r *Runner) openState(ctx context.Context) (*stateSession, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := newStateSession(r, db)
	if err := s.ctrl.Bootstrap(ctx, ""); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return s, func() { db.Close() }, nil
}

func newStateSession(r *Runner, db *sql.DB) *stateSession {
	store := repositories.NewStateStore(db)
	library := repositories.NewLibraryRepository(db)
	ctrl := session.NewController(session.ControllerOpts{
		API:     r.api,
		Store:   store,
		Library: library,
		Logger:  r.logger,
	})
	return &stateSession{db: db, store: store, library: library, ctrl: ctrl}
}

// flushNotifications prints queued notifications so CLI runs surface the
// same messages the TUI shows inline.
func (r *Runner) flushNotifications(ctrl *session.Controller) {
	for _, n := range ctrl.Notifications() {
		switch n.Severity {
		case models.SeverityError:
			r.logger.Error(n.Message)
		case models.SeverityWarning:
			r.logger.Warn(n.Message)
		default:
			r.logger.Info(n.Message)
		}
	}
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

// writeAnalysisSummary prints the headline numbers of an analysis.
func (r *Runner) writeAnalysisSummary(data *models.AnalysisData, report string) error {
	if data == nil {
		return fmt.Errorf("%w: no analysis available", shared.ErrInvalidArgument)
	}

	if err := r.writePlain("%s\n", data.SongTitle); err != nil {
		return err
	}
	if err := r.writePlain("Risk: %s (%.0f/100)\n", data.RiskLevel, data.RiskScore); err != nil {
		return err
	}
	if err := r.writePlain("Similarity: %.1f%%  AI probability: %.1f%%\n", data.OverallSimilarity, data.AIProbability); err != nil {
		return err
	}
	if data.AIAnalysis != nil {
		if err := r.writePlain("Suspected platform: %s (%.0f%% confidence)\n", data.AIAnalysis.Platform, data.AIAnalysis.Confidence); err != nil {
			return err
		}
	}
	if report != "" {
		return r.writePlainln("%s", report)
	}
	return nil
}
