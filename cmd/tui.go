package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/chat"
	"github.com/melodycompare/mcx/internal/session"
	"github.com/melodycompare/mcx/internal/shared"
	"github.com/melodycompare/mcx/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: API service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/mcx-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	state, cleanup, err := r.openStateWithShare(ctx, cmd.String("share"))
	if err != nil {
		return err
	}
	defer cleanup()

	assistant, err := chat.NewAssistant(r.api, state.store, r.config.Chat.Greeting, r.logger)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, state.ctrl, assistant)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// openStateWithShare is openState with an optional startup share link, which
// takes precedence over restoring the previous session.
func (r *Runner) openStateWithShare(ctx context.Context, shareLink string) (*stateSession, func(), error) {
	if shareLink == "" {
		return r.openState(ctx)
	}

	shareID := session.ShareIDFromLink(shareLink)
	if shareID == "" {
		return nil, nil, fmt.Errorf("%w: %q is not a share link", shared.ErrInvalidArgument, shareLink)
	}

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
	if err := s.ctrl.Bootstrap(ctx, shareID); err != nil {
		r.logger.Error("failed to resolve shared link", "error", err)
	}
	return s, func() { db.Close() }, nil
}
