package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/chat"
	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/shared"
)

// Chat sends one assistant turn and streams the reply to stdout as it
// arrives. The transcript persists across invocations, so a follow-up run
// continues the same conversation.
func (r *Runner) Chat(ctx context.Context, cmd *cli.Command) error {
	message := cmd.StringArg("message")

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	assistant, err := chat.NewAssistant(r.api, state.store, r.config.Chat.Greeting, r.logger)
	if err != nil {
		return err
	}

	if cmd.Bool("reset") {
		assistant.Reset()
		if err := r.writePlain("Conversation cleared.\n"); err != nil {
			return err
		}
		if message == "" {
			return nil
		}
	}

	if message == "" {
		return fmt.Errorf("%w: message", shared.ErrMissingArgument)
	}

	snap := state.ctrl.Snapshot()
	chatCtx := models.ChatContext{AppState: string(snap.View)}
	if snap.SelectedAnalysis != nil {
		chatCtx.AnalysisData = snap.SelectedAnalysis
		chatCtx.ReportText = snap.InitialReport
	}

	events, err := assistant.Send(ctx, message, chatCtx)
	if err != nil {
		return err
	}

	for ev := range events {
		if ev.Err != nil {
			r.writePlain("\n")
			return fmt.Errorf("chat failed: %w", ev.Err)
		}
		if ev.Done {
			break
		}
		if err := r.writePlain("%s", ev.Delta); err != nil {
			return err
		}
	}
	return r.writePlain("\n")
}
