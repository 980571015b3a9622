package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/repositories"
	"github.com/melodycompare/mcx/internal/shared"
)

// ReportGenerate prints the narrative report for a saved analysis, reusing
// a previously generated report when one is cached.
func (r *Runner) ReportGenerate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: analysis id", shared.ErrMissingArgument)
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := state.ctrl.ViewLibraryItem(id); err != nil {
		return err
	}

	r.logger.Info("generating report", "id", id)

	report, err := state.ctrl.GenerateReport(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", report)
}

// Brainstorm prints remix ideas for a saved analysis.
func (r *Runner) Brainstorm(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: analysis id", shared.ErrMissingArgument)
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	item, err := state.library.Get(id)
	if err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
	}
	if item == nil {
		return fmt.Errorf("%w: %s", shared.ErrLibraryItemAbsent, id)
	}

	mode := models.BrainstormMode{Type: cmd.String("mode")}
	theme := cmd.String("theme")

	r.logger.Info("brainstorming", "id", id, "mode", mode.Type)

	ideas, err := r.api.Brainstorm(ctx, item.Data, mode, theme)
	if err != nil {
		return fmt.Errorf("brainstorm failed: %w", err)
	}

	if len(ideas) == 0 {
		return r.writePlain("No ideas generated. Try a different mode or theme.\n")
	}
	for i, idea := range ideas {
		if err := r.writePlain("%d. %s\n", i+1, idea); err != nil {
			return err
		}
	}
	return nil
}

// composerState is the persisted prompt-composer draft. Running
// enhance-prompt without an argument resumes the last draft.
type composerState struct {
	Prompt   string `json:"prompt"`
	Enhanced string `json:"enhanced"`
}

// EnhancePrompt rewrites a music-generation prompt.
func (r *Runner) EnhancePrompt(ctx context.Context, cmd *cli.Command) error {
	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var draft composerState
	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		if _, err := state.store.Load(repositories.KeyPromptComposer, &draft); err != nil {
			return fmt.Errorf("failed to load composer draft: %w", err)
		}
		prompt = draft.Prompt
	}
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	enhanced, err := r.api.EnhancePrompt(ctx, prompt)
	if err != nil {
		return fmt.Errorf("prompt enhancement failed: %w", err)
	}

	draft.Prompt = prompt
	draft.Enhanced = enhanced
	if err := state.store.Save(repositories.KeyPromptComposer, draft); err != nil {
		r.logger.Warn("failed to save composer draft", "error", err)
	}
	return r.writePlain("%s\n", enhanced)
}

// StemAlternatives prints replacement suggestions for a flagged stem.
func (r *Runner) StemAlternatives(ctx context.Context, cmd *cli.Command) error {
	stem := cmd.StringArg("stem")
	if stem == "" {
		return fmt.Errorf("%w: stem name", shared.ErrMissingArgument)
	}

	alternatives, err := r.api.StemAlternatives(ctx, stem)
	if err != nil {
		return fmt.Errorf("failed to fetch alternatives: %w", err)
	}

	if len(alternatives) == 0 {
		return r.writePlain("No alternatives suggested for %q.\n", stem)
	}
	for i, alt := range alternatives {
		if err := r.writePlain("%d. %s\n", i+1, alt.Content); err != nil {
			return err
		}
	}
	return nil
}
