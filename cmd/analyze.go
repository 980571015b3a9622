package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/shared"
)

// Analyze uploads one audio file and prints the resulting risk breakdown.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: audio file path", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedFile, path)
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	r.logger.Info("uploading audio for analysis", "path", path)

	if err := state.ctrl.StartAnalysis(ctx, path); err != nil {
		r.flushNotifications(state.ctrl)
		return err
	}
	r.flushNotifications(state.ctrl)

	snap := state.ctrl.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(snap.SelectedAnalysis, true)
	}
	return r.writeAnalysisSummary(snap.SelectedAnalysis, snap.InitialReport)
}

// Compare uploads an AI song and a copyrighted song for a pairwise analysis.
func (r *Runner) Compare(ctx context.Context, cmd *cli.Command) error {
	aiSong := cmd.StringArg("ai-song")
	copyrighted := cmd.StringArg("copyrighted-song")
	if aiSong == "" || copyrighted == "" {
		return fmt.Errorf("%w: both audio file paths", shared.ErrMissingArgument)
	}
	for _, path := range []string{aiSong, copyrighted} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", shared.ErrUnsupportedFile, path)
		}
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	r.logger.Info("uploading songs for comparison", "ai", aiSong, "copyrighted", copyrighted)

	if err := state.ctrl.StartComparison(ctx, aiSong, copyrighted); err != nil {
		r.flushNotifications(state.ctrl)
		return err
	}
	r.flushNotifications(state.ctrl)

	snap := state.ctrl.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(snap.SelectedAnalysis, true)
	}
	return r.writeAnalysisSummary(snap.SelectedAnalysis, snap.InitialReport)
}
