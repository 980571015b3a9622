package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/formatter"
	"github.com/melodycompare/mcx/internal/shared"
	"github.com/melodycompare/mcx/internal/tasks"
)

// LibraryList prints saved analyses, newest first.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := state.library.List()
	if err != nil {
		return fmt.Errorf("failed to list library: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	if len(items) == 0 {
		return r.writePlain("Library is empty. Run 'mcx analyze <file>' to get started.\n")
	}
	for i, item := range items {
		if err := r.writePlain("%d. %s  [%s risk, %.0f/100]  %s  (%s)\n",
			i+1, item.SongTitle, item.Data.RiskLevel, item.Data.RiskScore,
			item.Date.Format("2006-01-02"), item.ID); err != nil {
			return err
		}
	}
	return nil
}

// LibraryShow prints one saved analysis in full.
func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
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

	if cmd.Bool("json") {
		return r.writeJSON(item, true)
	}
	return r.writeAnalysisSummary(&item.Data, "")
}

// LibraryRename retitles a saved analysis.
func (r *Runner) LibraryRename(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	title := strings.TrimSpace(cmd.StringArg("title"))
	if id == "" || title == "" {
		return fmt.Errorf("%w: analysis id and new title", shared.ErrMissingArgument)
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := state.ctrl.RenameLibraryItem(id, title); err != nil {
		return err
	}
	return r.writePlain("✓ Renamed to %q\n", title)
}

// LibraryDelete removes a saved analysis. Deleting an absent id is a no-op.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: analysis id", shared.ErrMissingArgument)
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := state.ctrl.DeleteLibraryItem(id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// LibraryExport writes the library (csv, text) or one analysis (markdown)
// to disk.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")
	id := cmd.String("id")

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := state.library.List()
	if err != nil {
		return fmt.Errorf("failed to list library: %w", err)
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(items, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d analyses to %s\n", len(items), result.LibraryFile)

	case "text", "txt":
		path, err := formatter.WriteTextExport(items, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d analyses to %s\n", len(items), path)

	case "markdown", "md":
		if cmd.Bool("all") {
			return r.bulkMarkdownExport(ctx, state, output, cmd.Bool("audio"))
		}
		if id == "" {
			return fmt.Errorf("%w: --id or --all is required for markdown export", shared.ErrMissingArgument)
		}
		item, err := state.library.Get(id)
		if err != nil {
			return fmt.Errorf("failed to load analysis: %w", err)
		}
		if item == nil {
			return fmt.Errorf("%w: %s", shared.ErrLibraryItemAbsent, id)
		}

		var audio []byte
		if cmd.Bool("audio") {
			if audio, err = r.api.Audio(ctx, item.ID); err != nil {
				r.logger.Warn("failed to fetch stored audio, exporting without it", "error", err)
				audio = nil
			}
		}

		result, err := formatter.WriteMarkdownExport(item, "", output, audio)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %q to %s\n", item.SongTitle, result.Directory)

	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// bulkMarkdownExport writes every saved analysis as a markdown bundle,
// streaming progress to the log as items complete.
func (r *Runner) bulkMarkdownExport(ctx context.Context, state *stateSession, outputDir string, includeAudio bool) error {
	engine := tasks.NewExportEngine(r.api, state.library)

	prog := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, prog, tasks.BulkExportOpts{
		OutputDir:    outputDir,
		IncludeAudio: includeAudio,
		RateLimit:    r.config.API.RateLimit,
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	if result.FailedCount > 0 {
		r.logger.Warn("some analyses failed to export", "failed", result.FailedCount)
	}
	return r.writePlain("✓ Exported %d/%d analyses to %s\n", result.SuccessCount, result.TotalItems, result.OutputDirectory)
}
