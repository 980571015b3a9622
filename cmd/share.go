package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/session"
	"github.com/melodycompare/mcx/internal/shared"
)

// Share publishes a saved analysis and prints its share link.
func (r *Runner) Share(ctx context.Context, cmd *cli.Command) error {
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

	r.logger.Info("publishing analysis", "id", id)

	shareID, err := r.api.Publish(ctx, item.Data, "")
	if err != nil {
		return fmt.Errorf("failed to publish analysis: %w", err)
	}

	link := fmt.Sprintf("%s/view/%s", strings.TrimSuffix(r.config.API.BaseURL, "/"), shareID)
	return r.writePlain("✓ Shared %q\n%s\n", item.SongTitle, link)
}

// Open resolves a share link (or bare share id) and displays the analysis.
// With --browser the link opens in the default browser instead.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	link := cmd.StringArg("link")
	if link == "" {
		return fmt.Errorf("%w: share link or id", shared.ErrMissingArgument)
	}

	shareID := session.ShareIDFromLink(link)
	if shareID == "" {
		return fmt.Errorf("%w: %q is not a share link", shared.ErrInvalidArgument, link)
	}

	if cmd.Bool("browser") {
		url := link
		if !strings.Contains(url, "/") {
			url = fmt.Sprintf("%s/view/%s", strings.TrimSuffix(r.config.API.BaseURL, "/"), shareID)
		}
		r.logger.Info("opening in browser", "url", url)
		return shared.OpenBrowser(url)
	}

	payload, err := r.api.SharedAnalysis(ctx, shareID)
	if err != nil {
		return fmt.Errorf("failed to load shared analysis: %w", err)
	}

	return r.writeAnalysisSummary(&payload.AnalysisData, payload.ReportText)
}
