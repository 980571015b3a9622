package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/models"
)

// CatalogList prints the public Cleared Catalog.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("fetching catalog")

	entries, err := r.api.CatalogEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("The Cleared Catalog is empty.\n")
	}
	for i, entry := range entries {
		line := fmt.Sprintf("%d. %s - %s", i+1, entry.Artist, entry.Title)
		if entry.Description != "" {
			line = fmt.Sprintf("%s (%s)", line, entry.Description)
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// CatalogSubmit lists a cleared track in the public catalog.
func (r *Runner) CatalogSubmit(ctx context.Context, cmd *cli.Command) error {
	sub := models.CatalogSubmission{
		Title:        cmd.String("title"),
		Artist:       cmd.String("artist"),
		Description:  cmd.String("description"),
		ContactEmail: cmd.String("email"),
		AudioPath:    cmd.String("audio"),
	}

	r.logger.Info("submitting to catalog", "title", sub.Title, "artist", sub.Artist)

	item, err := r.api.SubmitToCatalog(ctx, sub)
	if err != nil {
		return fmt.Errorf("catalog submission failed: %w", err)
	}

	return r.writePlain("✓ %q submitted to the Cleared Catalog (id: %s)\n", item.Title, item.ID)
}
