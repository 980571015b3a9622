package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/shared"
)

// Status checks backend service health.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking backend status")

	status, err := r.api.SystemStatus(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if err := r.writePlain("Status: %s\n", status.Status); err != nil {
		return err
	}
	for name, state := range status.Services {
		if err := r.writePlain("  %s: %s\n", name, state); err != nil {
			return err
		}
	}
	return nil
}

// Feedback submits user feedback.
func (r *Runner) Feedback(ctx context.Context, cmd *cli.Command) error {
	kind := models.FeedbackKind(cmd.String("type"))
	switch kind {
	case models.FeedbackBug, models.FeedbackFeature, models.FeedbackGeneral:
	default:
		return fmt.Errorf("%w: unknown feedback type %q", shared.ErrInvalidArgument, kind)
	}

	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := state.ctrl.SubmitFeedback(ctx, kind, cmd.String("message"), cmd.String("email")); err != nil {
		r.flushNotifications(state.ctrl)
		return err
	}
	r.flushNotifications(state.ctrl)

	return r.writePlain("✓ Feedback submitted, thank you!\n")
}
