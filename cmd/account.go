package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/repositories"
	"github.com/melodycompare/mcx/internal/shared"
)

// AccountLogin records the local account. There is no credential exchange;
// the backend trusts the client for identity.
func (r *Runner) AccountLogin(ctx context.Context, cmd *cli.Command) error {
	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	user := models.User{
		ID:    shared.GenerateID(),
		Name:  cmd.String("name"),
		Email: cmd.String("email"),
	}
	state.ctrl.Login(user)
	r.flushNotifications(state.ctrl)

	return r.writePlain("✓ Signed in as %s <%s>\n", user.Name, user.Email)
}

// AccountLogout clears all local state, then resets the chat transcript.
func (r *Runner) AccountLogout(ctx context.Context, cmd *cli.Command) error {
	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if !state.ctrl.Snapshot().LoggedIn() {
		return r.writePlain("Not signed in.\n")
	}

	if err := state.ctrl.Logout(); err != nil {
		return err
	}
	r.flushNotifications(state.ctrl)

	return r.writePlain("✓ Signed out\n")
}

// AccountUpdate changes the stored account details.
func (r *Runner) AccountUpdate(ctx context.Context, cmd *cli.Command) error {
	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	snap := state.ctrl.Snapshot()
	if !snap.LoggedIn() {
		return fmt.Errorf("%w: run 'mcx account login' first", shared.ErrNotLoggedIn)
	}

	user := *snap.User
	if name := cmd.String("name"); name != "" {
		user.Name = name
	}
	if email := cmd.String("email"); email != "" {
		user.Email = email
	}
	state.ctrl.UpdateUser(user)
	r.flushNotifications(state.ctrl)

	return r.writePlain("✓ Account updated\n")
}

// AccountShow prints the current account record.
func (r *Runner) AccountShow(ctx context.Context, cmd *cli.Command) error {
	state, cleanup, err := r.openState(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var user models.User
	found, err := state.store.Load(repositories.KeyUser, &user)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if !found || user.ID == "" {
		return r.writePlain("Not signed in.\n")
	}
	return r.writePlain("%s <%s>\n", user.Name, user.Email)
}
