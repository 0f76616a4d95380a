package main

import (
	"context"
	"fmt"

	"github.com/mkraev/starsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireKey(cmd *cli.Command) (string, error) {
	key := cmd.Args().First()
	if key == "" {
		return "", fmt.Errorf("%w: provide an \"Artist - Title\" argument", shared.ErrMissingArgument)
	}
	return key, nil
}

// Star favorites a single track on the catalogue, searching for it first if
// its catalogue identity is not yet known.
func (r *Runner) Star(ctx context.Context, cmd *cli.Command) error {
	key, err := requireKey(cmd)
	if err != nil {
		return err
	}

	if err := r.runJob(func() error { return r.controller.StartStar(key) }); err != nil {
		return err
	}

	r.writePlain("✓ Starred %s\n", key)
	return nil
}

// Unstar removes a catalogue favorite and dismisses the track so later syncs
// do not re-star it. The remote mutation is destructive, so --yes is required.
func (r *Runner) Unstar(ctx context.Context, cmd *cli.Command) error {
	key, err := requireKey(cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: unstarring removes the remote favorite, pass --yes to confirm", shared.ErrInvalidInput)
	}

	if err := r.runJob(func() error { return r.controller.StartUnstar(key) }); err != nil {
		return err
	}

	r.writePlain("✓ Unstarred and dismissed %s\n", key)
	return nil
}

// Dismiss excludes a track from sync without touching the catalogue.
func (r *Runner) Dismiss(ctx context.Context, cmd *cli.Command) error {
	key, err := requireKey(cmd)
	if err != nil {
		return err
	}

	if err := r.controller.Dismiss(key, true); err != nil {
		return err
	}

	r.writePlain("✓ Dismissed %s\n", key)
	return nil
}

// Undismiss re-includes a previously dismissed track in sync.
func (r *Runner) Undismiss(ctx context.Context, cmd *cli.Command) error {
	key, err := requireKey(cmd)
	if err != nil {
		return err
	}

	if err := r.controller.Dismiss(key, false); err != nil {
		return err
	}

	r.writePlain("✓ Undismissed %s\n", key)
	return nil
}

// AcknowledgeVersion records that the user has checked a track whose
// catalogue title differs from the local tags, silencing the version flag.
func (r *Runner) AcknowledgeVersion(ctx context.Context, cmd *cli.Command) error {
	key, err := requireKey(cmd)
	if err != nil {
		return err
	}

	if err := r.controller.AcknowledgeVersion(key); err != nil {
		return err
	}

	r.writePlain("✓ Version acknowledged for %s\n", key)
	return nil
}

// ResetNotFound clears all not-found flags so the next search retries those
// tracks, and prunes the matching entries from the outcome log.
func (r *Runner) ResetNotFound(ctx context.Context, cmd *cli.Command) error {
	if err := r.controller.ResetNotFound(); err != nil {
		return err
	}

	r.writePlain("✓ Cleared not-found flags\n")
	return nil
}

// Outcomes prints the append-only action log as JSON, newest entries last.
func (r *Runner) Outcomes(ctx context.Context, cmd *cli.Command) error {
	st := r.store.Snapshot()
	if len(st.Outcomes) == 0 {
		r.writePlain("No recorded outcomes.\n")
		return nil
	}
	return r.writeJSON(st.Outcomes, true)
}
