package main

import (
	"context"
	"fmt"

	"github.com/mkraev/starsync/internal/formatter"
	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/urfave/cli/v3"
)

// Status reconciles the capture list against local files and prints the result.
//
// Without --rescan the cached scan results are used, so the command answers
// without re-walking the music directories.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	captures, err := r.readCaptures()
	if err != nil {
		return err
	}

	var snap *reconcile.StatusSnapshot
	if cmd.Bool("rescan") {
		files, err := r.scanFiles(ctx)
		if err != nil {
			return err
		}
		if snap, err = r.engine.Reconcile(captures, files); err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}
	} else if r.scans != nil {
		if files, err := r.scans.Files(); err == nil && len(files) > 0 {
			if snap, err = r.engine.Reconcile(captures, files); err != nil {
				return fmt.Errorf("reconcile failed: %w", err)
			}
		}
	}
	if snap == nil {
		snap = r.engine.Status(captures)
	}

	if path := cmd.String("export"); path != "" {
		written, err := formatter.WriteCSVExport(snap, path)
		if err != nil {
			return fmt.Errorf("failed to export status: %w", err)
		}
		r.writePlain("✓ Status exported to %s\n", written)
		return nil
	}

	return r.writeSnapshot(snap, cmd.String("format"))
}
