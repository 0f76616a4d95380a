package main

import (
	"context"
	"fmt"

	"github.com/mkraev/starsync/internal/library"
	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// ScanLibrary walks the configured music directories, refreshes the scan
// cache, and reconciles the capture list against what was found.
func (r *Runner) ScanLibrary(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("Scanning music directories...\n")

	files, err := r.scanFiles(ctx)
	if err != nil {
		return err
	}
	r.writePlain("Scanned %d files\n", len(files))

	captures, err := r.readCaptures()
	if err != nil {
		return err
	}

	snap, err := r.engine.Reconcile(captures, files)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	r.writePlain("\n")
	r.writePlainHeader("Scan Complete")
	r.writePlain("Captured tracks: %d\n", len(captures))
	r.writePlain("Have locally: %d\n", len(snap.HaveLocally))
	r.writePlain("To download: %d\n", len(snap.ToDownload))

	return nil
}

// scanFiles runs the tag scanner over the configured roots and refreshes the
// sqlite scan cache when one is available.
func (r *Runner) scanFiles(ctx context.Context) ([]models.ScannedFile, error) {
	dirs := r.musicDirs()
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: no music directories configured", shared.ErrMissingConfig)
	}

	scanner := library.NewTagScanner(r.logger)
	files, err := scanner.Scan(ctx, dirs)
	if err != nil {
		return nil, fmt.Errorf("library scan failed: %w", err)
	}

	if r.scans != nil {
		if err := r.scans.ReplaceAll(files); err != nil {
			r.logger.Warn("failed to cache scan results", "err", err)
		}
	}

	return files, nil
}
