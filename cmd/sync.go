package main

import (
	"context"

	"github.com/mkraev/starsync/internal/trackkey"
	"github.com/urfave/cli/v3"
)

// SyncStars favorites every capture list track on the catalogue. Dismissed
// tracks are skipped and already-starred tracks are left untouched; a single
// failing track is recorded and the batch continues.
func (r *Runner) SyncStars(ctx context.Context, cmd *cli.Command) error {
	captures, err := r.readCaptures()
	if err != nil {
		return err
	}

	seen := map[string]struct{}{}
	keys := make([]string, 0, len(captures))
	for _, capture := range captures {
		key := trackkey.Key(capture.Artist, capture.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		r.writePlain("Capture list is empty, nothing to sync.\n")
		return nil
	}

	r.writePlain("Syncing stars for %d tracks...\n\n", len(keys))

	if err := r.runJob(func() error { return r.controller.StartSync(keys) }); err != nil {
		return err
	}

	progress := r.controller.Progress()
	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.writePlain("Processed: %d/%d tracks\n", progress.Current, progress.Total)

	return nil
}
