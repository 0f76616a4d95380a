package main

import (
	"context"
	"fmt"

	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/trackkey"
	"github.com/urfave/cli/v3"
)

// SearchTracks resolves capture list entries to catalogue tracks. A single
// "Artist - Title" argument searches one track; --all searches every entry
// that has no known URL, skipping not-found and dismissed tracks.
func (r *Runner) SearchTracks(ctx context.Context, cmd *cli.Command) error {
	var keys []string

	if cmd.Bool("all") {
		captures, err := r.readCaptures()
		if err != nil {
			return err
		}
		keys = r.controller.SearchCandidates(captures)
		if len(keys) == 0 {
			r.writePlain("Nothing to search: every capture is resolved, not found, or dismissed.\n")
			return nil
		}
		r.writePlain("Searching %d unresolved tracks...\n\n", len(keys))
	} else {
		key := cmd.Args().First()
		if key == "" {
			return fmt.Errorf("%w: provide an \"Artist - Title\" argument or --all", shared.ErrMissingArgument)
		}
		if _, title := trackkey.Split(key); title == "" {
			return fmt.Errorf("%w: expected \"Artist - Title\", got %q", shared.ErrInvalidArgument, key)
		}
		keys = []string{key}
	}

	if err := r.runJob(func() error { return r.controller.StartSearch(keys) }); err != nil {
		return err
	}

	st := r.store.Snapshot()
	found, missed := 0, 0
	for _, key := range keys {
		if url, _, ok := trackkey.Lookup(st.URLs, key); ok {
			found++
			r.writePlain("✓ %s\n  %s\n", key, url)
		} else {
			missed++
			r.writePlain("✗ %s: not found\n", key)
		}
	}

	r.writePlainln("Found %d, not found %d.", found, missed)
	return nil
}
