package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Crawl walks the catalogue favorites pages and imports starred state into
// the local store. Tracks starred remotely but absent from the listing are
// demoted to unstarred.
func (r *Runner) Crawl(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("Crawling catalogue favorites...\n\n")

	if err := r.runJob(r.controller.StartCrawl); err != nil {
		return err
	}

	st := r.store.Snapshot()
	starred := 0
	for _, on := range st.Starred {
		if on {
			starred++
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Crawl Complete")
	r.writePlain("Starred on catalogue: %d\n", starred)
	r.writePlain("Known catalogue URLs: %d\n", len(st.URLs))

	return nil
}
