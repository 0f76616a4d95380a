package main

import (
	"context"
	"fmt"

	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the read-only status HTTP server. The snapshot re-reads the
// capture list on every request, so edits to the CSV show up without a
// restart.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}

	handler := server.NewStatusHandler(
		func() *reconcile.StatusSnapshot {
			captures, err := r.readCaptures()
			if err != nil {
				r.logger.Warn("failed to read capture list", "err", err)
			}
			return r.engine.Status(captures)
		},
		r.controller.Progress,
		r.logger,
	)

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", host, port)
	r.writePlain("Serving status on http://%s\n", addr)

	return server.Serve(ctx, addr, router, r.logger)
}
