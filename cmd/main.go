package main

import (
	"context"
	"errors"
	"os"

	"github.com/mkraev/starsync/internal/catalogue"
	"github.com/mkraev/starsync/internal/library"
	"github.com/mkraev/starsync/internal/repositories"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/state"
	"github.com/mkraev/starsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	store := state.NewStore(library.ExpandHome(config.State.Path), logger)
	store.Load()

	var request catalogue.Backend
	var crawler tasks.Crawler
	if config.Catalogue.BaseURL != "" {
		if session, err := shared.LoadSession(library.ExpandHome(config.Catalogue.SessionFile)); err == nil {
			backend := catalogue.NewRequestBackend(config.Catalogue.BaseURL, session, config.Catalogue.RateLimit, logger)
			request = backend
			crawler = catalogue.NewPaginator(backend, config.Catalogue.CrawlMonths, logger)
		} else {
			logger.Debug("no catalogue session, request backend disabled", "err", err)
		}
	}

	var bridge catalogue.Backend
	if config.Catalogue.BridgeURL != "" {
		bridge = catalogue.NewBridgeBackend(config.Catalogue.BridgeURL, logger)
	}

	var captureRepo *repositories.CaptureRepository
	var scanRepo *repositories.ScanRepository
	if config.Database.Path != "" {
		if db, err := shared.NewDatabase(library.ExpandHome(config.Database.Path)); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			captureRepo = repositories.NewCaptureRepository(db)
			scanRepo = repositories.NewScanRepository(db)
		} else {
			logger.Debug("scan cache unavailable", "err", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		Request:     request,
		Bridge:      bridge,
		Crawler:     crawler,
		Store:       store,
		CaptureRepo: captureRepo,
		ScanRepo:    scanRepo,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "starsync",
		Usage:    "Mirror your capture list to catalogue favorites",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
