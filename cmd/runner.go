package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/catalogue"
	"github.com/mkraev/starsync/internal/formatter"
	"github.com/mkraev/starsync/internal/library"
	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/repositories"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/state"
	"github.com/mkraev/starsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      *state.Store
	engine     *reconcile.Engine
	orch       *tasks.Orchestrator
	controller *tasks.Controller
	captures   *repositories.CaptureRepository
	scans      *repositories.ScanRepository
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Request     catalogue.Backend
	Bridge      catalogue.Backend
	Crawler     tasks.Crawler
	Store       *state.Store
	CaptureRepo *repositories.CaptureRepository
	ScanRepo    *repositories.ScanRepository
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Store == nil {
		opts.Store = state.NewStore(library.ExpandHome(opts.Config.State.Path), opts.Logger)
	}

	orch := tasks.NewOrchestrator(opts.Request, opts.Bridge, opts.Store, opts.Logger)
	engine := reconcile.NewEngine(opts.Store, opts.Logger)
	controller := tasks.NewController(orch, engine, opts.Crawler, opts.Store, opts.Logger)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		engine:     engine,
		orch:       orch,
		controller: controller,
		captures:   opts.CaptureRepo,
		scans:      opts.ScanRepo,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, statusCommand, scanCommand, crawlCommand, searchCommand, syncCommand, trackCommand, stateCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// readCaptures reads the capture list CSV, refreshing the sqlite cache on
// success. When the file is unreadable the cached entries are served instead,
// so status keeps working offline.
func (r *Runner) readCaptures() ([]models.Capture, error) {
	path := library.ExpandHome(r.config.Library.CapturesPath)
	if path != "" {
		reader := library.NewCSVCaptureReader(path, r.logger)
		captures, err := reader.Read()
		if err == nil {
			if r.captures != nil {
				if err := r.captures.SyncFrom(captures); err != nil {
					r.logger.Warn("failed to cache capture list", "err", err)
				}
			}
			return captures, nil
		}
		r.logger.Warn("failed to read capture list, falling back to cache", "path", path, "err", err)
	}

	if r.captures != nil {
		return r.captures.Captures()
	}

	return nil, fmt.Errorf("%w: no capture list configured", shared.ErrMissingConfig)
}

// musicDirs returns the configured library roots with ~ expanded.
func (r *Runner) musicDirs() []string {
	dirs := make([]string, 0, len(r.config.Library.MusicDirs))
	for _, dir := range r.config.Library.MusicDirs {
		dirs = append(dirs, library.ExpandHome(dir))
	}
	return dirs
}

// writeSnapshot renders a status snapshot in the requested format.
func (r *Runner) writeSnapshot(snap *reconcile.StatusSnapshot, format string) error {
	var data []byte
	var err error

	switch format {
	case "json":
		return r.writeJSON(snap, true)
	case "csv":
		data, err = formatter.ExportToCSV(snap)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(snap)
	case "text", "":
		data, err = formatter.ExportToText(snap)
	default:
		return fmt.Errorf("%w: unknown format '%s' (must be text, json, csv, or markdown)", shared.ErrInvalidArgument, format)
	}

	if err != nil {
		return fmt.Errorf("failed to render status: %w", err)
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// runJob starts a controller job, streams its progress to the output, and
// waits for completion. The controller rejects concurrent starts with
// [shared.ErrBusy]; that error surfaces here before any output is written.
func (r *Runner) runJob(start func() error) error {
	updates := make(chan tasks.ProgressUpdate, 50)
	r.controller.SetUpdates(updates)

	if err := start(); err != nil {
		return err
	}

	// Progress sends are best-effort: a full buffer drops updates, including
	// the done event, so draining must also watch for job completion itself.
	finished := make(chan struct{})
	go func() {
		r.controller.Wait()
		close(finished)
	}()

drain:
	for {
		select {
		case update := <-updates:
			if update.Phase == tasks.JobDone {
				break drain
			}
			switch update.Phase {
			case tasks.CrawlFavorites:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchTracks:
				r.writePlain("🔍 %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		case <-finished:
			break drain
		}
	}

	r.controller.Wait()

	progress := r.controller.Progress()
	switch progress.State {
	case tasks.JobFailed:
		return fmt.Errorf("%s job failed: %s", progress.Job, progress.Err)
	case tasks.JobStopped:
		r.writePlain("\nJob stopped after %d/%d tracks.\n", progress.Current, progress.Total)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
