package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI over the capture list.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join("tmp", "starsync-tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(shared.NewLogger(logFile))

	model := ui.NewModel(ctx, r.controller, func() (*reconcile.StatusSnapshot, error) {
		captures, err := r.readCaptures()
		if err != nil {
			return nil, err
		}
		return r.engine.Status(captures), nil
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
