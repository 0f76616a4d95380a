package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mkraev/starsync/internal/formatter"
	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StatusView ViewState = iota
	ConfirmUnstarView
)

// StatusProvider returns the current reconciled snapshot. Called on startup
// and after every finished job.
type StatusProvider func() (*reconcile.StatusSnapshot, error)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	controller *tasks.Controller
	status     StatusProvider
	updates    chan tasks.ProgressUpdate

	width      int
	height     int
	trackList  list.Model
	listReady  bool
	pendingKey string
	progress   tasks.ProgressUpdate
	jobActive  bool
	notice     string
	err        error
	help       help.Model
	keys       keyMap
}

type statusLoadedMsg struct {
	snap *reconcile.StatusSnapshot
	err  error
}

type progressUpdateMsg tasks.ProgressUpdate

type commandResultMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies. The
// updates channel is registered with the controller so job progress streams
// into the view.
func NewModel(ctx context.Context, controller *tasks.Controller, status StatusProvider) *Model {
	updates := make(chan tasks.ProgressUpdate, 50)
	controller.SetUpdates(updates)

	return &Model{
		ctx:        ctx,
		view:       StatusView,
		controller: controller,
		status:     status,
		updates:    updates,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by loading the status snapshot.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatus(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.trackList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case StatusView:
			return m.handleStatusKeys(msg)
		case ConfirmUnstarView:
			return m.handleConfirmKeys(msg)
		}

	case statusLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := []list.Item{}
		for _, row := range formatter.Rows(msg.snap) {
			items = append(items, trackItem{row: row})
		}
		if m.listReady {
			return m, m.trackList.SetItems(items)
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = "Library status"
		m.trackList.SetSize(m.width-4, m.height-10)
		m.listReady = true
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		if m.progress.Phase == tasks.JobDone {
			m.jobActive = false
			m.notice = m.progress.Message
			return m, tea.Batch(m.loadStatus(), m.waitForUpdate())
		}
		m.jobActive = true
		return m, m.waitForUpdate()

	case commandResultMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("✗ %v", msg.err)
		}
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ConfirmUnstarView:
		return m.renderConfirm()
	default:
		return m.renderStatus()
	}
}

func (m *Model) handleStatusKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadStatus()
	case key.Matches(msg, m.keys.star):
		if selected := m.selectedKey(); selected != "" {
			return m, m.command(func() error { return m.controller.StartStar(selected) })
		}
	case key.Matches(msg, m.keys.unstar):
		if selected := m.selectedKey(); selected != "" {
			m.pendingKey = selected
			m.view = ConfirmUnstarView
		}
		return m, nil
	case key.Matches(msg, m.keys.dismiss):
		if selected := m.selectedKey(); selected != "" {
			return m, tea.Batch(
				m.command(func() error { return m.controller.Dismiss(selected, true) }),
				m.loadStatus(),
			)
		}
	case key.Matches(msg, m.keys.search):
		if selected := m.selectedKey(); selected != "" {
			return m, m.command(func() error { return m.controller.StartSearch([]string{selected}) })
		}
	case key.Matches(msg, m.keys.crawl):
		return m, m.command(m.controller.StartCrawl)
	case key.Matches(msg, m.keys.sync):
		return m, m.command(func() error {
			snap, err := m.status()
			if err != nil {
				return err
			}
			return m.controller.StartSync(snap.ToDownload)
		})
	case key.Matches(msg, m.keys.stop):
		return m, m.command(m.controller.Stop)
	}

	return m.updateList(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		pending := m.pendingKey
		m.pendingKey = ""
		m.view = StatusView
		return m, m.command(func() error { return m.controller.StartUnstar(pending) })
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.pendingKey = ""
		m.view = StatusView
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.listReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) selectedKey() string {
	if !m.listReady {
		return ""
	}
	if item, ok := m.trackList.SelectedItem().(trackItem); ok {
		return item.row.Key
	}
	return ""
}

// command runs a controller call off the update loop. Busy rejections and
// other failures land in the notice line instead of aborting the TUI.
func (m *Model) command(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{err: fn()}
	}
}

func (m *Model) loadStatus() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.status()
		return statusLoadedMsg{snap: snap, err: err}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderStatus() string {
	var listView string
	if m.listReady {
		listView = m.trackList.View()
	} else {
		listView = "Loading status..."
	}

	var footer string
	switch {
	case m.jobActive:
		footer = styles.warn.Render(m.progress.Message)
	case m.notice != "":
		footer = styles.help.Render(m.notice)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s\n%s", listView, footer, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Unstar '%s' on the catalogue?", m.pendingKey))
	info := "\nThis removes the remote favorite and marks the track dismissed.\n"

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
