// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI shows the reconciled track list with per-key commands:
//  1. [StatusView] : Browse tracks, trigger star/unstar/dismiss/search per key
//  2. [ConfirmUnstarView] : Confirm before unstarring a remote favorite
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Job progress flows through a channel from the job controller, providing
// non-blocking status reporting while a batch runs; when a job finishes, the
// status list refreshes itself.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
