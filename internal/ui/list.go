package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/mkraev/starsync/internal/formatter"
)

var _ list.Item = trackItem{}

// trackItem wraps [formatter.Row] to implement [list.Item].
type trackItem struct {
	row formatter.Row
}

func (i trackItem) FilterValue() string { return i.row.Key }
func (i trackItem) Title() string       { return i.row.Key }
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • starred: %s", i.row.Status, i.row.Starred)
	if i.row.URL != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.row.URL)
	}
	if i.row.Flags != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.row.Flags)
	}
	return desc
}
