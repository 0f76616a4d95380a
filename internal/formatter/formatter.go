// package formatter renders status snapshots to various formats (CSV,
// Markdown, plain text) for the CLI.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/trackkey"
)

// Row is one track line in a rendered status report.
type Row struct {
	Key         string
	Status      string
	LocalPath   string
	URL         string
	RemoteTitle string
	Starred     string
	Flags       string
}

const (
	statusHave     = "have"
	statusDownload = "download"
	statusRemote   = "remote-only"
)

// Rows flattens a snapshot into sorted report rows. Keys seen only remotely
// (crawled but never captured) are included with a remote-only status.
func Rows(snap *reconcile.StatusSnapshot) []Row {
	status := map[string]string{}
	for _, key := range snap.HaveLocally {
		status[key] = statusHave
	}
	for _, key := range snap.ToDownload {
		status[key] = statusDownload
	}
	for key := range snap.URLs {
		if _, ok := status[key]; !ok {
			status[key] = statusRemote
		}
	}
	for key := range snap.Starred {
		if _, ok := status[key]; !ok {
			status[key] = statusRemote
		}
	}

	keys := make([]string, 0, len(status))
	for key := range status {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, Row{
			Key:         key,
			Status:      status[key],
			LocalPath:   snap.LocalPaths[key],
			URL:         snap.URLs[key],
			RemoteTitle: snap.RemoteTitles[key],
			Starred:     starredString(snap.Starred, key),
			Flags:       flagsString(snap, key),
		})
	}
	return rows
}

func starredString(starred map[string]bool, key string) string {
	v, known := starred[key]
	switch {
	case !known:
		return "unknown"
	case v:
		return "yes"
	default:
		return "no"
	}
}

// flagsString summarizes the per-key booleans: not-found, dismissed, and an
// alternate-version marker when the remote title differs from the local one
// and the user has not acknowledged it yet.
func flagsString(snap *reconcile.StatusSnapshot, key string) string {
	var flags []string
	if snap.NotFound[key] {
		flags = append(flags, "not-found")
	}
	if snap.Dismissed[key] {
		flags = append(flags, "dismissed")
	}
	if remote := snap.RemoteTitles[key]; remote != "" && !snap.ManualCheck[key] {
		_, title := trackkey.Split(key)
		if !strings.EqualFold(remote, title) {
			flags = append(flags, "version?")
		}
	}
	if len(flags) == 0 {
		return ""
	}
	out := flags[0]
	for _, f := range flags[1:] {
		out += "," + f
	}
	return out
}

// ExportToCSV renders a snapshot as CSV with columns: Key, Status, Local Path, URL, Remote Title, Starred, Flags
func ExportToCSV(snap *reconcile.StatusSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Key", "Status", "Local Path", "URL", "Remote Title", "Starred", "Flags"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range Rows(snap) {
		record := []string{row.Key, row.Status, row.LocalPath, row.URL, row.RemoteTitle, row.Starred, row.Flags}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a snapshot as an aligned plain-text table.
func ExportToText(snap *reconcile.StatusSnapshot) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "To download: %d  Have locally: %d\n\n", len(snap.ToDownload), len(snap.HaveLocally))

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSTATUS\tSTARRED\tURL\tFLAGS")
	for _, row := range Rows(snap) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Key, row.Status, row.Starred, row.URL, row.Flags)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a snapshot as a Markdown table.
func ExportToMarkdown(snap *reconcile.StatusSnapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Library status\n\n")
	fmt.Fprintf(&buf, "**To download**: %d\n", len(snap.ToDownload))
	fmt.Fprintf(&buf, "**Have locally**: %d\n\n", len(snap.HaveLocally))

	buf.WriteString("| Key | Status | Starred | URL | Flags |\n")
	buf.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, row := range Rows(snap) {
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | %s |\n", row.Key, row.Status, row.Starred, row.URL, row.Flags)
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes the CSV rendering to a file, defaulting to
// status.csv in the working directory.
func WriteCSVExport(snap *reconcile.StatusSnapshot, path string) (string, error) {
	if path == "" {
		path = "status.csv"
	}

	data, err := ExportToCSV(snap)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}
