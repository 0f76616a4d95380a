package library

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/shared"
)

// CaptureReader produces the user's capture list.
type CaptureReader interface {
	Read() ([]models.Capture, error)
}

// CSVCaptureReader reads captures from a CSV file with columns
// artist,title,captured_at. A header row is detected and skipped.
type CSVCaptureReader struct {
	path   string
	logger *log.Logger
}

// NewCSVCaptureReader creates a reader for the given captures file.
func NewCSVCaptureReader(path string, logger *log.Logger) *CSVCaptureReader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CSVCaptureReader{path: ExpandHome(path), logger: logger}
}

// timeLayouts are tried in order when parsing the captured_at column.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Read parses the capture file. Rows that cannot be parsed are skipped and
// logged rather than failing the whole read.
func (r *CSVCaptureReader) Read() ([]models.Capture, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open captures file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse captures file: %w", err)
	}

	var captures []models.Capture
	for i, rec := range records {
		if len(rec) < 2 {
			r.logger.Warn("skipping malformed capture row", "row", i+1)
			continue
		}
		artist := strings.TrimSpace(rec[0])
		title := strings.TrimSpace(rec[1])

		if i == 0 && strings.EqualFold(artist, "artist") && strings.EqualFold(title, "title") {
			continue
		}
		if artist == "" && title == "" {
			continue
		}

		capturedAt := time.Time{}
		if len(rec) >= 3 {
			capturedAt = parseCaptureTime(strings.TrimSpace(rec[2]))
		}

		captures = append(captures, models.Capture{
			Artist:     artist,
			Title:      title,
			CapturedAt: capturedAt,
		})
	}

	return captures, nil
}

func parseCaptureTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Watch signals on the returned channel whenever the captures file changes,
// until ctx is cancelled. Editors replace files on save, so the watch is on
// the parent directory with events filtered to the captures file name.
func (r *CSVCaptureReader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(r.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("capture watch error", "err", err)
			}
		}
	}()

	return changes, nil
}
