// package library implements the local side of the sync: walking the music
// directories for tagged audio files and reading the user's capture list.
package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/shared"
)

// Scanner produces the list of local audio files with their tags.
type Scanner interface {
	Scan(ctx context.Context, paths []string) ([]models.ScannedFile, error)
}

// audioExtensions are the file extensions considered audio files.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".wma":  true,
}

// TagScanner reads artist/title from embedded tags, falling back to an
// "Artist - Title" filename convention when a file has no usable tags.
type TagScanner struct {
	logger *log.Logger
}

// NewTagScanner creates a TagScanner.
func NewTagScanner(logger *log.Logger) *TagScanner {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TagScanner{logger: logger}
}

// Scan walks every directory in paths and returns one entry per audio file.
// Files whose artist and title cannot be determined are skipped and logged.
func (s *TagScanner) Scan(ctx context.Context, paths []string) ([]models.ScannedFile, error) {
	var files []models.ScannedFile

	for _, root := range paths {
		root = ExpandHome(root)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("skipping unreadable path", "path", path, "err", err)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			artist, title := s.readTags(path)
			if artist == "" && title == "" {
				artist, title = parseFilename(path)
			}
			if title == "" {
				s.logger.Debug("no usable tags, skipping", "path", path)
				return nil
			}

			files = append(files, models.ScannedFile{
				Artist:    artist,
				Title:     title,
				Path:      path,
				ScannedAt: time.Now(),
			})
			return nil
		})
		if err != nil {
			return files, err
		}
	}

	s.logger.Info("scan complete", "dirs", len(paths), "files", len(files))
	return files, nil
}

// readTags returns the embedded artist/title tags, empty on any failure.
func (s *TagScanner) readTags(path string) (artist, title string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(m.Artist()), strings.TrimSpace(m.Title())
}

// parseFilename extracts artist and title from an "Artist - Title.ext" name.
func parseFilename(path string) (artist, title string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(name, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", strings.TrimSpace(name)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}
