// Package reconcile merges the capture list, the local scan, and the
// persisted remote facts into one consistent per-track view.
package reconcile

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/state"
	"github.com/mkraev/starsync/internal/trackkey"
)

// StatusSnapshot is the read-only view handed to the presentation layer.
type StatusSnapshot struct {
	ToDownload   []string          `json:"to_download"`
	HaveLocally  []string          `json:"have_locally"`
	LocalPaths   map[string]string `json:"local_paths"`
	URLs         map[string]string `json:"urls"`
	RemoteIDs    map[string]string `json:"remote_ids"`
	RemoteTitles map[string]string `json:"remote_titles"`
	Starred      map[string]bool   `json:"starred"`
	NotFound     map[string]bool   `json:"not_found"`
	Dismissed    map[string]bool   `json:"dismissed"`
	ManualCheck  map[string]bool   `json:"dismissed_manual_check"`
}

// RemoteObservation is one track seen on the remote favorites listing,
// produced by a crawl.
type RemoteObservation struct {
	Key      string
	URL      string
	RemoteID string
	Title    string
}

// Engine classifies capture entries against the local scan and keeps the
// state store's remote facts consistent with crawl observations.
type Engine struct {
	store  *state.Store
	logger *log.Logger
}

// NewEngine creates an engine over the given store.
func NewEngine(store *state.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{store: store, logger: logger}
}

// Reconcile classifies every capture entry as have-locally or to-download,
// persists the discovered local paths, and returns the full status snapshot.
//
// Matching uses the tiered key lookup; when several scanned files share a
// key, the most recently scanned one wins.
func (e *Engine) Reconcile(captures []models.Capture, files []models.ScannedFile) (*StatusSnapshot, error) {
	byKey := indexFiles(files)

	var toDownload, haveLocally []string
	localPaths := map[string]string{}

	seen := map[string]bool{}
	for _, c := range captures {
		key := trackkey.Key(c.Artist, c.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		if file, tier, ok := trackkey.Lookup(byKey, key); ok {
			haveLocally = append(haveLocally, key)
			localPaths[key] = file.Path
			if tier > trackkey.TierExact {
				e.logger.Debug("fuzzy local match", "key", key, "tier", tier, "path", file.Path)
			}
		} else {
			toDownload = append(toDownload, key)
		}
	}

	sort.Strings(toDownload)
	sort.Strings(haveLocally)

	// Mutate replays the outcome log before saving, so the snapshot below
	// carries the latest derived URLs and not-found flags.
	err := e.store.Mutate(func(s *state.State) {
		for key, path := range localPaths {
			s.LocalPaths[key] = path
		}
	})
	if err != nil {
		return nil, err
	}

	return e.snapshot(toDownload, haveLocally), nil
}

// Status returns the current snapshot without rescanning, classifying from
// the persisted local paths.
func (e *Engine) Status(captures []models.Capture) *StatusSnapshot {
	current := e.store.Snapshot()

	var toDownload, haveLocally []string
	seen := map[string]bool{}
	for _, c := range captures {
		key := trackkey.Key(c.Artist, c.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, _, ok := trackkey.Lookup(current.LocalPaths, key); ok {
			haveLocally = append(haveLocally, key)
		} else {
			toDownload = append(toDownload, key)
		}
	}

	sort.Strings(toDownload)
	sort.Strings(haveLocally)

	return e.snapshot(toDownload, haveLocally)
}

// ApplyCrawl folds a completed crawl into the store. Every observed key gets
// its URL, remote id, remote title, and starred=true; every key previously
// marked starred but absent from the crawl is demoted to starred=false.
//
// The crawl is authoritative for starred truth only: demotion never clears a
// discovered URL.
func (e *Engine) ApplyCrawl(observations []RemoteObservation) error {
	crawled := map[string]bool{}
	for _, o := range observations {
		crawled[o.Key] = true
	}

	return e.store.Mutate(func(s *state.State) {
		for _, o := range observations {
			if o.URL != "" {
				s.URLs[o.Key] = o.URL
			}
			if o.RemoteID != "" {
				s.RemoteIDs[o.Key] = o.RemoteID
			}
			if o.Title != "" {
				s.RemoteTitles[o.Key] = o.Title
			}
			s.Starred[o.Key] = true
		}

		for key, starred := range s.Starred {
			if starred && !crawled[key] {
				s.Starred[key] = false
				e.logger.Info("favorite removed out of band", "key", key)
			}
		}
	})
}

// snapshot assembles a StatusSnapshot from the store's current state.
func (e *Engine) snapshot(toDownload, haveLocally []string) *StatusSnapshot {
	current := e.store.Snapshot()
	return &StatusSnapshot{
		ToDownload:   toDownload,
		HaveLocally:  haveLocally,
		LocalPaths:   current.LocalPaths,
		URLs:         current.URLs,
		RemoteIDs:    current.RemoteIDs,
		RemoteTitles: current.RemoteTitles,
		Starred:      current.Starred,
		NotFound:     current.NotFound,
		Dismissed:    current.Dismissed,
		ManualCheck:  current.ManualChecked,
	}
}

// indexFiles maps track keys to scanned files, keeping the most recently
// scanned file when keys collide.
func indexFiles(files []models.ScannedFile) map[string]models.ScannedFile {
	byKey := make(map[string]models.ScannedFile, len(files))
	for _, f := range files {
		key := trackkey.Key(f.Artist, f.Title)
		if existing, ok := byKey[key]; ok && existing.ScannedAt.After(f.ScannedAt) {
			continue
		}
		byKey[key] = f
	}
	return byKey
}
