// Package state holds the authoritative persisted record of everything the
// tool knows about each track: local file, catalogue identity, starred flag,
// and the append-only outcome log of search and sync attempts.
//
// The outcome log, not ad hoc mutation, is the durable source of truth for
// the derived remote URL and "searched, not found" fields; both are rebuilt
// by replaying the log newest-first. Everything else in State is updated by
// direct merge.
package state

import (
	"time"
)

// MaxOutcomes bounds the outcome log. Oldest entries are trimmed on append.
const MaxOutcomes = 100_000

// Action classifies an outcome log entry.
type Action string

const (
	ActionSearchFound    Action = "search_found"
	ActionSearchNotFound Action = "search_not_found"
	ActionStarred        Action = "starred"
	ActionUnstarred      Action = "unstarred"
	ActionFailed         Action = "failed"
)

// Outcome is one search/sync attempt, appended to the log as it happens.
type Outcome struct {
	Timestamp time.Time `json:"timestamp"`
	Key       string    `json:"key"`
	Action    Action    `json:"action"`
	URL       string    `json:"url,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// State is the single persisted record for all per-track derived facts.
// All maps are keyed by track key (see the trackkey package).
//
// Starred is tri-state: a key absent from the map means "unknown".
type State struct {
	LocalPaths    map[string]string `json:"local_paths,omitempty"`
	URLs          map[string]string `json:"urls,omitempty"`
	RemoteIDs     map[string]string `json:"remote_ids,omitempty"`
	RemoteTitles  map[string]string `json:"remote_titles,omitempty"`
	Starred       map[string]bool   `json:"starred,omitempty"`
	NotFound      map[string]bool   `json:"not_found,omitempty"`
	Dismissed     map[string]bool   `json:"dismissed,omitempty"`
	ManualChecked map[string]bool   `json:"dismissed_manual_check,omitempty"`
	Outcomes      []Outcome         `json:"outcomes,omitempty"`
	SavedAt       time.Time         `json:"saved_at,omitempty"`
}

// NewState returns an empty but fully initialized State.
func NewState() *State {
	return &State{
		LocalPaths:    map[string]string{},
		URLs:          map[string]string{},
		RemoteIDs:     map[string]string{},
		RemoteTitles:  map[string]string{},
		Starred:       map[string]bool{},
		NotFound:      map[string]bool{},
		Dismissed:     map[string]bool{},
		ManualChecked: map[string]bool{},
	}
}

// NewPartial returns a State meant for MergeInto: all maps nil, so only the
// fields a caller fills in take part in the merge. In particular a nil
// NotFound map means "no authoritative snapshot, leave the flags alone".
func NewPartial() *State {
	return &State{}
}

// init ensures all maps are non-nil after JSON decoding a sparse file.
func (s *State) init() {
	if s.LocalPaths == nil {
		s.LocalPaths = map[string]string{}
	}
	if s.URLs == nil {
		s.URLs = map[string]string{}
	}
	if s.RemoteIDs == nil {
		s.RemoteIDs = map[string]string{}
	}
	if s.RemoteTitles == nil {
		s.RemoteTitles = map[string]string{}
	}
	if s.Starred == nil {
		s.Starred = map[string]bool{}
	}
	if s.NotFound == nil {
		s.NotFound = map[string]bool{}
	}
	if s.Dismissed == nil {
		s.Dismissed = map[string]bool{}
	}
	if s.ManualChecked == nil {
		s.ManualChecked = map[string]bool{}
	}
}

// Clone returns a deep copy, safe for concurrent readers.
func (s *State) Clone() *State {
	c := &State{
		LocalPaths:    copyStrMap(s.LocalPaths),
		URLs:          copyStrMap(s.URLs),
		RemoteIDs:     copyStrMap(s.RemoteIDs),
		RemoteTitles:  copyStrMap(s.RemoteTitles),
		Starred:       copyBoolMap(s.Starred),
		NotFound:      copyBoolMap(s.NotFound),
		Dismissed:     copyBoolMap(s.Dismissed),
		ManualChecked: copyBoolMap(s.ManualChecked),
		SavedAt:       s.SavedAt,
	}
	if s.Outcomes != nil {
		c.Outcomes = make([]Outcome, len(s.Outcomes))
		copy(c.Outcomes, s.Outcomes)
	}
	return c
}

// AppendOutcome records one attempt, trimming the oldest entries past MaxOutcomes.
func (s *State) AppendOutcome(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	if excess := len(s.Outcomes) - MaxOutcomes; excess > 0 {
		s.Outcomes = append(s.Outcomes[:0:0], s.Outcomes[excess:]...)
	}
}

// Replay folds the outcome log newest-first and returns the derived remote
// URL and not-found flag per key. The first (most recent) relevant entry for
// a key wins; older entries for the same key are ignored.
//
// Replay is a pure function over the log so it can be tested in isolation.
func Replay(outcomes []Outcome) (urls map[string]string, notFound map[string]bool) {
	urls = map[string]string{}
	notFound = map[string]bool{}
	decided := map[string]bool{}

	for i := len(outcomes) - 1; i >= 0; i-- {
		o := outcomes[i]
		if decided[o.Key] {
			continue
		}
		switch {
		case o.URL != "":
			urls[o.Key] = o.URL
			decided[o.Key] = true
		case o.Action == ActionSearchNotFound:
			notFound[o.Key] = true
			decided[o.Key] = true
		}
	}

	return urls, notFound
}

// ApplyReplay rebuilds the derived fields from the outcome log.
//
// Replayed URLs overwrite stale cached ones. Replay-derived not-found flags
// are added, and any not-found flag for a key that now has a URL (from
// replay or from a crawl merge) is dropped: a track found through a
// different code path can never keep a stale flag.
func (s *State) ApplyReplay() {
	s.init()
	urls, notFound := Replay(s.Outcomes)

	for key, url := range urls {
		s.URLs[key] = url
	}

	for key := range notFound {
		if s.URLs[key] == "" {
			s.NotFound[key] = true
		}
	}
	for key := range s.NotFound {
		if s.URLs[key] != "" {
			delete(s.NotFound, key)
		}
	}
}

// ResetNotFound wipes the "searched, not found" paper trail: all flags and
// the log entries that would re-derive them. This is the one sanctioned way
// to re-run searches for previously missing tracks.
func (s *State) ResetNotFound() {
	s.init()
	s.NotFound = map[string]bool{}
	kept := s.Outcomes[:0]
	for _, o := range s.Outcomes {
		if o.Action != ActionSearchNotFound {
			kept = append(kept, o)
		}
	}
	s.Outcomes = kept
}

// MergeInto merges partial into dst. Map fields are unioned key-wise with
// partial winning per key; the NotFound map is the single exception and is
// replaced wholesale whenever partial carries one, so stale flags cannot
// resurrect. Outcome entries are appended in order.
func MergeInto(dst, partial *State) {
	dst.init()

	mergeStrMap(dst.LocalPaths, partial.LocalPaths)
	mergeStrMap(dst.URLs, partial.URLs)
	mergeStrMap(dst.RemoteIDs, partial.RemoteIDs)
	mergeStrMap(dst.RemoteTitles, partial.RemoteTitles)
	mergeBoolMap(dst.Starred, partial.Starred)
	mergeBoolMap(dst.Dismissed, partial.Dismissed)
	mergeBoolMap(dst.ManualChecked, partial.ManualChecked)

	if partial.NotFound != nil {
		dst.NotFound = copyBoolMap(partial.NotFound)
		// The replacement is an authoritative snapshot: drop the log entries
		// that would re-derive flags it cleared.
		kept := dst.Outcomes[:0]
		for _, o := range dst.Outcomes {
			if o.Action == ActionSearchNotFound && !partial.NotFound[o.Key] {
				continue
			}
			kept = append(kept, o)
		}
		dst.Outcomes = kept
	}

	for _, o := range partial.Outcomes {
		dst.AppendOutcome(o)
	}

	if partial.SavedAt.After(dst.SavedAt) {
		dst.SavedAt = partial.SavedAt
	}
}

func copyStrMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyBoolMap(m map[string]bool) map[string]bool {
	c := make(map[string]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func mergeStrMap(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func mergeBoolMap(dst, src map[string]bool) {
	for k, v := range src {
		dst[k] = v
	}
}
