package state

import (
	"fmt"
	"testing"
	"time"
)

func outcomeAt(sec int, key string, action Action, url string) Outcome {
	return Outcome{
		Timestamp: time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC),
		Key:       key,
		Action:    action,
		URL:       url,
	}
}

func TestReplay(t *testing.T) {
	tests := []struct {
		name         string
		outcomes     []Outcome
		wantURLs     map[string]string
		wantNotFound map[string]bool
	}{
		{
			name:         "empty log",
			outcomes:     nil,
			wantURLs:     map[string]string{},
			wantNotFound: map[string]bool{},
		},
		{
			name: "single found",
			outcomes: []Outcome{
				outcomeAt(1, "A - B", ActionSearchFound, "https://x/1"),
			},
			wantURLs:     map[string]string{"A - B": "https://x/1"},
			wantNotFound: map[string]bool{},
		},
		{
			name: "not found then found clears the flag",
			outcomes: []Outcome{
				outcomeAt(1, "A - B", ActionSearchNotFound, ""),
				outcomeAt(2, "A - B", ActionSearchFound, "https://x/1"),
			},
			wantURLs:     map[string]string{"A - B": "https://x/1"},
			wantNotFound: map[string]bool{},
		},
		{
			name: "newest entry wins per key",
			outcomes: []Outcome{
				outcomeAt(1, "A - B", ActionSearchFound, "https://x/old"),
				outcomeAt(2, "A - B", ActionSearchFound, "https://x/new"),
			},
			wantURLs:     map[string]string{"A - B": "https://x/new"},
			wantNotFound: map[string]bool{},
		},
		{
			name: "independent keys",
			outcomes: []Outcome{
				outcomeAt(1, "A - B", ActionSearchFound, "https://x/1"),
				outcomeAt(2, "C - D", ActionSearchNotFound, ""),
			},
			wantURLs:     map[string]string{"A - B": "https://x/1"},
			wantNotFound: map[string]bool{"C - D": true},
		},
		{
			name: "starred outcome carries url",
			outcomes: []Outcome{
				outcomeAt(1, "A - B", ActionStarred, "https://x/1"),
			},
			wantURLs:     map[string]string{"A - B": "https://x/1"},
			wantNotFound: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, notFound := Replay(tt.outcomes)

			if len(urls) != len(tt.wantURLs) {
				t.Fatalf("urls = %v, want %v", urls, tt.wantURLs)
			}
			for k, v := range tt.wantURLs {
				if urls[k] != v {
					t.Errorf("urls[%q] = %q, want %q", k, urls[k], v)
				}
			}

			if len(notFound) != len(tt.wantNotFound) {
				t.Fatalf("notFound = %v, want %v", notFound, tt.wantNotFound)
			}
			for k := range tt.wantNotFound {
				if !notFound[k] {
					t.Errorf("notFound[%q] = false, want true", k)
				}
			}
		})
	}
}

func TestApplyReplayKeepsCrawlURLs(t *testing.T) {
	s := NewState()
	s.URLs["A - B"] = "https://x/crawled"
	s.AppendOutcome(outcomeAt(1, "A - B", ActionSearchNotFound, ""))

	s.ApplyReplay()

	// The crawl-discovered URL survives and suppresses the not-found flag.
	if s.URLs["A - B"] != "https://x/crawled" {
		t.Errorf("URL = %q, want crawled URL intact", s.URLs["A - B"])
	}
	if s.NotFound["A - B"] {
		t.Error("NotFound set for a key that has a URL")
	}
}

func TestMergeIntoUnionsMaps(t *testing.T) {
	dst := NewState()
	dst.URLs["A - B"] = "u1"
	dst.URLs["C - D"] = "u2"
	dst.Starred["A - B"] = true

	partial := NewState()
	partial.URLs["A - B"] = "u1"
	partial.URLs["E - F"] = "u3"
	partial.Starred["C - D"] = false
	partial.NotFound = nil // no authoritative snapshot: leave dst untouched

	MergeInto(dst, partial)

	for key, want := range map[string]string{"A - B": "u1", "C - D": "u2", "E - F": "u3"} {
		if dst.URLs[key] != want {
			t.Errorf("URLs[%q] = %q, want %q", key, dst.URLs[key], want)
		}
	}
	if !dst.Starred["A - B"] {
		t.Error("Starred[A - B] lost in merge")
	}
	if starred, known := dst.Starred["C - D"]; !known || starred {
		t.Error("Starred[C - D] should be known false after merge")
	}
}

func TestMergeIntoReplacesNotFoundWholesale(t *testing.T) {
	dst := NewState()
	dst.NotFound["A - B"] = true
	dst.NotFound["C - D"] = true
	dst.AppendOutcome(outcomeAt(1, "A - B", ActionSearchNotFound, ""))
	dst.AppendOutcome(outcomeAt(2, "C - D", ActionSearchNotFound, ""))

	partial := NewState()
	partial.NotFound = map[string]bool{}

	MergeInto(dst, partial)
	dst.ApplyReplay()

	if len(dst.NotFound) != 0 {
		t.Errorf("NotFound = %v, want empty after wholesale replacement", dst.NotFound)
	}
	// A later replay must not resurrect the cleared flags either.
	for _, o := range dst.Outcomes {
		if o.Action == ActionSearchNotFound {
			t.Errorf("stale not-found log entry survived replacement: %+v", o)
		}
	}
}

func TestResetNotFound(t *testing.T) {
	s := NewState()
	s.AppendOutcome(outcomeAt(1, "A - B", ActionSearchNotFound, ""))
	s.AppendOutcome(outcomeAt(2, "C - D", ActionSearchFound, "https://x/1"))
	s.ApplyReplay()

	if !s.NotFound["A - B"] {
		t.Fatal("precondition: NotFound[A - B] should be set")
	}

	s.ResetNotFound()
	s.ApplyReplay()

	if len(s.NotFound) != 0 {
		t.Errorf("NotFound = %v, want empty after reset", s.NotFound)
	}
	if s.URLs["C - D"] != "https://x/1" {
		t.Error("reset must not touch derived URLs")
	}
}

func TestAppendOutcomeBounded(t *testing.T) {
	s := NewState()
	for i := 0; i < MaxOutcomes+10; i++ {
		s.AppendOutcome(Outcome{
			Timestamp: time.Now(),
			Key:       fmt.Sprintf("K - %d", i),
			Action:    ActionSearchFound,
			URL:       "u",
		})
	}

	if len(s.Outcomes) != MaxOutcomes {
		t.Fatalf("log length = %d, want %d", len(s.Outcomes), MaxOutcomes)
	}
	// Oldest entries are the ones trimmed.
	if s.Outcomes[0].Key != "K - 10" {
		t.Errorf("oldest surviving entry = %q, want K - 10", s.Outcomes[0].Key)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewState()
	s.URLs["A - B"] = "u1"
	s.AppendOutcome(outcomeAt(1, "A - B", ActionSearchFound, "u1"))

	c := s.Clone()
	c.URLs["A - B"] = "changed"
	c.Outcomes[0].URL = "changed"

	if s.URLs["A - B"] != "u1" || s.Outcomes[0].URL != "u1" {
		t.Error("Clone shares storage with the original")
	}
}
