package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/state"
)

func newTestEngine(t *testing.T) (*Engine, *state.Store) {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), nil)
	store.Load()
	return NewEngine(store, nil), store
}

func TestReconcileClassifies(t *testing.T) {
	engine, _ := newTestEngine(t)

	captures := []models.Capture{
		{Artist: "Artist", Title: "Song"},
		{Artist: "Other", Title: "Missing"},
	}
	files := []models.ScannedFile{
		{Artist: "Artist", Title: "Song", Path: "/music/a.mp3", ScannedAt: time.Now()},
	}

	snap, err := engine.Reconcile(captures, files)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(snap.HaveLocally) != 1 || snap.HaveLocally[0] != "Artist - Song" {
		t.Errorf("HaveLocally = %v", snap.HaveLocally)
	}
	if len(snap.ToDownload) != 1 || snap.ToDownload[0] != "Other - Missing" {
		t.Errorf("ToDownload = %v", snap.ToDownload)
	}
	if snap.LocalPaths["Artist - Song"] != "/music/a.mp3" {
		t.Errorf("LocalPaths = %v", snap.LocalPaths)
	}
}

func TestReconcileFuzzyMatch(t *testing.T) {
	engine, _ := newTestEngine(t)

	captures := []models.Capture{
		{Artist: "Artist", Title: "Song"},
	}
	files := []models.ScannedFile{
		{Artist: "artist", Title: "song (Radio Edit)", Path: "/music/a.mp3", ScannedAt: time.Now()},
	}

	snap, err := engine.Reconcile(captures, files)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(snap.HaveLocally) != 1 {
		t.Fatalf("HaveLocally = %v, want the normalized match", snap.HaveLocally)
	}
}

func TestReconcileTieBreakMostRecentScan(t *testing.T) {
	engine, _ := newTestEngine(t)

	now := time.Now()
	captures := []models.Capture{{Artist: "Artist", Title: "Song"}}
	files := []models.ScannedFile{
		{Artist: "Artist", Title: "Song", Path: "/old/a.mp3", ScannedAt: now.Add(-time.Hour)},
		{Artist: "Artist", Title: "Song", Path: "/new/a.mp3", ScannedAt: now},
	}

	snap, err := engine.Reconcile(captures, files)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if snap.LocalPaths["Artist - Song"] != "/new/a.mp3" {
		t.Errorf("LocalPaths = %v, want the most recent scan to win", snap.LocalPaths)
	}
}

func TestReconcileRunsReplayFirst(t *testing.T) {
	engine, store := newTestEngine(t)

	if err := store.Mutate(func(s *state.State) {
		s.AppendOutcome(state.Outcome{
			Timestamp: time.Now(),
			Key:       "Artist - Song",
			Action:    state.ActionSearchFound,
			URL:       "https://x/1",
		})
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := engine.Reconcile([]models.Capture{{Artist: "Artist", Title: "Song"}}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if snap.URLs["Artist - Song"] != "https://x/1" {
		t.Errorf("URLs = %v, want replay-derived url", snap.URLs)
	}
}

func TestApplyCrawlMarksStarred(t *testing.T) {
	engine, store := newTestEngine(t)

	err := engine.ApplyCrawl([]RemoteObservation{
		{Key: "Artist - Song", URL: "https://x/1", RemoteID: "t1", Title: "Song"},
	})
	if err != nil {
		t.Fatalf("ApplyCrawl: %v", err)
	}

	snap := store.Snapshot()
	if !snap.Starred["Artist - Song"] {
		t.Error("crawled key not marked starred")
	}
	if snap.URLs["Artist - Song"] != "https://x/1" || snap.RemoteIDs["Artist - Song"] != "t1" {
		t.Errorf("crawl identity not recorded: urls=%v ids=%v", snap.URLs, snap.RemoteIDs)
	}
}

func TestApplyCrawlDemotesAbsentStarred(t *testing.T) {
	engine, store := newTestEngine(t)

	if err := store.Mutate(func(s *state.State) {
		s.Starred["Gone - Track"] = true
		s.URLs["Gone - Track"] = "https://x/9"
	}); err != nil {
		t.Fatal(err)
	}

	err := engine.ApplyCrawl([]RemoteObservation{
		{Key: "Artist - Song", URL: "https://x/1"},
	})
	if err != nil {
		t.Fatalf("ApplyCrawl: %v", err)
	}

	snap := store.Snapshot()
	starred, known := snap.Starred["Gone - Track"]
	if !known || starred {
		t.Errorf("absent key Starred = %v (known=%v), want explicit false", starred, known)
	}
	if snap.URLs["Gone - Track"] != "https://x/9" {
		t.Error("demotion cleared the discovered url")
	}
}

func TestApplyCrawlClearsNotFound(t *testing.T) {
	engine, store := newTestEngine(t)

	if err := store.Mutate(func(s *state.State) {
		s.NotFound["Artist - Song"] = true
	}); err != nil {
		t.Fatal(err)
	}

	if err := engine.ApplyCrawl([]RemoteObservation{
		{Key: "Artist - Song", URL: "https://x/1"},
	}); err != nil {
		t.Fatalf("ApplyCrawl: %v", err)
	}

	if store.Snapshot().NotFound["Artist - Song"] {
		t.Error("not-found flag survived a crawl that found the track")
	}
}

func TestCaptureCrawlScenario(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := engine.ApplyCrawl([]RemoteObservation{
		{Key: "Artist - Song", URL: "https://x/1"},
	}); err != nil {
		t.Fatalf("ApplyCrawl: %v", err)
	}

	snap, err := engine.Reconcile([]models.Capture{{Artist: "Artist", Title: "Song"}}, nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(snap.ToDownload) != 1 || snap.ToDownload[0] != "Artist - Song" {
		t.Errorf("ToDownload = %v", snap.ToDownload)
	}
	if snap.URLs["Artist - Song"] != "https://x/1" {
		t.Errorf("URLs = %v", snap.URLs)
	}
	if !snap.Starred["Artist - Song"] {
		t.Error("crawled track not starred in snapshot")
	}
}

func TestStatusWithoutRescan(t *testing.T) {
	engine, store := newTestEngine(t)

	if err := store.Mutate(func(s *state.State) {
		s.LocalPaths["Artist - Song"] = "/music/a.mp3"
	}); err != nil {
		t.Fatal(err)
	}

	snap := engine.Status([]models.Capture{
		{Artist: "Artist", Title: "Song"},
		{Artist: "Other", Title: "Missing"},
	})

	if len(snap.HaveLocally) != 1 || snap.HaveLocally[0] != "Artist - Song" {
		t.Errorf("HaveLocally = %v", snap.HaveLocally)
	}
	if len(snap.ToDownload) != 1 || snap.ToDownload[0] != "Other - Missing" {
		t.Errorf("ToDownload = %v", snap.ToDownload)
	}
}
