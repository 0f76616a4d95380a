package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running job.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Job phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Key     string // Track key in flight, if any
	URL     string // Catalogue URL involved, if any
}

// Job phase enumeration
type Phase int

const (
	CrawlFavorites Phase = iota
	SearchTracks
	SyncStars
	StarTrack
	UnstarTrack
	JobDone
)

func (p Phase) String() string {
	switch p {
	case CrawlFavorites:
		return "crawl_favorites"
	case SearchTracks:
		return "search_tracks"
	case SyncStars:
		return "sync_stars"
	case StarTrack:
		return "star_track"
	case UnstarTrack:
		return "unstar_track"
	case JobDone:
		return "done"
	default:
		return ""
	}
}

func crawlUpdate(page, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CrawlFavorites,
		Step:    page,
		Total:   0,
		Message: fmt.Sprintf("Crawling favorites page %d (%d tracks so far)...", page, entries),
	}
}

func searchUpdate(step, total int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s", step, total, key),
		Key:     key,
	}
}

func searchFoundUpdate(step, total int, key, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, key),
		Key:     key,
		URL:     url,
	}
}

func searchMissUpdate(step, total int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: not found", step, total, key),
		Key:     key,
	}
}

func syncUpdate(step, total int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncStars,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Syncing: %s", step, total, key),
		Key:     key,
	}
}

func syncFailedUpdate(step, total int, key string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncStars,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, key, err),
		Key:     key,
	}
}

func starUpdate(key string, starred bool) ProgressUpdate {
	phase := StarTrack
	verb := "Starring"
	if !starred {
		phase = UnstarTrack
		verb = "Unstarring"
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s: %s", verb, key),
		Key:     key,
	}
}

func doneUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   JobDone,
		Message: message,
	}
}
