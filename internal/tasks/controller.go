package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/catalogue"
	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/state"
	"github.com/mkraev/starsync/internal/trackkey"
)

// JobState is the lifecycle state of the controller's single job slot.
type JobState int

const (
	JobIdle JobState = iota
	JobRunning
	JobCompleted
	JobFailed
	JobStopped
)

func (s JobState) String() string {
	switch s {
	case JobIdle:
		return "idle"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	case JobStopped:
		return "stopped"
	default:
		return ""
	}
}

// Progress is a point-in-time snapshot of the running (or last) job,
// readable at any moment, including while the job runs.
type Progress struct {
	JobID      string    `json:"job_id"`
	Job        string    `json:"job"`
	State      JobState  `json:"-"`
	StateName  string    `json:"state"`
	Current    int       `json:"current"`
	Total      int       `json:"total"`
	Message    string    `json:"message"`
	CurrentKey string    `json:"current_key,omitempty"`
	LastURL    string    `json:"last_url,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// Crawler walks the remote favorites listing. Satisfied by
// [catalogue.Paginator].
type Crawler interface {
	Crawl(ctx context.Context) ([]catalogue.CrawlEntry, error)
}

// Controller owns the single background job slot. Any command attempted
// while a job is running is rejected with [shared.ErrBusy], never queued.
//
// Stop is cooperative: the flag is checked between per-track iterations
// only, so the item in flight always finishes its store write.
type Controller struct {
	mu sync.Mutex

	orch    *Orchestrator
	engine  *reconcile.Engine
	crawler Crawler
	store   *state.Store
	logger  *log.Logger

	running       bool
	stopRequested bool
	progress      Progress
	done          chan struct{}
	updates       chan<- ProgressUpdate
}

// NewController creates a controller. crawler may be nil when no request
// backend is configured; crawl jobs are then rejected.
func NewController(orch *Orchestrator, engine *reconcile.Engine, crawler Crawler, store *state.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{
		orch:    orch,
		engine:  engine,
		crawler: crawler,
		store:   store,
		logger:  logger,
	}
}

// SetUpdates wires a channel receiving live progress events, consumed by the
// TUI. Sends never block; a slow consumer just misses updates.
func (c *Controller) SetUpdates(ch chan<- ProgressUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = ch
}

// Progress returns the current snapshot.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.progress
	p.StateName = p.State.String()
	return p
}

// Stop requests cooperative cancellation of the running job.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return fmt.Errorf("%w: no job running", shared.ErrInvalidInput)
	}
	c.stopRequested = true
	c.logger.Info("stop requested", "job", c.progress.Job)
	return nil
}

// Wait blocks until the current job finishes. Returns immediately when idle.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// start claims the job slot and runs fn in the background.
func (c *Controller) start(job string, total int, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s already running", shared.ErrBusy, c.progress.Job)
	}

	c.running = true
	c.stopRequested = false
	c.done = make(chan struct{})
	c.progress = Progress{
		JobID:     shared.GenerateID(),
		Job:       job,
		State:     JobRunning,
		Total:     total,
		StartedAt: time.Now(),
	}
	done := c.done
	jobID := c.progress.JobID
	c.mu.Unlock()

	c.logger.Info("job started", "job", job, "id", jobID)

	go func() {
		err := fn(context.Background())

		c.mu.Lock()
		c.running = false
		c.progress.FinishedAt = time.Now()
		switch {
		case errors.Is(err, shared.ErrCancelled):
			c.progress.State = JobStopped
		case err != nil:
			c.progress.State = JobFailed
			c.progress.Err = err.Error()
		default:
			c.progress.State = JobCompleted
		}
		finalState := c.progress.State
		c.mu.Unlock()

		c.logger.Info("job finished", "job", job, "state", finalState)
		c.publish(doneUpdate(fmt.Sprintf("%s %s", job, finalState)))
		close(done)
	}()

	return nil
}

// stopping reports whether a stop was requested. Checked between tracks only.
func (c *Controller) stopping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopRequested
}

// publish folds an update into the snapshot and forwards it to the live
// channel without blocking. The done event carries no step counter and must
// not reset the final per-track count.
func (c *Controller) publish(u ProgressUpdate) {
	c.mu.Lock()
	if u.Phase != JobDone {
		c.progress.Current = u.Step
	}
	if u.Total > 0 {
		c.progress.Total = u.Total
	}
	c.progress.Message = u.Message
	if u.Key != "" {
		c.progress.CurrentKey = u.Key
	}
	if u.URL != "" {
		c.progress.LastURL = u.URL
	}
	updates := c.updates
	c.mu.Unlock()

	if updates == nil {
		return
	}
	select {
	case updates <- u:
	default:
	}
}

// recordFailure writes a failed outcome for one track so the batch can move
// on while keeping the paper trail.
func (c *Controller) recordFailure(key string, cause error) {
	err := c.store.Mutate(func(s *state.State) {
		s.AppendOutcome(state.Outcome{
			Timestamp: time.Now(),
			Key:       key,
			Action:    state.ActionFailed,
			Detail:    cause.Error(),
		})
	})
	if err != nil {
		c.logger.Error("failed to record outcome", "key", key, "err", err)
	}
}

// StartCrawl walks the remote favorites listing and folds the result into
// the store, demoting stars removed out of band.
func (c *Controller) StartCrawl() error {
	if c.crawler == nil {
		return fmt.Errorf("%w: no request backend configured for crawling", shared.ErrMissingConfig)
	}

	return c.start("crawl", 0, func(ctx context.Context) error {
		c.publish(crawlUpdate(1, 0))

		entries, err := c.crawler.Crawl(ctx)
		if err != nil {
			return err
		}

		observations := make([]reconcile.RemoteObservation, 0, len(entries))
		for _, e := range entries {
			observations = append(observations, reconcile.RemoteObservation{
				Key:      trackkey.Key(e.Artist, e.Title),
				URL:      e.URL,
				RemoteID: e.RemoteID,
				Title:    e.Title,
			})
		}

		if err := c.engine.ApplyCrawl(observations); err != nil {
			return err
		}

		c.publish(doneUpdate(fmt.Sprintf("Crawled %d favorites", len(observations))))
		return nil
	})
}

// StartSearch searches the catalogue for the given keys, one at a time.
// Per-item failures are recorded and skipped; the batch keeps going.
func (c *Controller) StartSearch(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys to search", shared.ErrInvalidInput)
	}

	return c.start("search", len(keys), func(ctx context.Context) error {
		for i, key := range keys {
			if c.stopping() {
				return shared.ErrCancelled
			}

			c.publish(searchUpdate(i+1, len(keys), key))

			artist, title := trackkey.Split(key)
			result, err := c.orch.SearchTrack(ctx, artist, title)
			switch {
			case err == nil:
				c.publish(searchFoundUpdate(i+1, len(keys), key, result.URL))
			case errors.Is(err, shared.ErrTrackNotFound):
				c.publish(searchMissUpdate(i+1, len(keys), key))
			case errors.Is(err, shared.ErrCancelled):
				return err
			default:
				c.recordFailure(key, err)
				c.logger.Warn("search failed", "key", key, "err", err)
			}
		}
		return nil
	})
}

// SearchCandidates returns the keys a search-all job would cover: captured
// tracks with no catalogue URL yet, excluding known misses and dismissed
// tracks.
func (c *Controller) SearchCandidates(captures []models.Capture) []string {
	snap := c.store.Snapshot()

	var keys []string
	seen := map[string]bool{}
	for _, cap := range captures {
		key := trackkey.Key(cap.Artist, cap.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, _, ok := trackkey.Lookup(snap.URLs, key); ok {
			continue
		}
		if snap.NotFound[key] || snap.Dismissed[key] {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// StartSync ensures every given key is favorited remotely. Dismissed keys
// are skipped; per-item failures are recorded and the batch continues.
func (c *Controller) StartSync(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys to sync", shared.ErrInvalidInput)
	}

	return c.start("sync", len(keys), func(ctx context.Context) error {
		snap := c.store.Snapshot()
		for i, key := range keys {
			if c.stopping() {
				return shared.ErrCancelled
			}

			if snap.Dismissed[key] {
				continue
			}

			c.publish(syncUpdate(i+1, len(keys), key))

			if _, err := c.orch.EnsureFavorited(ctx, key); err != nil {
				if errors.Is(err, shared.ErrCancelled) {
					return err
				}
				c.recordFailure(key, err)
				c.publish(syncFailedUpdate(i+1, len(keys), key, err))
				c.logger.Warn("sync failed", "key", key, "err", err)
			}
		}
		return nil
	})
}

// StartStar favorites one track remotely.
func (c *Controller) StartStar(key string) error {
	return c.start("star", 1, func(ctx context.Context) error {
		c.publish(starUpdate(key, true))
		_, err := c.orch.EnsureFavorited(ctx, key)
		return err
	})
}

// StartUnstar unfavorites one track remotely and marks it dismissed so sync
// jobs leave it alone.
func (c *Controller) StartUnstar(key string) error {
	return c.start("unstar", 1, func(ctx context.Context) error {
		c.publish(starUpdate(key, false))
		if _, err := c.orch.EnsureUnfavorited(ctx, key); err != nil {
			return err
		}
		return c.store.Mutate(func(s *state.State) {
			s.Dismissed[key] = true
		})
	})
}

// Dismiss flags or unflags a track as ignored. Purely local, no job slot.
func (c *Controller) Dismiss(key string, dismissed bool) error {
	return c.store.Mutate(func(s *state.State) {
		if dismissed {
			s.Dismissed[key] = true
		} else {
			delete(s.Dismissed, key)
		}
	})
}

// AcknowledgeVersion records that the user reviewed an alternate-version
// warning for a key (remote title differing from local tags).
func (c *Controller) AcknowledgeVersion(key string) error {
	return c.store.Mutate(func(s *state.State) {
		s.ManualChecked[key] = true
	})
}

// ResetNotFound wipes the "searched, not found" paper trail so those tracks
// are searched again on the next run.
func (c *Controller) ResetNotFound() error {
	return c.store.Mutate(func(s *state.State) {
		s.ResetNotFound()
	})
}
