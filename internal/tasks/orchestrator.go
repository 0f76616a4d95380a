package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/catalogue"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/state"
	"github.com/mkraev/starsync/internal/trackkey"
)

// SearchResult is the accepted candidate for one track search.
type SearchResult struct {
	URL         string
	RemoteID    string
	RemoteTitle string
	Score       float64
	Backend     string
}

// Orchestrator executes search, star, and unstar operations against one
// track at a time. Backend choice follows capability: the request backend
// whenever the track's remote id is already resolved, the bridge otherwise.
//
// Favorite mutations always read current state first and toggle only when
// the track is not already in the target state; the remote service exposes a
// toggle, not a set operation, so a blind toggle could unstar a favorite.
type Orchestrator struct {
	request catalogue.Backend
	bridge  catalogue.Backend
	store   *state.Store
	logger  *log.Logger

	// retryBackoff is the pause before the single transient retry.
	retryBackoff time.Duration
}

// NewOrchestrator creates an orchestrator. Either backend may be nil; at
// least one must be set for any operation to succeed.
func NewOrchestrator(request, bridge catalogue.Backend, store *state.Store, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Orchestrator{
		request:      request,
		bridge:       bridge,
		store:        store,
		logger:       logger,
		retryBackoff: 2 * time.Second,
	}
}

// backendFor picks the backend for a mutation on ref.
func (o *Orchestrator) backendFor(ref catalogue.TrackRef) (catalogue.Backend, error) {
	if ref.Resolved() && o.request != nil {
		return o.request, nil
	}
	if o.bridge != nil {
		return o.bridge, nil
	}
	if o.request != nil {
		if !ref.Resolved() {
			return nil, fmt.Errorf("%w: %s has no resolved catalogue entry and no bridge is configured", shared.ErrMissingConfig, ref.Key)
		}
		return o.request, nil
	}
	return nil, fmt.Errorf("%w: no catalogue backend configured", shared.ErrMissingConfig)
}

// searchBackend picks the backend for a read-only search. Discovery prefers
// the bridge when available since it shares the site's own search behavior.
func (o *Orchestrator) searchBackend() (catalogue.Backend, error) {
	if o.bridge != nil {
		return o.bridge, nil
	}
	if o.request != nil {
		return o.request, nil
	}
	return nil, fmt.Errorf("%w: no catalogue backend configured", shared.ErrMissingConfig)
}

// withRetry runs fn, retrying once after a backoff when the failure is
// transient. All other error kinds pass through untouched.
func (o *Orchestrator) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !errors.Is(err, shared.ErrTransient) {
		return err
	}

	o.logger.Warn("transient backend failure, retrying once", "err", err)
	select {
	case <-time.After(o.retryBackoff):
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", shared.ErrCancelled, ctx.Err())
	}

	return fn()
}

// Ref builds a TrackRef for a key, filling in the remote identity already
// known to the store.
func (o *Orchestrator) Ref(key string) catalogue.TrackRef {
	artist, title := trackkey.Split(key)
	ref := catalogue.TrackRef{Key: key, Artist: artist, Title: title}

	snap := o.store.Snapshot()
	if id, _, ok := trackkey.Lookup(snap.RemoteIDs, key); ok {
		ref.RemoteID = id
	}
	if url, _, ok := trackkey.Lookup(snap.URLs, key); ok {
		ref.URL = url
	}
	return ref
}

// SearchTrack searches the catalogue for one track, trying query variants in
// order and scoring candidates, and records the outcome. It never mutates
// favorite state.
//
// A miss is recorded as a not-found outcome and returned as
// [shared.ErrTrackNotFound].
func (o *Orchestrator) SearchTrack(ctx context.Context, artist, title string) (*SearchResult, error) {
	backend, err := o.searchBackend()
	if err != nil {
		return nil, err
	}

	key := trackkey.Key(artist, title)

	for _, query := range catalogue.QueryVariants(artist, title) {
		var candidates []catalogue.Candidate
		err := o.withRetry(ctx, func() error {
			var searchErr error
			candidates, searchErr = backend.Search(ctx, query)
			return searchErr
		})
		if err != nil {
			return nil, err
		}

		best, score, ok := catalogue.PickBest(artist, title, candidates)
		if !ok {
			continue
		}

		result := &SearchResult{
			URL:         best.URL,
			RemoteID:    best.RemoteID,
			RemoteTitle: best.Title,
			Score:       score,
			Backend:     backend.Name(),
		}

		err = o.store.Mutate(func(s *state.State) {
			if result.RemoteID != "" {
				s.RemoteIDs[key] = result.RemoteID
			}
			if result.RemoteTitle != "" {
				s.RemoteTitles[key] = result.RemoteTitle
			}
			s.AppendOutcome(state.Outcome{
				Timestamp: time.Now(),
				Key:       key,
				Action:    state.ActionSearchFound,
				URL:       result.URL,
				Detail:    fmt.Sprintf("score %.2f via %s", score, backend.Name()),
			})
		})
		if err != nil {
			return nil, err
		}

		o.logger.Info("track found", "key", key, "url", result.URL, "score", score)
		return result, nil
	}

	err = o.store.Mutate(func(s *state.State) {
		s.AppendOutcome(state.Outcome{
			Timestamp: time.Now(),
			Key:       key,
			Action:    state.ActionSearchNotFound,
		})
	})
	if err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, key)
}

// resolveRef returns a ref carrying enough remote identity for a mutation,
// searching the catalogue when the store has none yet. Identity discovered
// here is persisted by SearchTrack, so later operations on the same track
// skip the search.
//
// A URL without an id is enough only when a bridge is configured: the bridge
// operates on the page URL and artist/title, while the request backend needs
// the id.
func (o *Orchestrator) resolveRef(ctx context.Context, key string) (catalogue.TrackRef, error) {
	ref := o.Ref(key)
	if ref.Resolved() {
		return ref, nil
	}
	if ref.URL != "" && o.bridge != nil {
		return ref, nil
	}

	result, err := o.SearchTrack(ctx, ref.Artist, ref.Title)
	if err != nil {
		return ref, err
	}

	ref.RemoteID = result.RemoteID
	ref.URL = result.URL
	return ref, nil
}

// EnsureFavorited brings the track's remote entry into the favorited state.
// It returns whether a mutating call was issued: false means the entry was
// already favorited and nothing was toggled.
func (o *Orchestrator) EnsureFavorited(ctx context.Context, key string) (bool, error) {
	return o.ensure(ctx, key, true)
}

// EnsureUnfavorited brings the track's remote entry out of the favorited
// state, toggling only when it is currently favorited.
func (o *Orchestrator) EnsureUnfavorited(ctx context.Context, key string) (bool, error) {
	return o.ensure(ctx, key, false)
}

func (o *Orchestrator) ensure(ctx context.Context, key string, want bool) (bool, error) {
	ref, err := o.resolveRef(ctx, key)
	if err != nil {
		return false, err
	}

	backend, err := o.backendFor(ref)
	if err != nil {
		return false, err
	}

	var current bool
	err = o.withRetry(ctx, func() error {
		var readErr error
		current, readErr = backend.ReadFavoriteState(ctx, ref)
		return readErr
	})
	if err != nil {
		return false, err
	}

	if current == want {
		if err := o.recordStarState(key, ref, want, false); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := o.withRetry(ctx, func() error { return backend.ToggleFavorite(ctx, ref) }); err != nil {
		return false, err
	}

	var verified bool
	err = o.withRetry(ctx, func() error {
		var readErr error
		verified, readErr = backend.ReadFavoriteState(ctx, ref)
		return readErr
	})
	if err != nil {
		return true, err
	}
	if verified != want {
		return true, fmt.Errorf("%w: toggle did not take effect for %s", shared.ErrTransient, key)
	}

	if err := o.recordStarState(key, ref, want, true); err != nil {
		return true, err
	}

	o.logger.Info("favorite state changed", "key", key, "starred", want, "backend", backend.Name())
	return true, nil
}

// recordStarState persists the confirmed starred state. Mutations get an
// outcome log entry; confirmations of an existing state only update the map.
func (o *Orchestrator) recordStarState(key string, ref catalogue.TrackRef, starred, mutated bool) error {
	return o.store.Mutate(func(s *state.State) {
		s.Starred[key] = starred
		if ref.RemoteID != "" {
			s.RemoteIDs[key] = ref.RemoteID
		}
		if mutated {
			action := state.ActionStarred
			if !starred {
				action = state.ActionUnstarred
			}
			s.AppendOutcome(state.Outcome{
				Timestamp: time.Now(),
				Key:       key,
				Action:    action,
				URL:       ref.URL,
			})
		}
	})
}
