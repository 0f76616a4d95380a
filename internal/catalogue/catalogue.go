// package catalogue defines the contract for talking to the remote catalogue
// site and its two implementations: a lightweight request backend driving the
// site with saved session cookies, and a bridge backend driving a browser
// automation service.
package catalogue

import (
	"context"
)

// TrackRef identifies one track for remote operations. RemoteID and URL are
// filled in once the catalogue entry has been resolved; the request backend
// cannot operate without them.
type TrackRef struct {
	Key      string
	Artist   string
	Title    string
	RemoteID string
	URL      string
}

// Resolved reports whether the catalogue id for this track is known. A bare
// URL is not enough: the request backend operates on the id, so backend
// selection keys on it.
func (t TrackRef) Resolved() bool {
	return t.RemoteID != ""
}

// Candidate is one search result from the catalogue.
type Candidate struct {
	Artist   string
	Title    string
	URL      string
	RemoteID string
}

// Backend defines the operation set both execution paths satisfy.
//
// Implementations map a login redirect to [shared.ErrSessionExpired], a
// premium gate to [shared.ErrPremiumRequired], and transport failures to
// [shared.ErrTransient]; callers never inspect transport details.
type Backend interface {
	// Name returns the backend name for logging.
	Name() string

	// RequiresResolvedID reports whether operations need TrackRef.RemoteID.
	RequiresResolvedID() bool

	// Search returns raw candidates for one query. It never mutates
	// favorite state. An empty result is not an error.
	Search(ctx context.Context, query string) ([]Candidate, error)

	// ReadFavoriteState reports whether the track is currently favorited.
	ReadFavoriteState(ctx context.Context, ref TrackRef) (bool, error)

	// ToggleFavorite flips the favorite state. The catalogue exposes only a
	// toggle, never a set operation; callers must read state first.
	ToggleFavorite(ctx context.Context, ref TrackRef) error
}
