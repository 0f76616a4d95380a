package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/shared"
)

// BridgeBackend talks to a local browser-automation driver over JSON. The
// driver holds a logged-in browser session, so it can search by artist and
// title alone; slower than the request backend but works on unresolved
// tracks.
type BridgeBackend struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewBridgeBackend creates a bridge backend for the driver at baseURL.
func NewBridgeBackend(baseURL string, logger *log.Logger) *BridgeBackend {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &BridgeBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// Browser-driven operations are slow; toggling one favorite can
			// take tens of seconds.
			Timeout: 2 * time.Minute,
		},
		logger: logger,
	}
}

// Name returns the backend name.
func (b *BridgeBackend) Name() string { return "bridge" }

// RequiresResolvedID reports that the bridge can work from artist and title.
func (b *BridgeBackend) RequiresResolvedID() bool { return false }

// bridgeTrack is the track payload the driver accepts.
type bridgeTrack struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	ID     string `json:"id,omitempty"`
}

// bridgeError is the driver's error envelope. Code carries the taxonomy:
// session_expired, premium_required, not_found.
type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// post sends one JSON request to the driver and decodes the response into out.
func (b *BridgeBackend) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode driver request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create driver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: driver unreachable: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var driverErr bridgeError
		if err := json.NewDecoder(resp.Body).Decode(&driverErr); err == nil && driverErr.Code != "" {
			return mapBridgeError(driverErr)
		}
		return fmt.Errorf("%w: driver returned status %d", shared.ErrTransient, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode driver response: %v", shared.ErrTransient, err)
	}
	return nil
}

// mapBridgeError translates the driver's error codes into the shared
// sentinels so callers handle both backends identically.
func mapBridgeError(e bridgeError) error {
	switch e.Code {
	case "session_expired":
		return shared.ErrSessionExpired
	case "premium_required":
		return shared.ErrPremiumRequired
	case "not_found":
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, e.Message)
	default:
		return fmt.Errorf("%w: driver error %s: %s", shared.ErrTransient, e.Code, e.Message)
	}
}

// Health checks whether the driver is up and its browser session is usable.
func (b *BridgeBackend) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create driver request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: driver unreachable: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: driver health returned status %d", shared.ErrTransient, resp.StatusCode)
	}
	return nil
}

// Search asks the driver to run the query in its browser session.
func (b *BridgeBackend) Search(ctx context.Context, query string) ([]Candidate, error) {
	var result struct {
		Results []bridgeTrack `json:"results"`
	}
	payload := map[string]string{"query": query}
	if err := b.post(ctx, "/search", payload, &result); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(result.Results))
	for _, r := range result.Results {
		candidates = append(candidates, Candidate{
			Artist:   r.Artist,
			Title:    r.Title,
			URL:      r.URL,
			RemoteID: r.ID,
		})
	}
	return candidates, nil
}

// ReadFavoriteState asks the driver whether the track is favorited.
func (b *BridgeBackend) ReadFavoriteState(ctx context.Context, ref TrackRef) (bool, error) {
	var result struct {
		Favorited bool `json:"favorited"`
	}
	if err := b.post(ctx, "/favorite/state", refPayload(ref), &result); err != nil {
		return false, err
	}
	return result.Favorited, nil
}

// ToggleFavorite asks the driver to click the favorite control.
func (b *BridgeBackend) ToggleFavorite(ctx context.Context, ref TrackRef) error {
	if err := b.post(ctx, "/favorite/toggle", refPayload(ref), nil); err != nil {
		return err
	}
	b.logger.Debug("favorite toggled via bridge", "key", ref.Key)
	return nil
}

func refPayload(ref TrackRef) bridgeTrack {
	return bridgeTrack{
		Artist: ref.Artist,
		Title:  ref.Title,
		URL:    ref.URL,
		ID:     ref.RemoteID,
	}
}
