package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/shared"
	"golang.org/x/time/rate"
)

// RequestBackend drives the catalogue site directly over HTTP with saved
// session cookies. It is the fast path: no browser, but it can only operate
// on tracks whose catalogue entry is already resolved.
type RequestBackend struct {
	baseURL    string
	session    *shared.Session
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewRequestBackend creates a request backend for the given site and session.
// rateLimit is in requests per second; zero or negative falls back to 2/s.
func NewRequestBackend(baseURL string, session *shared.Session, rateLimit float64, logger *log.Logger) *RequestBackend {
	if rateLimit <= 0 {
		rateLimit = 2.0
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &RequestBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Redirects carry the session-expired and premium-gate signals;
			// they must surface instead of being followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		logger:  logger,
	}
}

// Name returns the backend name.
func (b *RequestBackend) Name() string { return "request" }

// RequiresResolvedID reports that this backend needs a resolved remote id.
func (b *RequestBackend) RequiresResolvedID() bool { return true }

// do issues one rate-limited request with session credentials attached and
// maps redirect signals to the error taxonomy.
func (b *RequestBackend) do(ctx context.Context, method, path string, body string) (*http.Response, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCancelled, err)
	}

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if b.session != nil {
		req.Header.Set("Cookie", b.session.Cookie)
		if b.session.UserAgent != "" {
			req.Header.Set("User-Agent", b.session.UserAgent)
		}
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		switch {
		case strings.Contains(location, "login"):
			return nil, shared.ErrSessionExpired
		case strings.Contains(location, "premium"):
			return nil, shared.ErrPremiumRequired
		default:
			return nil, fmt.Errorf("%w: unexpected redirect to %s", shared.ErrTransient, location)
		}
	}

	if resp.StatusCode >= 500 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: catalogue returned status %d", shared.ErrTransient, resp.StatusCode)
	}

	return resp, nil
}

// getDocument fetches a page and parses it.
func (b *RequestBackend) getDocument(ctx context.Context, path string) (*goquery.Document, error) {
	resp, err := b.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalogue returned status %d", shared.ErrTransient, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse page: %v", shared.ErrTransient, err)
	}

	return doc, nil
}

// Search queries the site's search page and extracts the result entries.
func (b *RequestBackend) Search(ctx context.Context, query string) ([]Candidate, error) {
	doc, err := b.getDocument(ctx, "/search?query="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	return parseTrackItems(doc), nil
}

// ReadFavoriteState loads the track page and inspects the favorite button.
func (b *RequestBackend) ReadFavoriteState(ctx context.Context, ref TrackRef) (bool, error) {
	if ref.RemoteID == "" {
		return false, fmt.Errorf("%w: request backend needs a resolved remote id for %s", shared.ErrInvalidArgument, ref.Key)
	}

	doc, err := b.getDocument(ctx, "/track/"+url.PathEscape(ref.RemoteID))
	if err != nil {
		return false, err
	}

	button := doc.Find("button.favorite").First()
	if button.Length() == 0 {
		return false, fmt.Errorf("%w: track page for %s has no favorite button", shared.ErrTransient, ref.RemoteID)
	}

	return button.HasClass("active"), nil
}

// ToggleFavorite flips the favorite state of the track.
func (b *RequestBackend) ToggleFavorite(ctx context.Context, ref TrackRef) error {
	if ref.RemoteID == "" {
		return fmt.Errorf("%w: request backend needs a resolved remote id for %s", shared.ErrInvalidArgument, ref.Key)
	}

	resp, err := b.do(ctx, http.MethodPost, "/track/"+url.PathEscape(ref.RemoteID)+"/favorite", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: favorite toggle returned status %d", shared.ErrTransient, resp.StatusCode)
	}

	var result struct {
		Favorited bool `json:"favorited"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode toggle response: %v", shared.ErrTransient, err)
	}

	b.logger.Debug("favorite toggled", "id", ref.RemoteID, "favorited", result.Favorited)
	return nil
}

// parseTrackItems extracts track entries shared by the search and favorites
// pages: div.track-item nodes with a data-track-id, a.track-name link and
// span.track-artist label.
func parseTrackItems(doc *goquery.Document) []Candidate {
	var candidates []Candidate

	doc.Find("div.track-item").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.track-name").First()
		href, _ := link.Attr("href")
		id, _ := sel.Attr("data-track-id")

		c := Candidate{
			Artist:   strings.TrimSpace(sel.Find("span.track-artist").Text()),
			Title:    strings.TrimSpace(link.Text()),
			URL:      href,
			RemoteID: id,
		}
		if c.Title == "" && c.Artist == "" {
			return
		}
		candidates = append(candidates, c)
	})

	return candidates
}
