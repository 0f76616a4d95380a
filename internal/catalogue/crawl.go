package catalogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/shared"
)

// CrawlEntry is one track found on the favorites listing.
type CrawlEntry struct {
	Artist   string
	Title    string
	URL      string
	RemoteID string
	AddedAt  time.Time
}

// Paginator walks the favorites listing page by page, newest first, stopping
// at the configured age bound. Only the request backend can crawl; the
// listing is not exposed through the bridge driver.
type Paginator struct {
	backend *RequestBackend
	months  int
	logger  *log.Logger
}

// NewPaginator creates a paginator over the given backend. months bounds how
// far back the crawl reaches; zero or negative means no bound.
func NewPaginator(backend *RequestBackend, months int, logger *log.Logger) *Paginator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Paginator{backend: backend, months: months, logger: logger}
}

// Crawl fetches favorites pages until the listing ends, an entry falls
// outside the age bound, or ctx is cancelled.
//
// A session failure on the first page aborts the crawl with
// [shared.ErrSessionExpired] so an expired login is never mistaken for an
// empty favorites list.
func (p *Paginator) Crawl(ctx context.Context) ([]CrawlEntry, error) {
	var cutoff time.Time
	if p.months > 0 {
		cutoff = time.Now().AddDate(0, -p.months, 0)
	}

	var entries []CrawlEntry
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return entries, fmt.Errorf("%w: %v", shared.ErrCancelled, err)
		}

		pageEntries, hasNext, err := p.fetchPage(ctx, page)
		if err != nil {
			if errors.Is(err, shared.ErrSessionExpired) {
				return nil, err
			}
			return entries, fmt.Errorf("favorites page %d: %w", page, err)
		}

		p.logger.Debug("crawled favorites page", "page", page, "entries", len(pageEntries))

		for _, e := range pageEntries {
			if !cutoff.IsZero() && !e.AddedAt.IsZero() && e.AddedAt.Before(cutoff) {
				return entries, nil
			}
			entries = append(entries, e)
		}

		if !hasNext {
			return entries, nil
		}
	}
}

// fetchPage loads one favorites page and reports whether another follows.
func (p *Paginator) fetchPage(ctx context.Context, page int) ([]CrawlEntry, bool, error) {
	doc, err := p.backend.getDocument(ctx, fmt.Sprintf("/favorites?page=%d", page))
	if err != nil {
		return nil, false, err
	}

	var entries []CrawlEntry
	doc.Find("div.track-item").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.track-name").First()
		href, _ := link.Attr("href")
		id, _ := sel.Attr("data-track-id")

		entry := CrawlEntry{
			Artist:   strings.TrimSpace(sel.Find("span.track-artist").Text()),
			Title:    strings.TrimSpace(link.Text()),
			URL:      href,
			RemoteID: id,
		}
		if entry.Artist == "" && entry.Title == "" {
			return
		}

		if stamp, ok := sel.Find("time.added").First().Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, stamp); err == nil {
				entry.AddedAt = t
			}
		}

		entries = append(entries, entry)
	})

	hasNext := doc.Find("a.next").Length() > 0
	return entries, hasNext, nil
}
