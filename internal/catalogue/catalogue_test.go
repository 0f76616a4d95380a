package catalogue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkraev/starsync/internal/shared"
)

func testSession() *shared.Session {
	return &shared.Session{Cookie: "sessionid=abc123", UserAgent: "test-agent"}
}

func trackItemHTML(id, artist, title, url string) string {
	return fmt.Sprintf(
		`<div class="track-item" data-track-id="%s"><a class="track-name" href="%s">%s</a><span class="track-artist">%s</span></div>`,
		id, url, title, artist)
}

func TestRequestSearch(t *testing.T) {
	var gotCookie, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, "<html><body>",
			trackItemHTML("t1", "Artist", "Song", "/track/t1"),
			trackItemHTML("t2", "Artist", "Song (Live)", "/track/t2"),
			"</body></html>")
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	candidates, err := backend.Search(context.Background(), "Artist Song")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotCookie != "sessionid=abc123" {
		t.Errorf("cookie header = %q", gotCookie)
	}
	if gotQuery != "Artist Song" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(candidates) != 2 {
		t.Fatalf("Search = %d candidates, want 2", len(candidates))
	}
	if candidates[0].RemoteID != "t1" || candidates[0].Title != "Song" || candidates[0].Artist != "Artist" {
		t.Errorf("first candidate = %+v", candidates[0])
	}
}

func TestRequestSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login?next=/search", http.StatusFound)
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	_, err := backend.Search(context.Background(), "anything")
	if !errors.Is(err, shared.ErrSessionExpired) {
		t.Errorf("Search after login redirect = %v, want ErrSessionExpired", err)
	}
}

func TestRequestPremiumRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/premium/upgrade", http.StatusFound)
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	err := backend.ToggleFavorite(context.Background(), TrackRef{Key: "A - B", RemoteID: "t1"})
	if !errors.Is(err, shared.ErrPremiumRequired) {
		t.Errorf("ToggleFavorite behind premium gate = %v, want ErrPremiumRequired", err)
	}
}

func TestRequestServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	_, err := backend.Search(context.Background(), "anything")
	if !errors.Is(err, shared.ErrTransient) {
		t.Errorf("Search on 502 = %v, want ErrTransient", err)
	}
}

func TestRequestReadFavoriteState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/track/starred":
			fmt.Fprint(w, `<html><button class="favorite active">Favorited</button></html>`)
		case "/track/plain":
			fmt.Fprint(w, `<html><button class="favorite">Favorite</button></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)

	on, err := backend.ReadFavoriteState(context.Background(), TrackRef{Key: "A - B", RemoteID: "starred"})
	if err != nil || !on {
		t.Errorf("ReadFavoriteState(starred) = %v, %v; want true, nil", on, err)
	}

	off, err := backend.ReadFavoriteState(context.Background(), TrackRef{Key: "C - D", RemoteID: "plain"})
	if err != nil || off {
		t.Errorf("ReadFavoriteState(plain) = %v, %v; want false, nil", off, err)
	}
}

func TestRequestNeedsResolvedID(t *testing.T) {
	backend := NewRequestBackend("http://unused.invalid", testSession(), 1000, nil)

	if _, err := backend.ReadFavoriteState(context.Background(), TrackRef{Key: "A - B"}); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("ReadFavoriteState without id = %v, want ErrInvalidArgument", err)
	}
	if err := backend.ToggleFavorite(context.Background(), TrackRef{Key: "A - B"}); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("ToggleFavorite without id = %v, want ErrInvalidArgument", err)
	}
}

func TestBridgeSearchAndToggle(t *testing.T) {
	var toggled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprint(w, `{"results":[{"artist":"Artist","title":"Song","url":"/track/t1","id":"t1"}]}`)
		case "/favorite/state":
			fmt.Fprint(w, `{"favorited":false}`)
		case "/favorite/toggle":
			toggled = true
			fmt.Fprint(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	backend := NewBridgeBackend(srv.URL, nil)
	if backend.RequiresResolvedID() {
		t.Error("bridge backend should not require a resolved id")
	}

	candidates, err := backend.Search(context.Background(), "Artist Song")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 || candidates[0].RemoteID != "t1" {
		t.Fatalf("Search = %+v", candidates)
	}

	on, err := backend.ReadFavoriteState(context.Background(), TrackRef{Key: "A - B", Artist: "A", Title: "B"})
	if err != nil || on {
		t.Errorf("ReadFavoriteState = %v, %v; want false, nil", on, err)
	}

	if err := backend.ToggleFavorite(context.Background(), TrackRef{Key: "A - B"}); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !toggled {
		t.Error("toggle endpoint never hit")
	}
}

func TestBridgeErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"session expired", "session_expired", shared.ErrSessionExpired},
		{"premium gate", "premium_required", shared.ErrPremiumRequired},
		{"not found", "not_found", shared.ErrTrackNotFound},
		{"unknown code", "browser_crashed", shared.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprintf(w, `{"code":%q,"message":"from driver"}`, tt.code)
			}))
			defer srv.Close()

			backend := NewBridgeBackend(srv.URL, nil)
			err := backend.ToggleFavorite(context.Background(), TrackRef{Key: "A - B"})
			if !errors.Is(err, tt.want) {
				t.Errorf("ToggleFavorite = %v, want %v", err, tt.want)
			}
		})
	}
}

func favoritesPage(entries []string, hasNext bool) string {
	page := "<html><body>"
	for _, e := range entries {
		page += e
	}
	if hasNext {
		page += `<a class="next" href="#">Next</a>`
	}
	return page + "</body></html>"
}

func crawlItemHTML(id, artist, title string, added time.Time) string {
	return fmt.Sprintf(
		`<div class="track-item" data-track-id="%s"><a class="track-name" href="/track/%s">%s</a><span class="track-artist">%s</span><time class="added" datetime="%s"></time></div>`,
		id, id, title, artist, added.Format(time.RFC3339))
}

func TestCrawlWalksAllPages(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, favoritesPage([]string{
				crawlItemHTML("t1", "Artist", "Song", now),
				crawlItemHTML("t2", "Other", "Tune", now.Add(-time.Hour)),
			}, true))
		case "2":
			fmt.Fprint(w, favoritesPage([]string{
				crawlItemHTML("t3", "Third", "Track", now.Add(-2*time.Hour)),
			}, false))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	entries, err := NewPaginator(backend, 0, nil).Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Crawl = %d entries, want 3", len(entries))
	}
	if entries[2].RemoteID != "t3" {
		t.Errorf("last entry = %+v", entries[2])
	}
}

func TestCrawlStopsAtAgeBound(t *testing.T) {
	now := time.Now()
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		fmt.Fprint(w, favoritesPage([]string{
			crawlItemHTML("t1", "Artist", "Song", now),
			crawlItemHTML("t2", "Old", "Favorite", now.AddDate(0, -12, 0)),
		}, true))
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	entries, err := NewPaginator(backend, 6, nil).Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if len(entries) != 1 || entries[0].RemoteID != "t1" {
		t.Fatalf("Crawl = %+v, want only t1", entries)
	}
	if pagesServed != 1 {
		t.Errorf("crawl fetched %d pages after hitting the bound, want 1", pagesServed)
	}
}

func TestCrawlSessionExpiredOnFirstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	defer srv.Close()

	backend := NewRequestBackend(srv.URL, testSession(), 1000, nil)
	entries, err := NewPaginator(backend, 0, nil).Crawl(context.Background())
	if !errors.Is(err, shared.ErrSessionExpired) {
		t.Fatalf("Crawl = %v, want ErrSessionExpired", err)
	}
	if entries != nil {
		t.Errorf("expired crawl returned entries: %+v", entries)
	}
}
