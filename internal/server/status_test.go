package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/tasks"
)

func newTestRouter() *BasicRouter {
	handler := NewStatusHandler(
		func() *reconcile.StatusSnapshot {
			return &reconcile.StatusSnapshot{
				ToDownload: []string{"Artist - Song"},
				URLs:       map[string]string{"Artist - Song": "https://x/1"},
				Starred:    map[string]bool{"Artist - Song": true},
			}
		},
		func() tasks.Progress {
			return tasks.Progress{Job: "search", StateName: "running", Current: 3, Total: 10}
		},
		nil,
	)

	router := NewBasicRouter()
	router.Handler(handler)
	return router
}

func TestStatusEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var snap reconcile.StatusSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.ToDownload) != 1 || snap.URLs["Artist - Song"] != "https://x/1" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestProgressEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var p tasks.Progress
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Job != "search" || p.Current != 3 {
		t.Errorf("progress = %+v", p)
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatusRejectsWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /status = %d, want 405", rec.Code)
	}
}
