// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/mkraev/starsync/internal/catalogue"
)

// MockBackend is a test double for [catalogue.Backend]. Favorite state lives
// in an in-memory map keyed by remote id; every call is counted so tests can
// assert on idempotence.
type MockBackend struct {
	mu sync.Mutex

	BackendName string
	NeedsID     bool

	SearchResults map[string][]catalogue.Candidate
	SearchErr     error
	Favorited     map[string]bool
	ReadErr       error
	ToggleErr     error

	SearchCalls []string
	ReadCalls   int
	ToggleCalls int
}

// NewMockBackend creates a mock with empty favorite state.
func NewMockBackend(name string) *MockBackend {
	return &MockBackend{
		BackendName:   name,
		SearchResults: map[string][]catalogue.Candidate{},
		Favorited:     map[string]bool{},
	}
}

func (m *MockBackend) Name() string { return m.BackendName }

func (m *MockBackend) RequiresResolvedID() bool { return m.NeedsID }

func (m *MockBackend) Search(ctx context.Context, query string) ([]catalogue.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls = append(m.SearchCalls, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults[query], nil
}

func (m *MockBackend) ReadFavoriteState(ctx context.Context, ref catalogue.TrackRef) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++
	if m.ReadErr != nil {
		return false, m.ReadErr
	}
	return m.Favorited[m.refID(ref)], nil
}

func (m *MockBackend) ToggleFavorite(ctx context.Context, ref catalogue.TrackRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToggleCalls++
	if m.ToggleErr != nil {
		return m.ToggleErr
	}
	id := m.refID(ref)
	m.Favorited[id] = !m.Favorited[id]
	return nil
}

// SetFavorited seeds the remote favorite state for a track.
func (m *MockBackend) SetFavorited(id string, favorited bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Favorited[id] = favorited
}

// IsFavorited reads the remote favorite state directly, bypassing counters.
func (m *MockBackend) IsFavorited(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Favorited[id]
}

func (m *MockBackend) refID(ref catalogue.TrackRef) string {
	if ref.RemoteID != "" {
		return ref.RemoteID
	}
	return ref.Key
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
