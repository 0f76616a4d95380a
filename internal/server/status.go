package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mkraev/starsync/internal/reconcile"
	"github.com/mkraev/starsync/internal/shared"
	"github.com/mkraev/starsync/internal/tasks"
)

// StatusHandler serves the reconciled track snapshot and the job
// controller's progress, read-only. Both providers return copies, so the
// handler is safe to call while a job is running.
type StatusHandler struct {
	status   func() *reconcile.StatusSnapshot
	progress func() tasks.Progress
	logger   *log.Logger
}

// NewStatusHandler creates a handler over the given snapshot providers.
func NewStatusHandler(status func() *reconcile.StatusSnapshot, progress func() tasks.Progress, logger *log.Logger) *StatusHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &StatusHandler{status: status, progress: progress, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *StatusHandler) Routes() []string {
	return []string{"/status", "/progress", "/health"}
}

// ServeHTTP dispatches to the route-specific responders. All routes are
// GET-only; the server never mutates state.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/status":
		h.writeJSON(w, h.status())
	case "/progress":
		h.writeJSON(w, h.progress())
	case "/health":
		h.writeJSON(w, map[string]string{"status": "ok"})
	default:
		http.NotFound(w, r)
	}
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "err", err)
	}
}
