package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	checker healthChecker
	now     func() time.Time
}

// NewHealthHandler reports liveness. checker may be nil when no database is in use.
func NewHealthHandler(checker healthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, now: time.Now}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"ok":   true,
		"time": h.now().UTC().Format(time.RFC3339),
	}

	if h.checker != nil {
		if err := h.checker.Health(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			body["ok"] = false
			writeSuccess(w, http.StatusServiceUnavailable, body)
			return
		}
	}

	writeSuccess(w, http.StatusOK, body)
}
