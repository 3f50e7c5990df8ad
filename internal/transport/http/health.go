package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type checkResult struct {
	Status string `json:"status"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]checkResult, len(h.Checks))
	status := http.StatusOK

	for name, c := range h.Checks {
		if err := c.Check(ctx); err != nil {
			h.Logger.Error("health check failed", zap.String("name", name), zap.Error(err))
			results[name] = checkResult{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = checkResult{Status: "ok"}
	}

	writeJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": results})
}
