package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports the reachability of each backing store. Any failing check
// turns the response into a 503.
type Health struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealth(checks map[string]Pinger) *Health {
	return &Health{checks: checks, timeout: 3 * time.Second}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	code := http.StatusOK
	services := map[string]string{}
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			services[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		services[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	response := map[string]interface{}{
		"status":   status,
		"message":  "ShopWave API",
		"services": services,
	}

	_ = json.NewEncoder(w).Encode(response)
}
