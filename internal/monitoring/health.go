package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks the last cycle of every controller
type HealthChecker struct {
	mu         sync.RWMutex
	staleAfter time.Duration
	now        func() time.Time
	cycles     map[string]cycleState
}

type cycleState struct {
	lastRun time.Time
	lastErr string
}

// ControllerHealth is the reported state of one controller
type ControllerHealth struct {
	LastRun time.Time `json:"last_run"`
	Error   string    `json:"error,omitempty"`
	Stale   bool      `json:"stale"`
}

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status      string                      `json:"status"`
	Timestamp   time.Time                   `json:"timestamp"`
	Uptime      string                      `json:"uptime"`
	Controllers map[string]ControllerHealth `json:"controllers"`
}

// NewHealthChecker creates a checker that reports a controller as stale
// once its last cycle is older than staleAfter.
func NewHealthChecker(staleAfter time.Duration) *HealthChecker {
	return &HealthChecker{
		staleAfter: staleAfter,
		now:        time.Now,
		cycles:     make(map[string]cycleState),
	}
}

// Register adds a controller before its first cycle
func (h *HealthChecker) Register(controller string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.cycles[controller]; !ok {
		h.cycles[controller] = cycleState{}
	}
}

// RecordCycle stores the outcome of a controller cycle
func (h *HealthChecker) RecordCycle(controller string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := cycleState{lastRun: h.now()}
	if err != nil {
		state.lastErr = err.Error()
	}
	h.cycles[controller] = state
}

// Status computes the current health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	status := HealthStatus{
		Status:      "healthy",
		Timestamp:   now,
		Uptime:      time.Since(startTime).Round(time.Second).String(),
		Controllers: make(map[string]ControllerHealth, len(h.cycles)),
	}

	for name, c := range h.cycles {
		stale := c.lastRun.IsZero() || now.Sub(c.lastRun) > h.staleAfter
		status.Controllers[name] = ControllerHealth{LastRun: c.lastRun, Error: c.lastErr, Stale: stale}

		switch {
		case c.lastErr != "":
			status.Status = "unhealthy"
		case stale && status.Status == "healthy":
			status.Status = "degraded"
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	switch health.Status {
	case "degraded":
		w.WriteHeader(http.StatusServiceUnavailable)
	case "unhealthy":
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(health)
}
