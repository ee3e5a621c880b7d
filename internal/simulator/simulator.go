// Package simulator implements the failure-injected validator: an HTTP
// validation endpoint whose behavior is switched at runtime among four
// modes (normal, slow, down, error).
package simulator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

// Injector is the thread-safe failure-mode cell plus the HTTP surface
// built on it.
type Injector struct {
	mu        sync.RWMutex
	mode      domain.FailureMode
	slowDelay time.Duration
	log       *slog.Logger
}

// New creates an injector starting in the given mode. The slow mode
// delays /validate responses by 10 seconds.
func New(initial domain.FailureMode) *Injector {
	if initial == "" {
		initial = domain.ModeNormal
	}
	return &Injector{
		mode:      initial,
		slowDelay: 10 * time.Second,
		log:       slog.Default().With("component", "validator_simulator"),
	}
}

// Mode returns the current failure mode.
func (i *Injector) Mode() domain.FailureMode {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.mode
}

// SetMode swaps the failure mode.
func (i *Injector) SetMode(mode domain.FailureMode) {
	i.mu.Lock()
	i.mode = mode
	i.mu.Unlock()
	i.log.Info("Failure mode changed", "mode", mode)
}

// SetSlowDelay overrides the slow-mode delay, mainly for tests.
func (i *Injector) SetSlowDelay(d time.Duration) {
	i.mu.Lock()
	i.slowDelay = d
	i.mu.Unlock()
}

// Handler returns the validator's HTTP surface.
func (i *Injector) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/validate", i.handleValidate)
	mux.HandleFunc("/set_failure_mode", i.handleSetFailureMode)
	mux.HandleFunc("/health", i.handleHealth)
	return mux
}

func (i *Injector) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	i.mu.RLock()
	mode := i.mode
	delay := i.slowDelay
	i.mu.RUnlock()

	switch mode {
	case domain.ModeDown:
		writeJSON(w, http.StatusServiceUnavailable,
			map[string]string{"error": "Service unavailable"})
		return
	case domain.ModeError:
		writeJSON(w, http.StatusInternalServerError,
			map[string]string{"error": "Validation failed"})
		return
	case domain.ModeSlow:
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	var task domain.ValidationTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": task.OrderID,
		"valid":    true,
		"message":  "Order validated successfully",
	})
}

func (i *Injector) handleSetFailureMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "invalid request body"})
		return
	}

	mode, err := domain.ParseFailureMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": err.Error()})
		return
	}

	i.SetMode(mode)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"mode":   mode,
	})
}

func (i *Injector) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if i.Mode() == domain.ModeDown {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"service":   "validator",
		"mode":      i.Mode(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
