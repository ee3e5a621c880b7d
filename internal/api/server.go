// Package api provides the intake HTTP surface: order creation, order
// listing, liveness and the cached system-health view.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/health"
	"github.com/vietddude/orderpipe/internal/infra/queue"
	"github.com/vietddude/orderpipe/internal/infra/storage"
	"github.com/vietddude/orderpipe/internal/metrics"
)

// Server serves the intake endpoints.
type Server struct {
	repo       storage.OrderRepository
	queue      queue.TaskQueue
	aggregator *health.Aggregator
	server     *http.Server
	log        *slog.Logger
}

// NewServer creates the intake HTTP server.
func NewServer(
	port int,
	repo storage.OrderRepository,
	q queue.TaskQueue,
	aggregator *health.Aggregator,
) *Server {
	mux := http.NewServeMux()
	s := &Server{
		repo:       repo,
		queue:      q,
		aggregator: aggregator,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		log: slog.Default().With("component", "api"),
	}

	mux.HandleFunc("/create_order", s.handleCreateOrder)
	mux.HandleFunc("/get_orders", s.handleGetOrders)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health_status", s.handleHealthStatus)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type createOrderRequest struct {
	OrderID  string `json:"order_id"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// handleCreateOrder writes a PENDING record and enqueues a validation
// task. Intake never blocks on the validation outcome.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "invalid request body"})
		return
	}
	if req.Product == "" {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "product is required"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest,
			map[string]string{"error": "quantity must be a positive integer"})
		return
	}
	if req.OrderID == "" {
		req.OrderID = uuid.NewString()
	}

	order := &domain.Order{
		OrderID:  req.OrderID,
		Product:  req.Product,
		Quantity: req.Quantity,
		Status:   domain.StatusPending,
	}
	if err := s.repo.Create(r.Context(), order); err != nil {
		if errors.Is(err, storage.ErrDuplicateOrder) {
			writeJSON(w, http.StatusConflict,
				map[string]string{"error": "order already exists"})
			return
		}
		s.log.Error("Failed to create order", "order_id", req.OrderID, "error", err)
		writeJSON(w, http.StatusInternalServerError,
			map[string]string{"error": "failed to store order"})
		return
	}

	task := &domain.ValidationTask{
		OrderID:  req.OrderID,
		Product:  req.Product,
		Quantity: req.Quantity,
	}
	if err := s.queue.Enqueue(r.Context(), task); err != nil {
		// The PENDING record survives; an external re-drive can pick it up.
		s.log.Error("Failed to enqueue task", "order_id", req.OrderID, "error", err)
		writeJSON(w, http.StatusInternalServerError,
			map[string]string{"error": "failed to enqueue order for validation"})
		return
	}

	metrics.OrdersCreated.Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Order placed successfully!",
		"order_id": req.OrderID,
	})
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orders, err := s.repo.GetAll(r.Context())
	if err != nil {
		s.log.Error("Failed to list orders", "error", err)
		writeJSON(w, http.StatusInternalServerError,
			map[string]string{"error": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// handleHealth is the per-service liveness check: the service can take
// orders only when both the queue and the store are reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	body := map[string]any{
		"service":   "orderpipe",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if err := s.queue.Health(ctx); err != nil {
		body["status"] = "unavailable"
		body["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	if err := s.repo.Health(ctx); err != nil {
		body["status"] = "unavailable"
		body["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

// handleHealthStatus serves the cached aggregate snapshot. It never
// triggers a poll; a stale cache degrades to "no data".
func (s *Server) handleHealthStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.aggregator.Snapshot()
	if !ok {
		writeJSON(w, http.StatusNotFound,
			map[string]string{"error": "no health data available"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
