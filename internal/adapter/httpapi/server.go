// Package httpapi exposes the map-resolution API plus the service's health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/geoff-maddock/arcane-city-geo/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchResolver resolves record batches into marker snapshots and reports
// service readiness.
type BatchResolver interface {
	Resolve(ctx context.Context, records []domain.Record) <-chan pipeline.Snapshot
	CheckReadiness(ctx context.Context) error
}

// CacheClearer drops every cached geocoding result.
type CacheClearer interface {
	ClearCache()
}

// Server exposes the marker API and operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	resolver   BatchResolver
	cache      CacheClearer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with marker, health, readiness, and
// metrics routes.
func NewServer(addr string, resolver BatchResolver, cache CacheClearer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// No write timeout: the marker stream stays open while a
			// batch resolves at roughly one lookup per second.
			IdleTimeout: 60 * time.Second,
		},
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/markers", s.handleMarkers)
	mux.HandleFunc("POST /api/markers/stream", s.handleMarkerStream)
	mux.HandleFunc("POST /api/geocode-cache/clear", s.handleCacheClear)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type resolveRequest struct {
	Records []domain.Record `json:"records"`
}

// handleMarkers resolves a batch synchronously and responds with the final
// snapshot. Clients that want progress use the stream variant.
func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	records, ok := s.decodeRecords(w, r)
	if !ok {
		return
	}

	var last pipeline.Snapshot
	for snap := range s.resolver.Resolve(r.Context(), records) {
		last = snap
	}
	if r.Context().Err() != nil {
		// Client went away; nothing to write.
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// handleMarkerStream resolves a batch and emits one SSE event per snapshot.
// A client disconnect cancels the request context, which stops the
// orchestrator's publishing.
func (s *Server) handleMarkerStream(w http.ResponseWriter, r *http.Request) {
	records, ok := s.decodeRecords(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snap := range s.resolver.Resolve(r.Context(), records) {
		data, err := json.Marshal(snap)
		if err != nil {
			s.logger.Error("marshal snapshot failed", "error", err)
			return
		}
		if _, err := w.Write([]byte("event: snapshot\ndata: " + string(data) + "\n\n")); err != nil {
			// Write failure means the client is gone; the context
			// cancellation will stop the orchestrator.
			return
		}
		flusher.Flush()
	}
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.cache.ClearCache()
	s.logger.Info("geocode cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.resolver.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) decodeRecords(w http.ResponseWriter, r *http.Request) ([]domain.Record, bool) {
	var req resolveRequest
	body := http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	return req.Records, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
