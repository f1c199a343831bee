// Package server provides the loopback query API for the evidence engine.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"screenrecall/pkg/config"
	"screenrecall/pkg/query"
	"screenrecall/pkg/security/tls"
	"screenrecall/pkg/telemetry/health"
	"screenrecall/pkg/telemetry/metrics"
)

// Server is the loopback HTTP server exposing the read-only query API
// (spec.md §6). It binds QueryConfig.ListenAddress (default 127.0.0.1:8787)
// as configured; neither this package nor config validation checks that the
// address is a loopback address. Requests are routed only to the in-process
// query orchestrator.
type Server struct {
	config       *config.QueryConfig
	orchestrator *query.Orchestrator
	checker      *health.Checker
	metrics      *metrics.Collector
	metricsCfg   *config.MetricsConfig
	httpServer   *http.Server
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new query API server.
func NewServer(cfg *config.QueryConfig, orchestrator *query.Orchestrator, checker *health.Checker) *Server {
	return &Server{
		config:       cfg,
		orchestrator: orchestrator,
		checker:      checker,
		isRunning:    false,
	}
}

// WithMetrics attaches a metrics collector, mounting its Prometheus handler
// at metricsCfg.Path on the same loopback listener when metricsCfg.Port is 0.
// Must be called before Start.
func (s *Server) WithMetrics(collector *metrics.Collector, metricsCfg *config.MetricsConfig) *Server {
	s.metrics = collector
	s.metricsCfg = metricsCfg
	return s
}

// Start starts the HTTP server and blocks until it exits or ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	tlsConfig, err := s.config.TLS.ToTLSConfig()
	if err != nil {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return fmt.Errorf("failed to build TLS config: %w", err)
	}
	s.httpServer.TLSConfig = tlsConfig

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting query server", "address", s.config.ListenAddress, "tls", tlsConfig != nil)
		var serveErr error
		if tlsConfig != nil {
			serveErr = s.httpServer.ListenAndServeTLS("", "")
		} else {
			serveErr = s.httpServer.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", serveErr)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	slog.Info("query server stopped")
	return shutdownErr
}

// setupRoutes configures the HTTP routes. Only one write-shaped endpoint
// exists (/v1/query), and it is read-only against the evidence store: it
// never triggers capture, extraction, or raw-media access (spec.md §4.8).
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/query", s.handleQuery)

	if s.checker != nil {
		health.HTTPMiddleware(mux, s.checker, "", "", "")
	}

	if s.metrics != nil && s.metricsCfg != nil && s.metricsCfg.Enabled && s.metricsCfg.Port == 0 {
		path := s.metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = recoveryMiddleware(handler)
	return handler
}

type queryRequest struct {
	QueryText string            `json:"query_text"`
	Options   map[string]string `json:"options,omitempty"`
}

type queryResponse struct {
	State         string             `json:"state"`
	Answer        string             `json:"answer,omitempty"`
	Citations     []citationResponse `json:"citations"`
	PluginsInPath []string           `json:"plugins_in_path"`
	QueryHash     string             `json:"query_hash"`
}

type citationResponse struct {
	RecordID      string `json:"record_id"`
	SpanID        string `json:"span_id,omitempty"`
	StableLocator string `json:"stable_locator,omitempty"`
}

// handleQuery implements POST /v1/query. It rejects any request carrying a
// schedule_extract or raw_media_access option (spec.md §6 contract): those
// flags belong to the capture/extract pipeline, not the query path.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, blocked := req.Options["schedule_extract"]; blocked {
		http.Error(w, "schedule_extract is not a query-path option", http.StatusBadRequest)
		return
	}
	if _, blocked := req.Options["raw_media_access"]; blocked {
		http.Error(w, "raw_media_access is not a query-path option", http.StatusBadRequest)
		return
	}

	resp, err := s.orchestrator.Handle(r.Context(), query.Request{
		QueryText: req.QueryText,
		Options:   req.Options,
	})
	if err != nil {
		slog.Error("query handling failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := queryResponse{
		State:         string(resp.State),
		Answer:        resp.Answer,
		Citations:     make([]citationResponse, len(resp.Citations)),
		PluginsInPath: resp.PluginsInPath,
		QueryHash:     resp.QueryHash,
	}
	for i, c := range resp.Citations {
		out.Citations[i] = citationResponse{RecordID: c.RecordID, SpanID: c.SpanID, StableLocator: c.StableLocator}
	}
	if out.PluginsInPath == nil {
		out.PluginsInPath = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("failed to encode query response", "error", err)
	}
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic in query handler", "panic", rec)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for use in tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
