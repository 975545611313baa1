// Package api exposes the daemon's HTTP surface. All summary endpoints are
// total: a failed upstream fetch degrades to stale or placeholder data and
// still answers 200.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cursorwatch/cursorwatch/pkg/store"
	"github.com/cursorwatch/cursorwatch/pkg/usage"
)

// Interfaces for dependencies to enable mocking

type UsageService interface {
	Refresh(ctx context.Context, force bool) usage.Result
	ClearCache()
	TestConnectivity(ctx context.Context) bool
}

type HistoryStore interface {
	RecentFetches(ctx context.Context, limit int) ([]*store.FetchRecord, error)
}

// Server encapsulates the HTTP API server.
type Server struct {
	service UsageService
	history HistoryStore // may be nil
	server  *http.Server
	logger  zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(service UsageService, history HistoryStore, addr string, logger zerolog.Logger) *Server {
	s := &Server{
		service: service,
		history: history,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/summary", s.handleSummary)
	mux.HandleFunc("/v1/refresh", s.handleRefresh)
	mux.HandleFunc("/v1/cache", s.handleCache)
	mux.HandleFunc("/v1/connectivity", s.handleConnectivity)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the configured handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("api server listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	force := r.URL.Query().Get("refresh") == "true"
	res := s.service.Refresh(r.Context(), force)
	writeJSON(w, http.StatusOK, summaryResponse(res))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res := s.service.Refresh(r.Context(), true)
	writeJSON(w, http.StatusOK, summaryResponse(res))
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.service.ClearCache()
	s.logger.Info().Msg("cache cleared via api")
	writeJSON(w, http.StatusOK, StatusResponse{Status: "cleared"})
}

func (s *Server) handleConnectivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ok := s.service.TestConnectivity(r.Context())
	writeJSON(w, http.StatusOK, ConnectivityResponse{OK: ok})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		http.Error(w, "history not enabled", http.StatusNotFound)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	records, err := s.history.RecentFetches(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("history query failed")
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*store.FetchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
