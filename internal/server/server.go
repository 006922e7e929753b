// Package server exposes persisted trend results over a read-only REST
// API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/oceantrend/internal/storage"
)

// Server serves analysis results from a TrendStore.
type Server struct {
	store  *storage.TrendStore
	logger *zap.SugaredLogger
	http   *http.Server
}

// New builds a server listening on addr.
func New(addr string, store *storage.TrendStore, logger *zap.SugaredLogger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/runs", s.handleRuns).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/runs/{id}/trends", s.handleRunTrends).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/trends/{station}", s.handleStationTrends).Methods(http.MethodGet)
	router.Use(s.logRequests)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving the API until Shutdown or a listener
// failure.
func (s *Server) ListenAndServe() error {
	s.logger.Infof("results API listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugw("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		s.logger.Errorf("listing runs: %v", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunTrends(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	trends, err := s.store.TrendsForRun(id)
	if err != nil {
		s.logger.Errorf("trends for run %s: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if len(trends) == 0 {
		s.writeError(w, http.StatusNotFound, "no trends for run "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handleStationTrends(w http.ResponseWriter, r *http.Request) {
	station := mux.Vars(r)["station"]
	trends, err := s.store.TrendsForStation(station)
	if err != nil {
		s.logger.Errorf("trends for station %s: %v", station, err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if len(trends) == 0 {
		s.writeError(w, http.StatusNotFound, "no trends for station "+station)
		return
	}
	s.writeJSON(w, http.StatusOK, trends)
}
