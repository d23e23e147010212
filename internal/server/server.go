/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package server exposes the generator over HTTP so external cron or
// the media server itself can trigger runs and inspect history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/generator"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/history"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/selection"
)

// Server wires the generator and run history behind a chi router.
type Server struct {
	runner     *generator.Runner
	store      *history.Store
	outputPath string
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server. store may be nil; /runs then reports 404.
func New(addr string, runner *generator.Runner, store *history.Store, outputPath string, logger zerolog.Logger) *Server {
	s := &Server{
		runner:     runner,
		store:      store,
		outputPath: outputPath,
		logger:     logger.With().Str("component", "server").Logger(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/healthz", s.handleHealthz)
	router.Handle("/metrics", promhttp.Handler())
	router.Post("/generate", s.handleGenerate)
	router.Get("/runs", s.handleRuns)
	router.Get("/list.txt", s.handleList)

	s.router = router
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Run(r.Context())
	switch {
	case errors.Is(err, selection.ErrNoMatch):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case err != nil:
		s.logger.Error().Err(err).Msg("generation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"run_id":      result.RunID,
			"playlist":    result.Playlist,
			"item_count":  len(result.ItemIDs),
			"duration_ms": result.Duration.Milliseconds(),
		})
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run history disabled"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	runs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query runs")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleList serves the most recently written item list verbatim.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.outputPath)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no list generated yet"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
