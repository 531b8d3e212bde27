// Package server exposes the classification pipeline over HTTP. It is thin
// glue: all decision logic lives in the internal pipeline packages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/triage-ai/triage/internal/catalog"
	"github.com/triage-ai/triage/internal/compose"
	"github.com/triage-ai/triage/internal/normalize"
	"github.com/triage-ai/triage/internal/triage"
)

// Server wraps the HTTP components for the triage service.
type Server struct {
	mux         *http.ServeMux
	engine      *triage.Engine
	store       *catalog.Store
	catalogPath string
	logger      *zap.Logger
	metrics     *Metrics
}

// Options configures a Server.
type Options struct {
	Engine      *triage.Engine
	Store       *catalog.Store
	CatalogPath string // enables POST /v1/catalog/reload when set
	Logger      *zap.Logger
	Metrics     *Metrics
}

// New builds a server and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		mux:         http.NewServeMux(),
		engine:      opts.Engine,
		store:       opts.Store,
		catalogPath: opts.CatalogPath,
		logger:      logger,
		metrics:     metrics,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/classify", s.handleClassify)
	s.mux.HandleFunc("/v1/catalog", s.handleCatalog)
	s.mux.HandleFunc("/v1/catalog/reload", s.handleCatalogReload)
	s.mux.Handle("/metrics", metrics.Handler())

	return s
}

// Handler returns the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully. It returns nil on a clean shutdown, so the caller can
// tear down the audit emitter only after the last in-flight request has
// been classified and audited.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("triage server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("triage server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

type classifyResponse struct {
	RequestID string          `json:"request_id"`
	Result    triage.Result   `json:"result"`
	Response  compose.Payload `json:"response"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in triage.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json"})
		return
	}

	outcome, err := s.engine.Classify(r.Context(), in)
	if err != nil {
		if errors.Is(err, normalize.ErrInvalidInput) {
			// The caller should prompt for corrected input.
			s.metrics.inputErrors.Inc()
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:  "invalid_input",
				Detail: err.Error(),
			})
			return
		}
		s.logger.Error("classification failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	s.metrics.classifications.WithLabelValues(string(outcome.Result.Level)).Inc()
	if len(outcome.Warnings) > 0 {
		s.metrics.sanitizerCorrections.Add(float64(len(outcome.Warnings)))
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		RequestID: outcome.RequestID,
		Result:    outcome.Result,
		Response:  outcome.Response,
	})
}

type catalogStatus struct {
	Version string `json:"version"`
	Rules   int    `json:"rules"`
}

// handleCatalog reports the active catalog version and size. Rule bodies are
// not exposed.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snapshot := s.store.Snapshot()
	writeJSON(w, http.StatusOK, catalogStatus{
		Version: snapshot.Version,
		Rules:   len(snapshot.Rules),
	})
}

func (s *Server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.catalogPath == "" {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no_catalog_file"})
		return
	}

	c, err := catalog.Load(s.catalogPath)
	if err != nil {
		// Keep serving the previous version; a partially valid catalog is
		// never activated.
		s.logger.Error("catalog reload rejected",
			zap.String("path", s.catalogPath),
			zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "catalog_rejected",
			Detail: err.Error(),
		})
		return
	}

	s.store.Swap(c)
	s.metrics.IncCatalogReload()
	s.logger.Info("catalog reloaded",
		zap.String("version", c.Version),
		zap.Int("rules", len(c.Rules)))
	writeJSON(w, http.StatusOK, catalogStatus{Version: c.Version, Rules: len(c.Rules)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
