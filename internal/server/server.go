// Package server is the HTTP front end: ask and document-indexing
// endpoints plus health and prometheus metrics.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ragflow/internal/corpus"
	"ragflow/internal/embed"
	"ragflow/internal/index"
	"ragflow/internal/logging"
	"ragflow/pkg/pipeline"
)

// Server routes HTTP requests into the pipeline.
type Server struct {
	executor *pipeline.Executor
	embedder embed.Embedder
	index    index.VectorIndex
	registry *prometheus.Registry
	logger   *slog.Logger
	router   *mux.Router
}

// New builds the server and its routes. The registry carries the pipeline
// collectors and is served on /metrics.
func New(exec *pipeline.Executor, e embed.Embedder, idx index.VectorIndex, reg *prometheus.Registry) *Server {
	s := &Server{
		executor: exec,
		embedder: e,
		index:    idx,
		registry: reg,
		logger:   logging.Component("server"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/v1/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/v1/documents", s.handleDocuments).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the root http.Handler for mounting or testing.
func (s *Server) Handler() http.Handler { return s.router }

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Outcome string   `json:"outcome"`
	Answer  string   `json:"answer,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Stages  []string `json:"stages"`
}

type documentsRequest struct {
	Documents []struct {
		ID      string `json:"id"`
		Source  string `json:"source"`
		Content string `json:"content"`
	} `json:"documents"`
}

type documentsResponse struct {
	Indexed int `json:"indexed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("question is required"))
		return
	}

	res, err := s.executor.Run(r.Context(), question)
	if err != nil {
		var serr *pipeline.StageError
		if errors.As(err, &serr) {
			s.logger.Error("run failed", "stage", serr.Stage, "error", serr.Err)
		} else {
			s.logger.Error("run failed", "error", err)
		}
		s.writeError(w, http.StatusBadGateway, errors.New("pipeline failure"))
		return
	}

	resp := askResponse{
		Outcome: string(res.Outcome),
		Answer:  res.Answer,
		Reason:  res.Reason,
	}
	for _, entry := range res.Context.Trace() {
		resp.Stages = append(resp.Stages, entry.Stage)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if len(req.Documents) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("documents is required"))
		return
	}

	docs := make([]pipeline.Document, 0, len(req.Documents))
	for i, d := range req.Documents {
		if strings.TrimSpace(d.Content) == "" {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("document %d has no content", i))
			return
		}
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("http-doc-%d", i)
		}
		meta := map[string]string{}
		if d.Source != "" {
			meta["source"] = d.Source
		}
		docs = append(docs, pipeline.Document{ID: id, Content: d.Content, Metadata: meta})
	}

	if err := corpus.Ingest(r.Context(), s.embedder, s.index, docs); err != nil {
		s.logger.Error("ingest failed", "error", err)
		s.writeError(w, http.StatusBadGateway, errors.New("indexing failure"))
		return
	}
	s.logger.Info("documents indexed", "count", len(docs))
	s.writeJSON(w, http.StatusOK, documentsResponse{Indexed: len(docs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
