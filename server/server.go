// Package server exposes the analysis pipeline and stored results over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/orchestrator"
	"github.com/maastricht-university/transcript-analyzer/report"
	"github.com/maastricht-university/transcript-analyzer/store"
)

const maxBodyBytes = 16 << 20

// Analyzer runs one analysis.
type Analyzer interface {
	Run(ctx context.Context, tr *analysis.Transcript) *orchestrator.Response
}

type Server struct {
	analyzer Analyzer
	store    store.Store
	log      logrus.FieldLogger
	router   chi.Router
	port     int
}

func NewServer(a Analyzer, s store.Store, port int, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	srv := &Server{analyzer: a, store: s, log: log, port: port}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", srv.handleHealth)
		r.Post("/analyze", srv.handleAnalyze)
		r.Get("/analyses", srv.handleListAnalyses)
		r.Get("/analyses/{id}", srv.handleGetAnalysis)
		r.Get("/analyses/{id}/report", srv.handleGetReport)
	})

	srv.router = r
	return srv
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	hs := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", hs.Addr).Info("starting HTTP API")
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "transcript-analyzer",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var tr analysis.Transcript
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&tr); err != nil {
		writeJSON(w, http.StatusBadRequest, &orchestrator.Response{
			Success:   false,
			Error:     "invalid transcript body: " + err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return
	}

	resp := s.analyzer.Run(r.Context(), &tr)
	if !resp.Success {
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}
	if err := s.store.Save(r.Context(), resp.Result); err != nil {
		s.log.WithFields(logrus.Fields{"id": resp.ID, "error": err}).Error("save analysis failed")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("list analyses failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		list = []*analysis.AnalysisResult{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*analysis.AnalysisResult, bool) {
	id := chi.URLParam(r, "id")
	res, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return nil, false
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"id": id, "error": err}).Error("get analysis failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	return res, true
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format := report.FormatMarkdown
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		format = f
	}
	body, err := report.Render(format, res)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
