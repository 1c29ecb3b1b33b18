// Package api exposes the HTTP interface for the lead-generation service.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/outreachly/leadgen-crawler/internal/job"
	"github.com/outreachly/leadgen-crawler/internal/runner"
)

// Server wires HTTP handlers to the runner and job registry.
type Server struct {
	router   chi.Router
	runner   *runner.Runner
	registry *job.Registry
	logger   *zap.Logger
	apiKey   string
	maxCap   int
}

// NewServer constructs a Server with middleware and routes. apiKey empty
// disables authentication.
func NewServer(run *runner.Runner, registry *job.Registry, maxCap int, apiKey string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:   run,
		registry: registry,
		logger:   logger,
		apiKey:   apiKey,
		maxCap:   maxCap,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	if apiKey != "" {
		r.Use(apiKeyMiddleware(apiKey))
	}

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Post("/", s.submitJob)
		r.Route("/{job_id}", func(r chi.Router) {
			r.Get("/", s.getJob)
			r.Post("/cancel", s.cancelJob)
			r.Get("/events", s.streamEvents)
			r.Get("/result", s.downloadResult)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitRequest struct {
	Niche          string `json:"niche"`
	Cities         string `json:"cities"`
	Cap            int    `json:"cap"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	YourSite       string `json:"your_site"`
	IgnorePrevious bool   `json:"ignore_previous"`
}

const (
	defaultSubject = "Quick question about {company}"
	defaultBody    = "Hi {firstName},\n\nI came across {company} in {city} and wanted to reach out.\n\nBest regards"
)

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Niche = strings.TrimSpace(req.Niche)
	if req.Niche == "" {
		writeError(w, http.StatusBadRequest, "niche is required")
		return
	}
	if req.Cap <= 0 || req.Cap > s.maxCap {
		req.Cap = s.maxCap
	}
	if req.Subject == "" {
		req.Subject = defaultSubject
	}
	if req.Body == "" {
		req.Body = defaultBody
	}

	var cities []string
	for _, city := range strings.Split(req.Cities, ",") {
		if city = strings.TrimSpace(city); city != "" {
			cities = append(cities, city)
		}
	}

	j := s.runner.Start(job.Params{
		Niche:          req.Niche,
		Cities:         cities,
		Cap:            req.Cap,
		Subject:        req.Subject,
		Body:           req.Body,
		YourSite:       req.YourSite,
		IgnorePrevious: req.IgnorePrevious,
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": j.ID.String()})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	stats := j.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":      j.ID.String(),
		"niche":       j.Params.Niche,
		"created_at":  j.CreatedAt.Format(time.RFC3339),
		"done":        j.Done(),
		"cancelled":   j.Cancelled(),
		"stats":       stats,
		"result_file": j.ResultFile(),
	})
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	j.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

func (s *Server) downloadResult(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	path := j.ResultFile()
	if path == "" {
		writeError(w, http.StatusNotFound, "result not available")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads-`+j.ID.String()+`.csv"`)
	http.ServeFile(w, r, path)
}

func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) (*job.Job, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed job id")
		return nil, false
	}
	j, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return j, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
