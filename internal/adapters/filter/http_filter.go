package filter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/trustbyte/phishguard/internal/core"
	"go.uber.org/zap"
)

// HTTPFilter exposes the analysis service over a small REST API
type HTTPFilter struct {
	service    *core.AnalysisService
	logger     *zap.Logger
	listenAddr string
	server     *http.Server
}

// analyzeRequest is the request body for the analyze endpoint
type analyzeRequest struct {
	From    string `json:"from,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// errorResponse is the JSON shape for error replies
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPFilter creates a new HTTP filter
func NewHTTPFilter(service *core.AnalysisService, logger *zap.Logger, listenAddr string) *HTTPFilter {
	return &HTTPFilter{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Start starts the HTTP server
func (f *HTTPFilter) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/api/v1/analyze/email", f.handleAnalyze)
	r.Get("/healthz", f.handleHealth)

	f.server = &http.Server{
		Addr:         f.listenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	f.logger.Info("HTTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (f *HTTPFilter) Stop() error {
	if f.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return f.server.Shutdown(ctx)
}

// ProcessEmail analyzes an email and returns the report
func (f *HTTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisReport, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// handleAnalyze accepts a subject/body pair and returns the full analysis report
func (f *HTTPFilter) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if req.Subject == "" && req.Body == "" {
		f.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at least one of subject or body must be non-empty"})
		return
	}

	email := &core.Email{
		From:    req.From,
		Subject: req.Subject,
		Body:    req.Body,
	}

	report, err := f.service.AnalyzeEmail(r.Context(), email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		f.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
		return
	}

	f.logger.Debug("Analyzed email over HTTP",
		zap.String("label", report.OverallAssessment.Label),
		zap.Int("confidence", report.OverallAssessment.Confidence))

	f.writeJSON(w, http.StatusOK, report)
}

// handleHealth reports service liveness
func (f *HTTPFilter) handleHealth(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code
func (f *HTTPFilter) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		f.logger.Error("Failed to encode response", zap.Error(err))
	}
}
