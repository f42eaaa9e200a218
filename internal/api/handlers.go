package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/diagstack/hbase-diag/internal/models"
	"github.com/diagstack/hbase-diag/internal/utils"
)

// Service is the analysis surface the handlers dispatch to.
type Service interface {
	AnalyzeLogs(ctx context.Context, req models.LogAnalysisRequest) (models.LogReport, error)
	AnalyzeMetrics(ctx context.Context, req models.MetricsAnalysisRequest) (models.MetricsReport, error)
}

// Handler routes the JSON analysis API.
type Handler struct {
	logger            *slog.Logger
	service           Service
	defaultLogDir     string
	defaultMetricsDir string
}

// NewHandler builds the HTTP routing for the analysis endpoints. The default
// directories fill requests that omit log_dir or metrics_dir.
func NewHandler(logger *slog.Logger, service Service, defaultLogDir, defaultMetricsDir string) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:            logger,
		service:           service,
		defaultLogDir:     defaultLogDir,
		defaultMetricsDir: defaultMetricsDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/v1/analyze/logs", h.handleAnalyzeLogs)
	mux.HandleFunc("/api/v1/analyze/metrics", h.handleAnalyzeMetrics)
	return h.logRequests(mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAnalyzeLogs(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}

	var req models.LogAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LogDir == "" {
		req.LogDir = h.defaultLogDir
	}

	report, err := h.service.AnalyzeLogs(r.Context(), req)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, report)
}

func (h *Handler) handleAnalyzeMetrics(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}

	var req models.MetricsAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MetricsDir == "" {
		req.MetricsDir = h.defaultMetricsDir
	}

	report, err := h.service.AnalyzeMetrics(r.Context(), req)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, report)
}

// writeAnalysisError maps pipeline failures onto status codes: malformed
// caller input is a 400, anything else a 500.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, utils.ErrInvalidTimestamp) {
		writeError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("analysis failed", slog.Any("error", err))
	writeError(h.logger, w, http.StatusInternalServerError, "analysis failed")
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Debug("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rw.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response", slog.Any("error", err))
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
