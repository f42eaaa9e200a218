package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diagstack/hbase-diag/internal/engine"
	"github.com/diagstack/hbase-diag/internal/metrics"
	"github.com/diagstack/hbase-diag/internal/models"
	"github.com/diagstack/hbase-diag/internal/utils"
)

// LogAnalyzer runs a log analysis request to completion.
type LogAnalyzer interface {
	Run(ctx context.Context, req models.LogAnalysisRequest) (models.LogReport, error)
}

// MetricsAnalyzer runs a metrics analysis request to completion.
type MetricsAnalyzer interface {
	Run(ctx context.Context, req models.MetricsAnalysisRequest) (models.MetricsReport, error)
}

// DiagService fronts the two analysis pipelines: it stamps each call with a
// run ID for log correlation, records latency and outcome, and periodically
// logs the observed p95.
type DiagService struct {
	logger    *slog.Logger
	logs      LogAnalyzer
	metrics   MetricsAnalyzer
	latencies *utils.LatencyTracker
}

// NewDiagService constructs the service facade over the two pipelines.
func NewDiagService(logger *slog.Logger, logs LogAnalyzer, metricsPipeline MetricsAnalyzer) *DiagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiagService{
		logger:    logger,
		logs:      logs,
		metrics:   metricsPipeline,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// AnalyzeLogs runs a log analysis call end to end.
func (s *DiagService) AnalyzeLogs(ctx context.Context, req models.LogAnalysisRequest) (models.LogReport, error) {
	runID := uuid.NewString()
	s.logger.Info("log analysis started",
		slog.String("run_id", runID),
		slog.String("log_dir", req.LogDir),
		slog.String("start_time", req.StartTime),
		slog.String("end_time", req.EndTime),
	)

	start := time.Now()
	report, err := s.logs.Run(ctx, req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(metrics.ToolLogs, duration, metrics.OutcomeError)
		s.logger.Error("log analysis failed", slog.String("run_id", runID), slog.Any("error", err))
		return models.LogReport{}, err
	}

	s.observe(metrics.ToolLogs, duration)
	s.logger.Info("log analysis completed",
		slog.String("run_id", runID),
		slog.Int("entries", report.TotalEntries),
		slog.Int("anomalies", len(report.Anomalies)),
		slog.Duration("duration", duration),
	)
	return report, nil
}

// AnalyzeMetrics runs a metrics analysis call end to end.
func (s *DiagService) AnalyzeMetrics(ctx context.Context, req models.MetricsAnalysisRequest) (models.MetricsReport, error) {
	runID := uuid.NewString()
	s.logger.Info("metrics analysis started",
		slog.String("run_id", runID),
		slog.String("metrics_dir", req.MetricsDir),
		slog.String("target_time", req.TargetTime),
		slog.Int("hours_range", req.HoursRange),
	)

	start := time.Now()
	report, err := s.metrics.Run(ctx, req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(metrics.ToolMetrics, duration, metrics.OutcomeError)
		s.logger.Error("metrics analysis failed", slog.String("run_id", runID), slog.Any("error", err))
		return models.MetricsReport{}, err
	}

	s.observe(metrics.ToolMetrics, duration)
	s.logger.Info("metrics analysis completed",
		slog.String("run_id", runID),
		slog.Int("nodes", len(report.MetricsSummary.NodeAnalysis)),
		slog.Int("anomalies", len(report.Anomalies)),
		slog.Duration("duration", duration),
	)
	return report, nil
}

func (s *DiagService) observe(tool string, duration time.Duration) {
	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(tool, duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}
}

// LatencyP95 returns the current p95 analysis latency.
func (s *DiagService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

// compile-time wiring checks for the concrete pipelines
var (
	_ LogAnalyzer     = (*engine.LogPipeline)(nil)
	_ MetricsAnalyzer = (*engine.MetricsPipeline)(nil)
)
