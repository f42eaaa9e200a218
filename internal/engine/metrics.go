package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/diagstack/hbase-diag/internal/config"
	"github.com/diagstack/hbase-diag/internal/models"
	"github.com/diagstack/hbase-diag/internal/repo"
	"github.com/diagstack/hbase-diag/internal/utils"
)

// MetricsPipeline runs the metrics analysis flow: resolve window, load the
// series document, compute statistics, apply anomaly rules, classify
// bottlenecks and derive the trend.
type MetricsPipeline struct {
	logger     *slog.Logger
	cfg        config.MetricsConfig
	thresholds config.ThresholdsConfig
	now        func() time.Time
}

// NewMetricsPipeline constructs a metrics pipeline from configuration.
func NewMetricsPipeline(logger *slog.Logger, cfg config.MetricsConfig, thresholds config.ThresholdsConfig) *MetricsPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Document == "" {
		cfg.Document = "download.json"
	}
	if cfg.DefaultHoursRange <= 0 {
		cfg.DefaultHoursRange = 72
	}
	return &MetricsPipeline{
		logger:     logger,
		cfg:        cfg,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Run executes the pipeline. Only a malformed target time is fatal; a
// missing or partial metrics tree returns an empty best-effort report.
func (p *MetricsPipeline) Run(_ context.Context, req models.MetricsAnalysisRequest) (models.MetricsReport, error) {
	window, err := ResolveMetricsWindow(req.TargetTime, req.HoursRange, p.cfg.DefaultHoursRange, p.now())
	if err != nil {
		return models.MetricsReport{}, utils.NewAppError("engine.metrics", "resolve analysis window", err)
	}

	series := repo.LoadMetricSeries(p.logger, req.MetricsDir, p.cfg.Document, window)
	p.logger.Info("metric series loaded",
		slog.String("dir", req.MetricsDir),
		slog.Int("nodes", len(series)),
		slog.String("window_start", window.StartStr),
		slog.String("window_end", window.EndStr),
	)

	summary := analyzeSeries(series, p.thresholds)
	anomalies := p.detectAnomalies(summary)
	bottlenecks := p.classifyBottlenecks(anomalies)
	trend := analyzeTrend(series, p.thresholds)

	return models.MetricsReport{
		AnalysisWindow:         window,
		MetricsSummary:         summary,
		Anomalies:              anomalies,
		PerformanceBottlenecks: bottlenecks,
		Trends:                 trend,
		Summary:                metricsDigest(summary, anomalies),
	}, nil
}

// detectAnomalies applies the per-node rules (saturation takes precedence
// over sustained high usage; volatility is independent) followed by the
// cluster rules.
func (p *MetricsPipeline) detectAnomalies(summary models.MetricsSummary) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)

	nodes := make([]string, 0, len(summary.NodeAnalysis))
	for node := range summary.NodeAnalysis {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		stats := summary.NodeAnalysis[node]

		if stats.SaturationCount > 0 {
			severity := models.SeverityHigh
			if stats.Max >= p.thresholds.HandlerCritical {
				severity = models.SeverityCritical
			}
			timestamps := make([]time.Time, len(stats.SaturationPoints))
			values := make([]float64, len(stats.SaturationPoints))
			for i, sp := range stats.SaturationPoints {
				timestamps[i] = sp.Timestamp
				values[i] = sp.Value
			}
			anomalies = append(anomalies, models.Anomaly{
				Type:            models.AnomalyHandlerSaturation,
				Node:            node,
				Severity:        severity,
				MaxValue:        ptr(stats.Max),
				SaturationCount: stats.SaturationCount,
				Description:     fmt.Sprintf("node %s handler usage: max %.0f, %d samples at saturation", node, stats.Max, stats.SaturationCount),
				Timestamps:      timestamps,
				Values:          values,
			})
		} else if stats.HighUsageCount > p.thresholds.HighUsagePointLimit {
			timestamps := make([]time.Time, len(stats.HighUsagePoints))
			values := make([]float64, len(stats.HighUsagePoints))
			for i, pt := range stats.HighUsagePoints {
				timestamps[i] = pt.Timestamp
				values[i] = pt.Value
			}
			anomalies = append(anomalies, models.Anomaly{
				Type:           models.AnomalyHighHandlerUsage,
				Node:           node,
				Severity:       models.SeverityMedium,
				MaxValue:       ptr(stats.Max),
				MeanValue:      ptr(stats.Mean),
				HighUsageCount: stats.HighUsageCount,
				Description:    fmt.Sprintf("node %s handler usage: mean %.1f, %d samples above %.0f", node, stats.Mean, stats.HighUsageCount, p.thresholds.HighUsage),
				Timestamps:     timestamps,
				Values:         values,
			})
		}

		if stats.Std > p.thresholds.VolatilityStd && stats.Max > p.thresholds.VolatilityMax {
			anomalies = append(anomalies, models.Anomaly{
				Type:        models.AnomalyHandlerVolatility,
				Node:        node,
				Severity:    models.SeverityMedium,
				StdValue:    ptr(stats.Std),
				MaxValue:    ptr(stats.Max),
				Description: fmt.Sprintf("node %s handler volatility: std %.1f, max %.0f", node, stats.Std, stats.Max),
			})
		}
	}

	perf := summary.PerformanceMetrics
	if perf.SaturatedNodeCount > 1 {
		anomalies = append(anomalies, models.Anomaly{
			Type:          models.AnomalyClusterSaturation,
			Severity:      models.SeverityCritical,
			AffectedNodes: perf.SaturatedNodes,
			NodeCount:     perf.SaturatedNodeCount,
			Description:   fmt.Sprintf("%d nodes at handler saturation", perf.SaturatedNodeCount),
		})
	} else if float64(perf.HighUsageNodeCount) > float64(len(summary.NodeAnalysis))*p.thresholds.ClusterHighUsageRatio {
		anomalies = append(anomalies, models.Anomaly{
			Type:          models.AnomalyClusterHighUsage,
			Severity:      models.SeverityHigh,
			AffectedNodes: perf.HighUsageNodes,
			NodeCount:     perf.HighUsageNodeCount,
			Description:   fmt.Sprintf("%d nodes with sustained high handler usage", perf.HighUsageNodeCount),
		})
	}

	return anomalies
}

// classifyBottlenecks maps anomaly severities onto named capacity
// categories; each bottleneck lists the distinct subjects that triggered it.
func (p *MetricsPipeline) classifyBottlenecks(anomalies []models.Anomaly) []models.Bottleneck {
	bottlenecks := make([]models.Bottleneck, 0)

	components := func(severity models.Severity) []string {
		seen := make(map[string]struct{})
		var subjects []string
		for _, anomaly := range anomalies {
			if anomaly.Severity != severity {
				continue
			}
			subject := anomaly.Node
			if subject == "" {
				subject = "cluster"
			}
			if _, ok := seen[subject]; ok {
				continue
			}
			seen[subject] = struct{}{}
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		return subjects
	}

	if critical := components(models.SeverityCritical); len(critical) > 0 {
		bottlenecks = append(bottlenecks, models.Bottleneck{
			Type:               "handler_capacity",
			Severity:           models.SeverityCritical,
			Description:        "handler capacity exhausted",
			AffectedComponents: critical,
			Impact:             "severe_performance_degradation",
		})
	}
	if high := components(models.SeverityHigh); len(high) > 0 {
		bottlenecks = append(bottlenecks, models.Bottleneck{
			Type:               "resource_pressure",
			Severity:           models.SeverityHigh,
			Description:        "sustained high handler usage",
			AffectedComponents: high,
			Impact:             "performance_degradation",
		})
	}

	return bottlenecks
}

func metricsDigest(summary models.MetricsSummary, anomalies []models.Anomaly) string {
	var parts []string

	if cluster := summary.ClusterSummary; cluster != nil {
		parts = append(parts,
			fmt.Sprintf("nodes: %d", cluster.TotalNodes),
			fmt.Sprintf("cluster max handler: %.0f", cluster.ClusterMax),
			fmt.Sprintf("cluster mean handler: %.1f", cluster.ClusterMean),
		)
	}

	var critical, high, medium int
	for _, anomaly := range anomalies {
		switch anomaly.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityHigh:
			high++
		case models.SeverityMedium:
			medium++
		}
	}
	if critical > 0 {
		parts = append(parts, fmt.Sprintf("critical anomalies: %d", critical))
	}
	if high > 0 {
		parts = append(parts, fmt.Sprintf("high anomalies: %d", high))
	}
	if medium > 0 {
		parts = append(parts, fmt.Sprintf("medium anomalies: %d", medium))
	}

	perf := summary.PerformanceMetrics
	if perf.SaturatedNodeCount > 0 {
		parts = append(parts, fmt.Sprintf("saturated nodes: %d", perf.SaturatedNodeCount))
	}
	if perf.HighUsageNodeCount > 0 {
		parts = append(parts, fmt.Sprintf("high usage nodes: %d", perf.HighUsageNodeCount))
	}

	if len(parts) == 0 {
		return "no metric data"
	}
	return strings.Join(parts, " | ")
}
