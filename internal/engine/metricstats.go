package engine

import (
	"sort"

	"github.com/diagstack/hbase-diag/internal/config"
	"github.com/diagstack/hbase-diag/internal/models"
)

// analyzeSeries computes per-node descriptive statistics, threshold-crossing
// points and the cluster-level aggregate over the pooled raw values.
func analyzeSeries(series models.MetricSeries, thresholds config.ThresholdsConfig) models.MetricsSummary {
	summary := models.MetricsSummary{
		NodeAnalysis: make(map[string]models.NodeMetricStats),
		PerformanceMetrics: models.PerformanceMetrics{
			HighUsageNodes: []string{},
			SaturatedNodes: []string{},
		},
	}

	nodes := make([]string, 0, len(series))
	for node := range series {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	var allValues []float64
	for _, node := range nodes {
		points := series[node]
		if len(points) == 0 {
			continue
		}

		values := make([]float64, len(points))
		for i, pt := range points {
			values[i] = pt.Value
		}

		stats := models.NodeMetricStats{
			Max:    maxOf(values),
			Min:    minOf(values),
			Mean:   mean(values),
			Median: median(values),
			Std:    stdDev(values),
			Count:  len(values),
		}

		for _, pt := range points {
			if pt.Value >= thresholds.HighUsage {
				stats.HighUsagePoints = append(stats.HighUsagePoints, pt)
			}
			if pt.Value >= thresholds.HandlerSaturation {
				severity := models.SeverityHigh
				if pt.Value >= thresholds.HandlerCritical {
					severity = models.SeverityCritical
				}
				stats.SaturationPoints = append(stats.SaturationPoints, models.SaturationPoint{
					Timestamp: pt.Timestamp,
					Value:     pt.Value,
					Severity:  severity,
				})
			}
		}
		stats.HighUsageCount = len(stats.HighUsagePoints)
		stats.SaturationCount = len(stats.SaturationPoints)

		summary.NodeAnalysis[node] = stats
		allValues = append(allValues, values...)

		if stats.HighUsageCount > 0 {
			summary.PerformanceMetrics.HighUsageNodes = append(summary.PerformanceMetrics.HighUsageNodes, node)
		}
		if stats.SaturationCount > 0 {
			summary.PerformanceMetrics.SaturatedNodes = append(summary.PerformanceMetrics.SaturatedNodes, node)
		}
	}

	summary.PerformanceMetrics.HighUsageNodeCount = len(summary.PerformanceMetrics.HighUsageNodes)
	summary.PerformanceMetrics.SaturatedNodeCount = len(summary.PerformanceMetrics.SaturatedNodes)

	if len(allValues) > 0 {
		summary.ClusterSummary = &models.ClusterSummary{
			TotalNodes:      len(summary.NodeAnalysis),
			ClusterMax:      maxOf(allValues),
			ClusterMean:     mean(allValues),
			ClusterStd:      stdDev(allValues),
			TotalDataPoints: len(allValues),
		}
	}

	return summary
}
