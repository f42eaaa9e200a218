package models

import "time"

// MetricPoint is one window-filtered (timestamp, value) sample.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// SaturationPoint is a sample at or beyond the saturation threshold.
type SaturationPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Severity  Severity  `json:"severity"`
}

// MetricSeries maps node identity to its window-filtered samples, ordered as
// they appeared in the source document.
type MetricSeries map[string][]MetricPoint

// NodeMetricStats holds per-node descriptive statistics and the points that
// crossed the high-usage and saturation thresholds.
type NodeMetricStats struct {
	Max              float64           `json:"max"`
	Min              float64           `json:"min"`
	Mean             float64           `json:"mean"`
	Median           float64           `json:"median"`
	Std              float64           `json:"std"`
	Count            int               `json:"count"`
	HighUsagePoints  []MetricPoint     `json:"high_usage_points,omitempty"`
	HighUsageCount   int               `json:"high_usage_count"`
	SaturationPoints []SaturationPoint `json:"saturation_points,omitempty"`
	SaturationCount  int               `json:"saturation_count"`
}

// ClusterSummary pools every node's samples into cluster-level statistics.
type ClusterSummary struct {
	TotalNodes      int     `json:"total_nodes"`
	ClusterMax      float64 `json:"cluster_max"`
	ClusterMean     float64 `json:"cluster_mean"`
	ClusterStd      float64 `json:"cluster_std"`
	TotalDataPoints int     `json:"total_data_points"`
}

// PerformanceMetrics lists the nodes that crossed usage thresholds.
type PerformanceMetrics struct {
	HighUsageNodes     []string `json:"high_usage_nodes"`
	SaturatedNodes     []string `json:"saturated_nodes"`
	HighUsageNodeCount int      `json:"high_usage_node_count"`
	SaturatedNodeCount int      `json:"saturated_node_count"`
}

// MetricsSummary groups the per-node and cluster-level statistics.
type MetricsSummary struct {
	NodeAnalysis       map[string]NodeMetricStats `json:"node_analysis"`
	ClusterSummary     *ClusterSummary            `json:"cluster_summary,omitempty"`
	PerformanceMetrics PerformanceMetrics         `json:"performance_metrics"`
}

// TrendResult reports the coarse direction of pooled samples over the window.
type TrendResult struct {
	OverallTrend   string  `json:"overall_trend"`
	FirstHalfAvg   float64 `json:"first_half_avg"`
	SecondHalfAvg  float64 `json:"second_half_avg"`
	TrendMagnitude float64 `json:"trend_magnitude"`
}

// MetricsReport is the self-contained result document of a metrics analysis
// call. Trends is nil when fewer than the minimum samples were pooled.
type MetricsReport struct {
	AnalysisWindow         MetricsWindow  `json:"analysis_window"`
	MetricsSummary         MetricsSummary `json:"metrics_summary"`
	Anomalies              []Anomaly      `json:"anomalies"`
	PerformanceBottlenecks []Bottleneck   `json:"performance_bottlenecks"`
	Trends                 *TrendResult   `json:"trends,omitempty"`
	Summary                string         `json:"summary"`
}
