package models

import "time"

// Severity captures impact levels for anomalies and bottlenecks.
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AnomalyType enumerates the anomaly rules of both pipelines.
type AnomalyType string

const (
	AnomalyHandlerSaturation AnomalyType = "handler_saturation"
	AnomalyHighErrorRate     AnomalyType = "high_error_rate"
	AnomalyHighHandlerUsage  AnomalyType = "high_handler_usage"
	AnomalyHandlerVolatility AnomalyType = "handler_volatility"
	AnomalyClusterSaturation AnomalyType = "cluster_saturation"
	AnomalyClusterHighUsage  AnomalyType = "cluster_high_usage"
)

// Anomaly is a threshold-rule violation with its numeric evidence. Node is
// empty for cluster-scoped anomalies, which carry AffectedNodes instead.
type Anomaly struct {
	Type            AnomalyType `json:"type"`
	Node            string      `json:"node,omitempty"`
	Severity        Severity    `json:"severity"`
	MaxValue        *float64    `json:"max_value,omitempty"`
	AvgValue        *float64    `json:"avg_value,omitempty"`
	MeanValue       *float64    `json:"mean_value,omitempty"`
	StdValue        *float64    `json:"std_value,omitempty"`
	ErrorCount      int         `json:"error_count,omitempty"`
	ErrorRate       *float64    `json:"error_rate,omitempty"`
	SaturationCount int         `json:"saturation_count,omitempty"`
	HighUsageCount  int         `json:"high_usage_count,omitempty"`
	NodeCount       int         `json:"node_count,omitempty"`
	AffectedNodes   []string    `json:"affected_nodes,omitempty"`
	Description     string      `json:"description"`
	Timestamps      []time.Time `json:"timestamps,omitempty"`
	Values          []float64   `json:"values,omitempty"`
}

// PerformanceIssue is an aggregate performance finding from the log pipeline.
type PerformanceIssue struct {
	Type          string   `json:"type"`
	Severity      Severity `json:"severity"`
	SlowSyncCount int      `json:"slow_sync_count,omitempty"`
	AvgSyncTime   float64  `json:"avg_sync_time,omitempty"`
	Description   string   `json:"description"`
}

// Bottleneck maps anomaly evidence onto a named capacity category.
type Bottleneck struct {
	Type               string   `json:"type"`
	Severity           Severity `json:"severity"`
	Description        string   `json:"description"`
	AffectedComponents []string `json:"affected_components"`
	Impact             string   `json:"impact"`
}

// TypeCount pairs a type name with its occurrence count, for ranked lists.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// EventsSummary aggregates extracted events by type, node and hour of day.
type EventsSummary struct {
	Total            int                       `json:"total"`
	Types            map[string]int            `json:"types"`
	ByNode           map[string]map[string]int `json:"by_node,omitempty"`
	TimeDistribution map[string]int            `json:"time_distribution,omitempty"`
	TopEventTypes    []TypeCount               `json:"top_event_types,omitempty"`
}

// ErrorSummary aggregates classified errors by kind and node.
type ErrorSummary struct {
	Total         int                       `json:"total"`
	Types         map[string]int            `json:"types"`
	ByNode        map[string]map[string]int `json:"by_node,omitempty"`
	TopErrorTypes []TypeCount               `json:"top_error_types,omitempty"`
}

// LogReport is the self-contained result document of a log analysis call.
type LogReport struct {
	AnalysisWindow    TimeWindow         `json:"analysis_window"`
	FilesProcessed    int                `json:"files_processed"`
	FilesFailed       int                `json:"files_failed"`
	TotalEntries      int                `json:"total_entries"`
	Nodes             []string           `json:"nodes"`
	EventsSummary     EventsSummary      `json:"events_summary"`
	Anomalies         []Anomaly          `json:"anomalies"`
	PerformanceIssues []PerformanceIssue `json:"performance_issues"`
	ErrorSummary      ErrorSummary       `json:"error_summary"`
	Summary           string             `json:"summary"`
}
