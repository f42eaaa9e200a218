package models

// LogAnalysisRequest carries the inputs of the log analysis call.
type LogAnalysisRequest struct {
	LogDir      string   `json:"log_dir"`
	StartTime   string   `json:"start_time,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	FocusAreas  []string `json:"focus_areas,omitempty"`
	TargetNodes []string `json:"target_nodes,omitempty"`
}

// MetricsAnalysisRequest carries the inputs of the metrics analysis call.
// MetricTypes is accepted for forward compatibility but drives no rule yet.
type MetricsAnalysisRequest struct {
	MetricsDir  string   `json:"metrics_dir"`
	TargetTime  string   `json:"target_time,omitempty"`
	HoursRange  int      `json:"hours_range,omitempty"`
	MetricTypes []string `json:"metric_types,omitempty"`
}
