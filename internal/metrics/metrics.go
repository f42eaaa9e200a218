package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// ToolLogs labels log analysis calls.
	ToolLogs = "logs"
	// ToolMetrics labels metrics analysis calls.
	ToolMetrics = "metrics"

	// OutcomeSuccess labels successful analyses.
	OutcomeSuccess = "success"
	// OutcomeError labels failed analyses (bad input or pipeline issues).
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hbase_diag",
			Name:      "analyses_total",
			Help:      "Total number of analyses handled, partitioned by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hbase_diag",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10},
		},
		[]string{"tool"},
	)
)

// Register attaches hbase-diag collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label for a tool.
func ObserveAnalysis(tool string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(tool, label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.WithLabelValues(tool).Observe(duration.Seconds())
}
