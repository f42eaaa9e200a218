package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diagstack/hbase-diag/internal/models"
)

// assemble merges the per-file results (already in stable catalog order) and
// builds the final report.
func (p *LogPipeline) assemble(window models.TimeWindow, results []fileResult) models.LogReport {
	var (
		events       []models.Event
		errorRecords []models.ErrorRecord
		totalEntries int
		processed    int
		failed       int
	)
	nodeSet := make(map[string]struct{})

	for _, res := range results {
		nodeSet[res.node] = struct{}{}
		totalEntries += res.entries
		// A file failing mid-stream keeps whatever it yielded before the
		// failure; only the processed/failed counters distinguish it.
		events = append(events, res.events...)
		errorRecords = append(errorRecords, res.errors...)
		if res.failed {
			failed++
		} else {
			processed++
		}
	}

	nodes := make([]string, 0, len(nodeSet))
	for node := range nodeSet {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	anomalies := p.detectLogAnomalies(events, errorRecords, totalEntries)
	issues := p.detectPerformanceIssues(events)
	eventsSummary := summarizeEvents(events)
	errorSummary := summarizeErrors(errorRecords)

	return models.LogReport{
		AnalysisWindow:    window,
		FilesProcessed:    processed,
		FilesFailed:       failed,
		TotalEntries:      totalEntries,
		Nodes:             nodes,
		EventsSummary:     eventsSummary,
		Anomalies:         anomalies,
		PerformanceIssues: issues,
		ErrorSummary:      errorSummary,
		Summary: fmt.Sprintf("log entries: %d | nodes: %d | anomalies: %d | performance issues: %d | errors: %d",
			totalEntries, len(nodes), len(anomalies), len(issues), len(errorRecords)),
	}
}

// handlerValuesByNode groups handler_usage samples per node.
func handlerValuesByNode(events []models.Event) map[string][]float64 {
	stats := make(map[string][]float64)
	for _, event := range events {
		if event.Type != models.EventHandlerUsage || event.Value == nil {
			continue
		}
		stats[event.Node] = append(stats[event.Node], *event.Value)
	}
	return stats
}

func (p *LogPipeline) detectLogAnomalies(events []models.Event, errorRecords []models.ErrorRecord, totalEntries int) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)

	handlerStats := handlerValuesByNode(events)
	nodes := make([]string, 0, len(handlerStats))
	for node := range handlerStats {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		values := handlerStats[node]
		maxVal := maxOf(values)
		if maxVal < p.thresholds.HandlerSaturation {
			continue
		}
		avgVal := mean(values)
		severity := models.SeverityHigh
		if maxVal >= p.thresholds.HandlerCritical {
			severity = models.SeverityCritical
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:        models.AnomalyHandlerSaturation,
			Node:        node,
			Severity:    severity,
			MaxValue:    ptr(maxVal),
			AvgValue:    ptr(avgVal),
			Description: fmt.Sprintf("node %s handler usage: max %.0f, mean %.1f", node, maxVal, avgVal),
		})
	}

	if totalEntries > 0 && len(errorRecords) > 0 {
		errorRate := float64(len(errorRecords)) / float64(totalEntries) * 100
		if errorRate > p.thresholds.ErrorRatePercent {
			anomalies = append(anomalies, models.Anomaly{
				Type:        models.AnomalyHighErrorRate,
				Severity:    models.SeverityHigh,
				ErrorCount:  len(errorRecords),
				ErrorRate:   ptr(errorRate),
				Description: fmt.Sprintf("%d errors across %d entries (%.1f%%)", len(errorRecords), totalEntries, errorRate),
			})
		}
	}

	return anomalies
}

func (p *LogPipeline) detectPerformanceIssues(events []models.Event) []models.PerformanceIssue {
	issues := make([]models.PerformanceIssue, 0)

	var syncTimes []float64
	for _, event := range events {
		if event.Type == models.EventWALSlowSync && event.Value != nil {
			syncTimes = append(syncTimes, *event.Value)
		}
	}
	if len(syncTimes) == 0 {
		return issues
	}

	avgSync := mean(syncTimes)
	if avgSync > p.thresholds.WALSlowSyncMs {
		issues = append(issues, models.PerformanceIssue{
			Type:          "wal_performance",
			Severity:      models.SeverityHigh,
			SlowSyncCount: len(syncTimes),
			AvgSyncTime:   avgSync,
			Description:   fmt.Sprintf("%d slow WAL syncs, average %.1fms", len(syncTimes), avgSync),
		})
	}
	return issues
}

func summarizeEvents(events []models.Event) models.EventsSummary {
	summary := models.EventsSummary{Total: len(events), Types: map[string]int{}}
	if len(events) == 0 {
		return summary
	}

	summary.ByNode = make(map[string]map[string]int)
	summary.TimeDistribution = make(map[string]int)

	for _, event := range events {
		typ := string(event.Type)
		summary.Types[typ]++

		if summary.ByNode[event.Node] == nil {
			summary.ByNode[event.Node] = make(map[string]int)
		}
		summary.ByNode[event.Node][typ]++

		summary.TimeDistribution[event.Timestamp.Format("15:00")]++
	}

	summary.TopEventTypes = topCounts(summary.Types, 5)
	return summary
}

func summarizeErrors(errorRecords []models.ErrorRecord) models.ErrorSummary {
	summary := models.ErrorSummary{Total: len(errorRecords), Types: map[string]int{}}
	if len(errorRecords) == 0 {
		return summary
	}

	summary.ByNode = make(map[string]map[string]int)
	for _, rec := range errorRecords {
		kind := string(rec.Kind)
		summary.Types[kind]++
		if summary.ByNode[rec.Node] == nil {
			summary.ByNode[rec.Node] = make(map[string]int)
		}
		summary.ByNode[rec.Node][kind]++
	}

	summary.TopErrorTypes = topCounts(summary.Types, 3)
	return summary
}

// topCounts ranks by count descending, ties broken by name so output is
// reproducible across runs.
func topCounts(counts map[string]int, limit int) []models.TypeCount {
	ranked := make([]models.TypeCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, models.TypeCount{Type: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return strings.Compare(ranked[i].Type, ranked[j].Type) < 0
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func ptr(v float64) *float64 {
	return &v
}
