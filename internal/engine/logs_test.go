package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diagstack/hbase-diag/internal/config"
	"github.com/diagstack/hbase-diag/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLogPipeline(t *testing.T) *LogPipeline {
	t.Helper()
	return NewLogPipeline(discardLogger(), config.LogsConfig{ParseWorkers: 2, DefaultWindow: time.Hour}, config.DefaultThresholds())
}

func writeLog(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLogPipelineHandlerSaturation(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-1.log",
		"2024-01-15 10:00:00,123 INFO  [RpcServer] ipc.RpcServer: handler=59 active",
		"2024-01-15 10:05:00,456 INFO  [RpcServer] ipc.RpcServer: handler=61 active",
		"2024-01-15 10:10:00,789 INFO  [RpcServer] ipc.RpcServer: handler=12 active",
	)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.TotalEntries != 3 {
		t.Fatalf("total entries = %d, want 3", report.TotalEntries)
	}
	if report.FilesProcessed != 1 || report.FilesFailed != 0 {
		t.Fatalf("files = %d/%d, want 1 processed 0 failed", report.FilesProcessed, report.FilesFailed)
	}
	if len(report.Anomalies) != 1 {
		t.Fatalf("anomalies = %+v, want exactly one", report.Anomalies)
	}
	anomaly := report.Anomalies[0]
	if anomaly.Type != models.AnomalyHandlerSaturation || anomaly.Node != "ip-10-0-0-1" {
		t.Fatalf("anomaly = %+v", anomaly)
	}
	if anomaly.Severity != models.SeverityCritical {
		t.Fatalf("severity = %q, want critical for max 61", anomaly.Severity)
	}
	if anomaly.MaxValue == nil || *anomaly.MaxValue != 61 {
		t.Fatalf("max = %v, want 61", anomaly.MaxValue)
	}
}

func TestLogPipelineHighValuesBelowSaturation(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-1.log",
		"2024-01-15 10:00:00,123 INFO  handler=57 active",
		"2024-01-15 10:05:00,456 INFO  handler=55 active",
	)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Anomalies) != 0 {
		t.Fatalf("anomalies = %+v, want none below the saturation threshold", report.Anomalies)
	}
}

func TestLogPipelineErrorRate(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ts := time.Date(2024, 1, 15, 10, 0, i%60, 0, time.Local).Add(time.Duration(i/60) * time.Minute)
		if i < 10 {
			lines = append(lines, fmt.Sprintf("%s,000 ERROR [regionserver] region close failed", ts.Format("2006-01-02 15:04:05")))
		} else {
			lines = append(lines, fmt.Sprintf("%s,000 INFO  [regionserver] routine scan", ts.Format("2006-01-02 15:04:05")))
		}
	}
	writeLog(t, dir, "ip-10-0-0-2.log", lines...)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.TotalEntries != 100 {
		t.Fatalf("total entries = %d, want 100", report.TotalEntries)
	}
	if report.ErrorSummary.Total != 10 {
		t.Fatalf("errors = %d, want 10", report.ErrorSummary.Total)
	}

	var rate *models.Anomaly
	for i := range report.Anomalies {
		if report.Anomalies[i].Type == models.AnomalyHighErrorRate {
			rate = &report.Anomalies[i]
		}
	}
	if rate == nil {
		t.Fatalf("anomalies = %+v, want high_error_rate", report.Anomalies)
	}
	if rate.ErrorCount != 10 || rate.ErrorRate == nil || *rate.ErrorRate != 10.0 {
		t.Fatalf("error rate anomaly = %+v, want 10 errors at 10.0%%", rate)
	}
}

func TestLogPipelineWindowBoundsInclusive(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-1.log",
		"2024-01-15 08:59:59,000 INFO  handler=10 before window",
		"2024-01-15 09:00:00,000 INFO  handler=11 at start",
		"2024-01-15 11:00:00,000 INFO  handler=12 at end",
		"2024-01-15 11:00:01,000 INFO  handler=13 after window",
	)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TotalEntries != 2 {
		t.Fatalf("total entries = %d, want the two boundary lines", report.TotalEntries)
	}
}

func TestLogPipelineWALPerformance(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-3.log",
		"2024-01-15 10:00:00,000 WARN  [sync.0] wal.FSHLog: Slow sync cost: 150 ms",
		"2024-01-15 10:01:00,000 WARN  [sync.1] wal.FSHLog: Slow sync cost: 90 ms",
	)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.PerformanceIssues) != 1 {
		t.Fatalf("issues = %+v, want one wal_performance", report.PerformanceIssues)
	}
	issue := report.PerformanceIssues[0]
	if issue.Type != "wal_performance" || issue.SlowSyncCount != 2 || issue.AvgSyncTime != 120 {
		t.Fatalf("issue = %+v", issue)
	}
}

func TestLogPipelineFocusAreas(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-1.log",
		"2024-01-15 10:00:00,000 INFO  handler=59 active",
		"2024-01-15 10:01:00,000 ERROR region assignment failed",
	)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:     dir,
		StartTime:  "2024-01-15 09:00:00",
		EndTime:    "2024-01-15 11:00:00",
		FocusAreas: []string{"errors"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.EventsSummary.Total != 0 {
		t.Fatalf("events = %d, want 0 with only errors focused", report.EventsSummary.Total)
	}
	if report.ErrorSummary.Total != 1 {
		t.Fatalf("errors = %d, want 1", report.ErrorSummary.Total)
	}
	if len(report.Anomalies) != 0 {
		t.Fatalf("anomalies = %+v, want none without handler samples", report.Anomalies)
	}
}

func TestLogPipelineTargetNodes(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-1.log", "2024-01-15 10:00:00,000 INFO  handler=20")
	writeLog(t, dir, "ip-10-0-0-2.log", "2024-01-15 10:00:00,000 INFO  handler=21")

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:      dir,
		StartTime:   "2024-01-15 09:00:00",
		EndTime:     "2024-01-15 11:00:00",
		TargetNodes: []string{"ip-10-0-0-2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Nodes) != 1 || report.Nodes[0] != "ip-10-0-0-2" {
		t.Fatalf("nodes = %v, want only the targeted node", report.Nodes)
	}
}

func TestLogPipelineMissingDirectory(t *testing.T) {
	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    filepath.Join(t.TempDir(), "absent"),
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v, missing input must not fail the call", err)
	}
	if report.TotalEntries != 0 || report.FilesProcessed != 0 || len(report.Nodes) != 0 {
		t.Fatalf("report = %+v, want empty result", report)
	}
	if report.EventsSummary.Total != 0 || len(report.Anomalies) != 0 {
		t.Fatalf("report = %+v, want no findings", report)
	}
}

func TestLogPipelineInvalidWindowFatal(t *testing.T) {
	_, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    t.TempDir(),
		StartTime: "15/01/2024",
	})
	if err == nil {
		t.Fatal("Run with malformed start_time succeeded, want error")
	}
}

func TestLogPipelineDeterministicOutput(t *testing.T) {
	dir := t.TempDir()
	for n := 1; n <= 4; n++ {
		lines := make([]string, 0, 40)
		for i := 0; i < 40; i++ {
			lines = append(lines, fmt.Sprintf("2024-01-15 10:%02d:00,000 INFO  handler=%d queue=%d", i, 40+(n*i)%22, i%7))
		}
		writeLog(t, dir, fmt.Sprintf("ip-10-0-0-%d.log", n), lines...)
	}

	req := models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 09:00:00",
		EndTime:   "2024-01-15 11:00:00",
	}

	pipeline := newLogPipeline(t)
	first, err := pipeline.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipeline.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("reports differ across identical runs:\n%s\n%s", a, b)
	}
}

func TestLogPipelineTimeDistributionKeys(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ip-10-0-0-1.log",
		"2024-01-15 16:20:00,000 INFO  handler=5",
		"2024-01-15 16:45:00,000 INFO  handler=6",
	)

	report, err := newLogPipeline(t).Run(context.Background(), models.LogAnalysisRequest{
		LogDir:    dir,
		StartTime: "2024-01-15 16:00:00",
		EndTime:   "2024-01-15 17:00:00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.EventsSummary.TimeDistribution["16:00"]; got != 2 {
		t.Fatalf("time distribution = %v, want both events under 16:00", report.EventsSummary.TimeDistribution)
	}
}

func TestTopCountsTieOrdering(t *testing.T) {
	counts := map[string]int{"wal_slow_sync": 3, "gc_pause": 3, "handler_usage": 5, "queue_size": 1}
	ranked := topCounts(counts, 3)
	want := []models.TypeCount{
		{Type: "handler_usage", Count: 5},
		{Type: "gc_pause", Count: 3},
		{Type: "wal_slow_sync", Count: 3},
	}
	if len(ranked) != len(want) {
		t.Fatalf("ranked = %+v", ranked)
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Fatalf("ranked[%d] = %+v, want %+v", i, ranked[i], want[i])
		}
	}
}
