package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/diagstack/hbase-diag/internal/catalog"
	"github.com/diagstack/hbase-diag/internal/config"
	"github.com/diagstack/hbase-diag/internal/extractors"
	"github.com/diagstack/hbase-diag/internal/models"
	"github.com/diagstack/hbase-diag/internal/repo"
	"github.com/diagstack/hbase-diag/internal/utils"
)

// LogPipeline runs the log analysis flow: resolve window, select files,
// parse them across a bounded worker pool, merge deterministically, then
// aggregate into a result document.
type LogPipeline struct {
	logger     *slog.Logger
	catalog    *catalog.Catalog
	thresholds config.ThresholdsConfig
	workers    int
	window     time.Duration
	detectors  []extractors.Detector
	now        func() time.Time
}

// NewLogPipeline constructs a log pipeline from configuration.
func NewLogPipeline(logger *slog.Logger, logs config.LogsConfig, thresholds config.ThresholdsConfig) *LogPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	workers := logs.ParseWorkers
	if workers <= 0 {
		workers = 1
	}
	window := logs.DefaultWindow
	if window <= 0 {
		window = time.Hour
	}
	return &LogPipeline{
		logger:     logger,
		catalog:    catalog.New(logger),
		thresholds: thresholds,
		workers:    workers,
		window:     window,
		detectors:  extractors.Registry(),
		now:        time.Now,
	}
}

// fileResult is the independent per-file accumulation merged after parsing.
type fileResult struct {
	node    string
	entries int
	failed  bool
	events  []models.Event
	errors  []models.ErrorRecord
}

// Run executes the pipeline. The only fatal failure is a malformed window
// input; missing directories and unreadable files degrade to a smaller
// result.
func (p *LogPipeline) Run(ctx context.Context, req models.LogAnalysisRequest) (models.LogReport, error) {
	window, err := ResolveLogWindow(req.StartTime, req.EndTime, p.window, p.now())
	if err != nil {
		return models.LogReport{}, utils.NewAppError("engine.logs", "resolve analysis window", err)
	}

	discovered := p.catalog.Discover(req.LogDir)
	selected := p.catalog.Select(discovered, window, req.TargetNodes)
	p.logger.Info("log files selected",
		slog.String("dir", req.LogDir),
		slog.Int("discovered", len(discovered)),
		slog.Int("selected", len(selected)),
		slog.String("window_start", window.StartStr),
		slog.String("window_end", window.EndStr),
	)

	focus := models.NewFocusSet(req.FocusAreas)
	results := p.parseFiles(ctx, selected, window, focus)

	return p.assemble(window, results), nil
}

// parseFiles fans the selected files out to the worker pool. Results land in
// a slice indexed by the file's catalog position, so the subsequent merge is
// independent of worker scheduling.
func (p *LogPipeline) parseFiles(ctx context.Context, refs []catalog.LogFileRef, window models.TimeWindow, focus models.FocusSet) []fileResult {
	results := make([]fileResult, len(refs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.parseFile(refs[i], window, focus)
			}
		}()
	}

feed:
	for i := range refs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *LogPipeline) parseFile(ref catalog.LogFileRef, window models.TimeWindow, focus models.FocusSet) fileResult {
	result := fileResult{node: ref.Node}

	err := repo.ScanLines(ref.Path, ref.Format == catalog.FormatCompressed, func(line string) {
		ts, ok := extractors.ExtractTimestamp(line)
		if !ok || !window.Contains(ts) {
			return
		}
		result.entries++

		for _, det := range p.detectors {
			if !focus.Enabled(det.Topic) {
				continue
			}
			event, matched := det.Match(line)
			if !matched {
				continue
			}
			event.Timestamp = ts
			event.Node = ref.Node
			event.Line = line
			result.events = append(result.events, event)
		}

		if focus.Enabled(models.FocusErrors) {
			if kind, isErr := extractors.DetectError(line); isErr {
				result.errors = append(result.errors, models.ErrorRecord{
					Timestamp: ts,
					Node:      ref.Node,
					Kind:      kind,
					Line:      line,
				})
			}
		}
	})
	if err != nil {
		p.logger.Warn("log file skipped", slog.String("path", ref.Path), slog.Any("error", err))
		result.failed = true
		return result
	}

	p.logger.Debug("log file parsed", slog.String("path", ref.Path), slog.Int("entries", result.entries))
	return result
}
