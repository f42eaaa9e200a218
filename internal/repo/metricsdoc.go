package repo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/diagstack/hbase-diag/internal/catalog"
	"github.com/diagstack/hbase-diag/internal/models"
)

// metricsDocument mirrors the exported time-series JSON: a list of named
// series, each carrying one time-typed and one number-typed field holding
// parallel value arrays.
type metricsDocument struct {
	Series []seriesDoc `json:"series"`
}

type seriesDoc struct {
	Name   string     `json:"name"`
	Fields []fieldDoc `json:"fields"`
}

type fieldDoc struct {
	Type   string        `json:"type"`
	Values []json.Number `json:"values"`
}

// LoadMetricSeries reads the metrics document under dir and returns the
// window-filtered samples per node. A missing directory or document, or a
// structurally unusable series, degrades to a smaller (possibly empty)
// result with a warning; it never fails the call.
func LoadMetricSeries(logger *slog.Logger, dir, document string, window models.MetricsWindow) models.MetricSeries {
	if logger == nil {
		logger = slog.Default()
	}
	series := make(models.MetricSeries)

	if _, err := os.Stat(dir); err != nil {
		logger.Warn("metrics directory not accessible", slog.String("dir", dir), slog.Any("error", err))
		return series
	}

	path := filepath.Join(dir, document)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("metrics document not readable", slog.String("path", path), slog.Any("error", err))
		return series
	}

	var doc metricsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("metrics document malformed", slog.String("path", path), slog.Any("error", err))
		return series
	}

	for _, s := range doc.Series {
		node := catalog.NodeFromSeriesName(s.Name)
		if node == "" {
			continue
		}

		timestamps, values, err := seriesArrays(s.Fields)
		if err != nil {
			logger.Warn("metric series dropped", slog.String("series", s.Name), slog.Any("error", err))
			continue
		}

		points := filterPoints(timestamps, values, window)
		if len(points) == 0 {
			continue
		}
		series[node] = append(series[node], points...)
	}

	return series
}

func seriesArrays(fields []fieldDoc) ([]time.Time, []float64, error) {
	var timestamps []time.Time
	var values []float64
	haveTime, haveNumber := false, false

	for _, field := range fields {
		switch field.Type {
		case "time":
			if haveTime {
				continue
			}
			haveTime = true
			timestamps = make([]time.Time, 0, len(field.Values))
			for _, raw := range field.Values {
				ms, err := raw.Int64()
				if err != nil {
					return nil, nil, fmt.Errorf("time value %q: %w", raw, err)
				}
				timestamps = append(timestamps, time.UnixMilli(ms))
			}
		case "number":
			if haveNumber {
				continue
			}
			haveNumber = true
			values = make([]float64, 0, len(field.Values))
			for _, raw := range field.Values {
				v, err := raw.Float64()
				if err != nil {
					return nil, nil, fmt.Errorf("numeric value %q: %w", raw, err)
				}
				values = append(values, v)
			}
		}
	}

	if !haveTime || !haveNumber {
		return nil, nil, fmt.Errorf("series needs one time and one number field")
	}
	return timestamps, values, nil
}

// filterPoints keeps the in-window samples, truncating to the shorter array
// when the document's parallel arrays disagree on length.
func filterPoints(timestamps []time.Time, values []float64, window models.MetricsWindow) []models.MetricPoint {
	n := len(timestamps)
	if len(values) < n {
		n = len(values)
	}

	var points []models.MetricPoint
	for i := 0; i < n; i++ {
		if !window.Contains(timestamps[i]) {
			continue
		}
		points = append(points, models.MetricPoint{Timestamp: timestamps[i], Value: values[i]})
	}
	return points
}
