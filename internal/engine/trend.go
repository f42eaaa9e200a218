package engine

import (
	"math"
	"sort"

	"github.com/diagstack/hbase-diag/internal/config"
	"github.com/diagstack/hbase-diag/internal/models"
)

// analyzeTrend pools every node's samples, sorts by time, and compares the
// means of the two halves. Fewer than the minimum pooled samples yields no
// trend at all rather than a noisy one.
func analyzeTrend(series models.MetricSeries, thresholds config.ThresholdsConfig) *models.TrendResult {
	nodes := make([]string, 0, len(series))
	for node := range series {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	// Pool in node order so timestamp ties cannot reorder across runs.
	var pooled []models.MetricPoint
	for _, node := range nodes {
		pooled = append(pooled, series[node]...)
	}
	if len(pooled) < thresholds.TrendMinSamples {
		return nil
	}

	sort.SliceStable(pooled, func(i, j int) bool {
		return pooled[i].Timestamp.Before(pooled[j].Timestamp)
	})

	values := make([]float64, len(pooled))
	for i, pt := range pooled {
		values[i] = pt.Value
	}

	half := len(values) / 2
	firstAvg := mean(values[:half])
	secondAvg := mean(values[half:])

	direction := "stable"
	switch {
	case secondAvg > firstAvg*thresholds.TrendIncreaseRatio:
		direction = "increasing"
	case secondAvg < firstAvg*thresholds.TrendDecreaseRatio:
		direction = "decreasing"
	}

	magnitude := 0.0
	if firstAvg > 0 {
		magnitude = math.Abs(secondAvg-firstAvg) / firstAvg
	}

	return &models.TrendResult{
		OverallTrend:   direction,
		FirstHalfAvg:   firstAvg,
		SecondHalfAvg:  secondAvg,
		TrendMagnitude: magnitude,
	}
}
