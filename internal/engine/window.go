package engine

import (
	"time"

	"github.com/diagstack/hbase-diag/internal/models"
	"github.com/diagstack/hbase-diag/internal/utils"
)

// ResolveLogWindow normalises optional start/end strings into a concrete
// inclusive window: both bounds as given; start only extends by defaultSpan;
// neither ends the window at now. Parse failures are fatal for the call and
// happen before any file is touched.
func ResolveLogWindow(startStr, endStr string, defaultSpan time.Duration, now time.Time) (models.TimeWindow, error) {
	var start, end time.Time

	switch {
	case startStr != "" && endStr != "":
		var err error
		if start, err = utils.ParseLocalTimestamp(startStr); err != nil {
			return models.TimeWindow{}, err
		}
		if end, err = utils.ParseLocalTimestamp(endStr); err != nil {
			return models.TimeWindow{}, err
		}
	case startStr != "":
		var err error
		if start, err = utils.ParseLocalTimestamp(startStr); err != nil {
			return models.TimeWindow{}, err
		}
		end = start.Add(defaultSpan)
	default:
		end = now
		start = end.Add(-defaultSpan)
	}

	return models.TimeWindow{
		Start:    start,
		End:      end,
		StartStr: utils.FormatLocalTimestamp(start),
		EndStr:   utils.FormatLocalTimestamp(end),
	}, nil
}

// ResolveMetricsWindow resolves the effective metrics interval: a target time
// opens an hoursRange-wide window starting there; with no target the window
// is the hoursRange ending at now.
func ResolveMetricsWindow(targetStr string, hoursRange, defaultHours int, now time.Time) (models.MetricsWindow, error) {
	if hoursRange <= 0 {
		hoursRange = defaultHours
	}
	span := time.Duration(hoursRange) * time.Hour

	var start, end time.Time
	if targetStr != "" {
		target, err := utils.ParseLocalTimestamp(targetStr)
		if err != nil {
			return models.MetricsWindow{}, err
		}
		start = target
		end = target.Add(span)
	} else {
		end = now
		start = end.Add(-span)
	}

	return models.MetricsWindow{
		TargetTime: targetStr,
		HoursRange: hoursRange,
		Start:      start,
		End:        end,
		StartStr:   utils.FormatLocalTimestamp(start),
		EndStr:     utils.FormatLocalTimestamp(end),
	}, nil
}
