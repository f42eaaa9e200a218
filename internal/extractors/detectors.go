// Package extractors turns raw HBase log lines into typed events and
// classified errors. Detection is an ordered registry of independent matcher
// units; a single line may satisfy any number of them.
package extractors

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diagstack/hbase-diag/internal/models"
)

// Detector is one matcher unit. Match inspects a line and, on a hit, returns
// the type-specific payload of the event; the caller stamps timestamp, node
// and raw line.
type Detector struct {
	Topic models.FocusArea
	Name  string
	Match func(line string) (models.Event, bool)
}

var (
	// lineTimestampRe anchors on the log4j prefix "2025-09-12 16:03:21,457".
	lineTimestampRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}),\d{3}`)

	handlerRe            = regexp.MustCompile(`handler=(\d+)`)
	walSlowSyncRe        = regexp.MustCompile(`Slow sync cost: (\d+) ms`)
	walSizeRe            = regexp.MustCompile(`WAL.*size=(\d+)`)
	gcPauseRe            = regexp.MustCompile(`GC pause (\d+)ms`)
	heapRe               = regexp.MustCompile(`heap.*?(\d+)M/(\d+)M`)
	compactionCompleteRe = regexp.MustCompile(`Completed compaction.*?(\d+)ms`)
	flushCompleteRe      = regexp.MustCompile(`Flushed.*?(\d+)ms`)
	queueRe              = regexp.MustCompile(`queue=(\d+)`)
	tableRe              = regexp.MustCompile(`table=([^,\s]+)`)
	clientConnRe         = regexp.MustCompile(`connection: ([\d\.]+):\d+`)
	slowQueryRe          = regexp.MustCompile(`Slow query.*?(\d+)ms`)
	responseTimeRe       = regexp.MustCompile(`response time.*?(\d+)ms`)
)

var gcCollectors = []string{"ParNew", "CMS", "G1", "Full GC"}

// ExtractTimestamp pulls the line timestamp in local time. Lines without a
// parseable timestamp are not log entries and are skipped by the parser.
func ExtractTimestamp(line string) (time.Time, bool) {
	match := lineTimestampRe.FindStringSubmatch(line)
	if match == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", match[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Registry returns the fixed, ordered detector catalog. Detectors are not
// mutually exclusive; error-ish lines are handled separately by DetectError.
func Registry() []Detector {
	return []Detector{
		{Topic: models.FocusHandler, Name: "handler_usage", Match: numericMatch(handlerRe, models.EventHandlerUsage)},

		{Topic: models.FocusWAL, Name: "wal_slow_sync", Match: numericMatch(walSlowSyncRe, models.EventWALSlowSync)},
		{Topic: models.FocusWAL, Name: "wal_rolling", Match: func(line string) (models.Event, bool) {
			if strings.Contains(line, "Rolling") && strings.Contains(line, "WAL") {
				return models.Event{Type: models.EventWALRolling}, true
			}
			return models.Event{}, false
		}},
		{Topic: models.FocusWAL, Name: "wal_size", Match: numericMatch(walSizeRe, models.EventWALSize)},

		{Topic: models.FocusGC, Name: "gc_pause", Match: numericMatch(gcPauseRe, models.EventGCPause)},
		{Topic: models.FocusGC, Name: "gc_event", Match: func(line string) (models.Event, bool) {
			if !strings.Contains(line, "GC") {
				return models.Event{}, false
			}
			for _, collector := range gcCollectors {
				if strings.Contains(line, collector) {
					return models.Event{Type: models.EventGCEvent}, true
				}
			}
			return models.Event{}, false
		}},

		{Topic: models.FocusMemory, Name: "heap_usage", Match: func(line string) (models.Event, bool) {
			match := heapRe.FindStringSubmatch(line)
			if match == nil {
				return models.Event{}, false
			}
			used, _ := strconv.ParseFloat(match[1], 64)
			total, _ := strconv.ParseFloat(match[2], 64)
			return models.Event{Type: models.EventHeapUsage, HeapUsed: &used, HeapTotal: &total}, true
		}},
		{Topic: models.FocusMemory, Name: "memory_warning", Match: func(line string) (models.Event, bool) {
			if strings.Contains(line, "OutOfMemoryError") || strings.Contains(strings.ToLower(line), "low memory") {
				return models.Event{Type: models.EventMemoryWarning}, true
			}
			return models.Event{}, false
		}},

		{Topic: models.FocusCompaction, Name: "compaction_start", Match: literalMatch("Starting compaction", models.EventCompactionStart)},
		{Topic: models.FocusCompaction, Name: "compaction_complete", Match: numericMatch(compactionCompleteRe, models.EventCompactionComplete)},
		{Topic: models.FocusCompaction, Name: "major_compaction", Match: lowerMatch("major compaction", models.EventMajorCompaction)},

		{Topic: models.FocusSplit, Name: "region_split", Match: func(line string) (models.Event, bool) {
			if strings.Contains(line, "Splitting") && strings.Contains(strings.ToLower(line), "region") {
				return models.Event{Type: models.EventRegionSplit}, true
			}
			return models.Event{}, false
		}},
		{Topic: models.FocusSplit, Name: "split_complete", Match: func(line string) (models.Event, bool) {
			if strings.Contains(line, "Split") && strings.Contains(strings.ToLower(line), "completed") {
				return models.Event{Type: models.EventSplitComplete}, true
			}
			return models.Event{}, false
		}},

		{Topic: models.FocusFlush, Name: "flush_start", Match: literalMatch("Flushing", models.EventFlushStart)},
		{Topic: models.FocusFlush, Name: "flush_complete", Match: numericMatch(flushCompleteRe, models.EventFlushComplete)},

		{Topic: models.FocusQueue, Name: "queue_size", Match: numericMatch(queueRe, models.EventQueueSize)},
		{Topic: models.FocusQueue, Name: "queue_full", Match: func(line string) (models.Event, bool) {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "queue full") || strings.Contains(lower, "queue overflow") {
				return models.Event{Type: models.EventQueueFull}, true
			}
			return models.Event{}, false
		}},

		{Topic: models.FocusNetwork, Name: "network_timeout", Match: anyLiteralMatch(models.EventNetworkTimeout, "SocketTimeoutException", "Connection timeout")},
		{Topic: models.FocusNetwork, Name: "connection_reset", Match: anyLiteralMatch(models.EventConnectionReset, "Connection reset", "Connection refused")},

		{Topic: models.FocusTable, Name: "table_create", Match: literalMatch("Creating table", models.EventTableCreate)},
		{Topic: models.FocusTable, Name: "table_delete", Match: literalMatch("Deleting table", models.EventTableDelete)},
		{Topic: models.FocusTable, Name: "table_access", Match: func(line string) (models.Event, bool) {
			match := tableRe.FindStringSubmatch(line)
			if match == nil {
				return models.Event{}, false
			}
			return models.Event{Type: models.EventTableAccess, Table: match[1]}, true
		}},

		{Topic: models.FocusBalancer, Name: "balancer_start", Match: func(line string) (models.Event, bool) {
			if strings.Contains(line, "Balancer") && strings.Contains(strings.ToLower(line), "start") {
				return models.Event{Type: models.EventBalancerStart}, true
			}
			return models.Event{}, false
		}},
		{Topic: models.FocusBalancer, Name: "region_move", Match: literalMatch("Moving region", models.EventRegionMove)},

		{Topic: models.FocusClients, Name: "client_connection", Match: func(line string) (models.Event, bool) {
			match := clientConnRe.FindStringSubmatch(line)
			if match == nil {
				return models.Event{}, false
			}
			return models.Event{Type: models.EventClientConnection, ClientIP: match[1]}, true
		}},
		{Topic: models.FocusClients, Name: "client_disconnect", Match: func(line string) (models.Event, bool) {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "client disconnect") || strings.Contains(lower, "connection closed") {
				return models.Event{Type: models.EventClientDisconnect}, true
			}
			return models.Event{}, false
		}},

		{Topic: models.FocusPerformance, Name: "slow_query", Match: numericMatch(slowQueryRe, models.EventSlowQuery)},
		{Topic: models.FocusPerformance, Name: "response_time", Match: numericMatch(responseTimeRe, models.EventResponseTime)},
	}
}

func numericMatch(re *regexp.Regexp, eventType models.EventType) func(string) (models.Event, bool) {
	return func(line string) (models.Event, bool) {
		match := re.FindStringSubmatch(line)
		if match == nil {
			return models.Event{}, false
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return models.Event{}, false
		}
		return models.Event{Type: eventType, Value: &value}, true
	}
}

func literalMatch(literal string, eventType models.EventType) func(string) (models.Event, bool) {
	return func(line string) (models.Event, bool) {
		if strings.Contains(line, literal) {
			return models.Event{Type: eventType}, true
		}
		return models.Event{}, false
	}
}

func lowerMatch(literal string, eventType models.EventType) func(string) (models.Event, bool) {
	return func(line string) (models.Event, bool) {
		if strings.Contains(strings.ToLower(line), literal) {
			return models.Event{Type: eventType}, true
		}
		return models.Event{}, false
	}
}

func anyLiteralMatch(eventType models.EventType, literals ...string) func(string) (models.Event, bool) {
	return func(line string) (models.Event, bool) {
		for _, literal := range literals {
			if strings.Contains(line, literal) {
				return models.Event{Type: eventType}, true
			}
		}
		return models.Event{}, false
	}
}
