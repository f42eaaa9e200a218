package models

import "time"

// EventType enumerates the closed set of log-derived event kinds.
type EventType string

const (
	EventHandlerUsage       EventType = "handler_usage"
	EventWALSlowSync        EventType = "wal_slow_sync"
	EventWALRolling         EventType = "wal_rolling"
	EventWALSize            EventType = "wal_size"
	EventGCPause            EventType = "gc_pause"
	EventGCEvent            EventType = "gc_event"
	EventHeapUsage          EventType = "heap_usage"
	EventMemoryWarning      EventType = "memory_warning"
	EventCompactionStart    EventType = "compaction_start"
	EventCompactionComplete EventType = "compaction_complete"
	EventMajorCompaction    EventType = "major_compaction"
	EventRegionSplit        EventType = "region_split"
	EventSplitComplete      EventType = "split_complete"
	EventFlushStart         EventType = "flush_start"
	EventFlushComplete      EventType = "flush_complete"
	EventQueueSize          EventType = "queue_size"
	EventQueueFull          EventType = "queue_full"
	EventNetworkTimeout     EventType = "network_timeout"
	EventConnectionReset    EventType = "connection_reset"
	EventTableCreate        EventType = "table_create"
	EventTableDelete        EventType = "table_delete"
	EventTableAccess        EventType = "table_access"
	EventBalancerStart      EventType = "balancer_start"
	EventRegionMove         EventType = "region_move"
	EventClientConnection   EventType = "client_connection"
	EventClientDisconnect   EventType = "client_disconnect"
	EventSlowQuery          EventType = "slow_query"
	EventResponseTime       EventType = "response_time"
)

// Event is one typed observation extracted from a log line. Only the fields
// relevant to the event's type are populated; Line keeps the raw evidence.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Node      string    `json:"node"`
	Value     *float64  `json:"value,omitempty"`
	Table     string    `json:"table,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	HeapUsed  *float64  `json:"used,omitempty"`
	HeapTotal *float64  `json:"total,omitempty"`
	Line      string    `json:"line"`
}

// ErrorKind enumerates the closed error classification set. The classifier
// chain assigns the first matching kind.
type ErrorKind string

const (
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindMemory        ErrorKind = "memory"
	ErrorKindNetwork       ErrorKind = "network"
	ErrorKindIO            ErrorKind = "io"
	ErrorKindPermission    ErrorKind = "permission"
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindData          ErrorKind = "data"
	ErrorKindResource      ErrorKind = "resource"
	ErrorKindFatal         ErrorKind = "fatal"
	ErrorKindError         ErrorKind = "error"
	ErrorKindWarning       ErrorKind = "warning"
	ErrorKindException     ErrorKind = "exception"
	ErrorKindUnknown       ErrorKind = "unknown"
)

// ErrorRecord is a classified error-ish log line.
type ErrorRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Node      string    `json:"node"`
	Kind      ErrorKind `json:"type"`
	Line      string    `json:"line"`
}

// FocusArea names a detector topic that callers may restrict parsing to.
type FocusArea string

const (
	FocusHandler     FocusArea = "handler"
	FocusWAL         FocusArea = "wal"
	FocusGC          FocusArea = "gc"
	FocusMemory      FocusArea = "memory"
	FocusCompaction  FocusArea = "compaction"
	FocusSplit       FocusArea = "split"
	FocusFlush       FocusArea = "flush"
	FocusQueue       FocusArea = "queue"
	FocusNetwork     FocusArea = "network"
	FocusTable       FocusArea = "table"
	FocusBalancer    FocusArea = "balancer"
	FocusErrors      FocusArea = "errors"
	FocusClients     FocusArea = "clients"
	FocusPerformance FocusArea = "performance"
)

// AllFocusAreas lists every detector topic in registry order.
func AllFocusAreas() []FocusArea {
	return []FocusArea{
		FocusHandler, FocusWAL, FocusGC, FocusMemory, FocusCompaction,
		FocusSplit, FocusFlush, FocusQueue, FocusNetwork, FocusTable,
		FocusBalancer, FocusErrors, FocusClients, FocusPerformance,
	}
}

// FocusSet is the enabled-topic lookup built from a caller's focus_areas
// restriction. A nil/empty set enables every topic.
type FocusSet map[FocusArea]struct{}

// NewFocusSet builds a FocusSet from raw topic names, ignoring unknowns.
func NewFocusSet(areas []string) FocusSet {
	if len(areas) == 0 {
		return nil
	}
	set := make(FocusSet, len(areas))
	for _, area := range areas {
		set[FocusArea(area)] = struct{}{}
	}
	return set
}

// Enabled reports whether a topic's detectors should run.
func (s FocusSet) Enabled(area FocusArea) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[area]
	return ok
}
