package extractors

import (
	"testing"
	"time"

	"github.com/diagstack/hbase-diag/internal/models"
)

func matchLine(t *testing.T, line string) []models.Event {
	t.Helper()
	var events []models.Event
	for _, det := range Registry() {
		if event, ok := det.Match(line); ok {
			events = append(events, event)
		}
	}
	return events
}

func hasType(events []models.Event, eventType models.EventType) *models.Event {
	for i := range events {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

func TestExtractTimestamp(t *testing.T) {
	line := "2025-09-12 16:03:21,457 INFO  [RpcServer] ipc.RpcServer: handler=12"
	ts, ok := ExtractTimestamp(line)
	if !ok {
		t.Fatal("expected timestamp match")
	}
	want := time.Date(2025, 9, 12, 16, 3, 21, 0, time.Local)
	if !ts.Equal(want) {
		t.Fatalf("got %v, want %v", ts, want)
	}

	if _, ok := ExtractTimestamp("no timestamp here"); ok {
		t.Fatal("expected no match for bare line")
	}
	if _, ok := ExtractTimestamp("2025-09-12 16:03:21 missing millis"); ok {
		t.Fatal("fractional suffix is required")
	}
}

func TestNumericDetectors(t *testing.T) {
	cases := []struct {
		line  string
		typ   models.EventType
		value float64
	}{
		{"ipc.RpcServer: callQueueLen=0 handler=59 active", models.EventHandlerUsage, 59},
		{"wal.FSHLog: Slow sync cost: 250 ms, current pipeline", models.EventWALSlowSync, 250},
		{"wal.FSHLog: WAL file rolled, size=134217728", models.EventWALSize, 134217728},
		{"util.JvmPauseMonitor: Detected GC pause 1200ms", models.EventGCPause, 1200},
		{"regionserver.HRegion: Completed compaction of 3 files in 4500ms", models.EventCompactionComplete, 4500},
		{"regionserver.HRegion: Flushed memstore in 320ms", models.EventFlushComplete, 320},
		{"ipc.RpcServer: callQueueLen queue=17 waiting", models.EventQueueSize, 17},
		{"ipc.RpcServer: Slow query on region took 2200ms", models.EventSlowQuery, 2200},
		{"metrics: average response time was 95ms", models.EventResponseTime, 95},
	}
	for _, tc := range cases {
		event := hasType(matchLine(t, tc.line), tc.typ)
		if event == nil {
			t.Errorf("%q: no %s event", tc.line, tc.typ)
			continue
		}
		if event.Value == nil || *event.Value != tc.value {
			t.Errorf("%q: value = %v, want %v", tc.line, event.Value, tc.value)
		}
	}
}

func TestLiteralDetectors(t *testing.T) {
	cases := []struct {
		line string
		typ  models.EventType
	}{
		{"wal.AbstractFSWAL: Rolling WAL writer", models.EventWALRolling},
		{"gc: ParNew GC collection finished", models.EventGCEvent},
		{"java.lang.OutOfMemoryError: Java heap space", models.EventMemoryWarning},
		{"system running on LOW MEMORY", models.EventMemoryWarning},
		{"regionserver.CompactSplit: Starting compaction on region", models.EventCompactionStart},
		{"master.HMaster: triggered Major Compaction for table t1", models.EventMajorCompaction},
		{"regionserver.SplitRequest: Splitting Region r1", models.EventRegionSplit},
		{"regionserver.SplitRequest: Split of r1 Completed", models.EventSplitComplete},
		{"regionserver.MemStoreFlusher: Flushing 1/1 column families", models.EventFlushStart},
		{"ipc.RpcServer: call queue full, rejecting", models.EventQueueFull},
		{"java.net.SocketTimeoutException: 60000 millis", models.EventNetworkTimeout},
		{"java.io.IOException: Connection reset by peer", models.EventConnectionReset},
		{"master.HMaster: Creating table demo", models.EventTableCreate},
		{"master.HMaster: Deleting table demo", models.EventTableDelete},
		{"balancer.StochasticLoadBalancer: Balancer is starting", models.EventBalancerStart},
		{"master.HMaster: Moving region r1 to rs2", models.EventRegionMove},
		{"ipc.RpcServer: client Connection Closed", models.EventClientDisconnect},
	}
	for _, tc := range cases {
		if hasType(matchLine(t, tc.line), tc.typ) == nil {
			t.Errorf("%q: expected %s event", tc.line, tc.typ)
		}
	}
}

func TestFieldExtractingDetectors(t *testing.T) {
	heap := hasType(matchLine(t, "regionserver.HeapMemoryManager: heap usage 812M/1024M"), models.EventHeapUsage)
	if heap == nil || heap.HeapUsed == nil || heap.HeapTotal == nil {
		t.Fatalf("heap event missing fields: %+v", heap)
	}
	if *heap.HeapUsed != 812 || *heap.HeapTotal != 1024 {
		t.Errorf("heap = %v/%v, want 812/1024", *heap.HeapUsed, *heap.HeapTotal)
	}

	table := hasType(matchLine(t, "ipc.RpcServer: scan table=usertable, region=r1"), models.EventTableAccess)
	if table == nil || table.Table != "usertable" {
		t.Fatalf("table event = %+v", table)
	}

	client := hasType(matchLine(t, "ipc.RpcServer: new connection: 10.25.0.9:42133"), models.EventClientConnection)
	if client == nil || client.ClientIP != "10.25.0.9" {
		t.Fatalf("client event = %+v", client)
	}
}

func TestDetectorsAreNotMutuallyExclusive(t *testing.T) {
	line := "ipc.RpcServer: handler=61 queue=12 table=usertable"
	events := matchLine(t, line)
	for _, typ := range []models.EventType{models.EventHandlerUsage, models.EventQueueSize, models.EventTableAccess} {
		if hasType(events, typ) == nil {
			t.Errorf("expected %s from shared line", typ)
		}
	}
}

func TestDetectError(t *testing.T) {
	if _, ok := DetectError("INFO routine startup message"); ok {
		t.Fatal("plain info line should not be an error")
	}
	kind, ok := DetectError("WARN  [sync] wal.FSHLog: sync slow")
	if !ok || kind != models.ErrorKindWarning {
		t.Fatalf("WARN line = (%v, %v)", kind, ok)
	}
}

func TestClassifyErrorPriorityChain(t *testing.T) {
	cases := []struct {
		line string
		want models.ErrorKind
	}{
		{"ERROR Call timed out after 60000ms", models.ErrorKindTimeout},
		{"ERROR java.lang.OutOfMemoryError: GC overhead", models.ErrorKindMemory},
		{"ERROR socket closed unexpectedly", models.ErrorKindNetwork},
		{"ERROR java.io.IOException on write", models.ErrorKindIO},
		{"ERROR access denied for user hbase", models.ErrorKindPermission},
		{"ERROR bad property in hbase-site.xml", models.ErrorKindConfiguration},
		{"ERROR block checksum mismatch", models.ErrorKindData},
		{"ERROR namespace quota exceeded", models.ErrorKindResource},
		{"FATAL master exiting", models.ErrorKindFatal},
		{"ERROR unexpected state", models.ErrorKindError},
		{"WARN region assignment delayed", models.ErrorKindWarning},
		{"Exception in handler thread", models.ErrorKindException},
	}
	for _, tc := range cases {
		if got := ClassifyError(tc.line); got != tc.want {
			t.Errorf("ClassifyError(%q) = %s, want %s", tc.line, got, tc.want)
		}
	}
}

func TestClassifyErrorTimeoutBeatsNetwork(t *testing.T) {
	// "Connection timeout" carries both families; the chain ranks timeout first.
	if got := ClassifyError("ERROR Connection timeout to peer"); got != models.ErrorKindTimeout {
		t.Fatalf("got %s, want timeout", got)
	}
}

func TestRegistryTopicsAreKnownFocusAreas(t *testing.T) {
	known := make(map[models.FocusArea]struct{})
	for _, area := range models.AllFocusAreas() {
		known[area] = struct{}{}
	}
	for _, det := range Registry() {
		if _, ok := known[det.Topic]; !ok {
			t.Errorf("detector %s has unknown topic %q", det.Name, det.Topic)
		}
	}
}
