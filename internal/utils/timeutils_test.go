package utils

import (
	"errors"
	"testing"
	"time"
)

func TestParseLocalTimestamp(t *testing.T) {
	got, err := ParseLocalTimestamp("2025-09-12 16:30:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 9, 12, 16, 30, 5, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseLocalTimestampInvalid(t *testing.T) {
	for _, value := range []string{"", "2025/09/12 16:00:00", "not a time", "2025-09-12T16:00:00Z"} {
		if _, err := ParseLocalTimestamp(value); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("ParseLocalTimestamp(%q) error = %v, want ErrInvalidTimestamp", value, err)
		}
	}
}

func TestFormatLocalTimestampRoundTrip(t *testing.T) {
	original := "2025-09-12 00:00:00"
	parsed, err := ParseLocalTimestamp(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatLocalTimestamp(parsed); got != original {
		t.Fatalf("round trip got %q, want %q", got, original)
	}
}

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(8)
	if got := tracker.Percentile(95); got != 0 {
		t.Fatalf("empty tracker percentile = %v, want 0", got)
	}
	for i := 1; i <= 10; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}
	if tracker.Count() != 8 {
		t.Fatalf("count = %d, want bounded to 8", tracker.Count())
	}
	if got := tracker.Percentile(100); got != 10*time.Millisecond {
		t.Fatalf("p100 = %v, want 10ms", got)
	}
	if got := tracker.Percentile(0); got != 3*time.Millisecond {
		t.Fatalf("p0 = %v, want 3ms after eviction", got)
	}
}
