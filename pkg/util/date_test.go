package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2025, 3, 7, 23, 59, 0, 0, time.FixedZone("UTC+5", 5*3600))
	if got := DayKey(ts); got != "2025-03-07" {
		t.Fatalf("unexpected day key %q", got)
	}
}

func TestParseDay(t *testing.T) {
	got, ok := ParseDay("2025-03-07")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2025 || got.Month() != 3 || got.Day() != 7 {
		t.Fatalf("unexpected date %v", got)
	}
	if _, ok := ParseDay("not-a-date"); ok {
		t.Fatalf("expected parse failure")
	}
}

func TestTruncateDay(t *testing.T) {
	ts := time.Date(2025, 3, 7, 18, 30, 12, 0, time.UTC)
	got := TruncateDay(ts)
	if got.Hour() != 0 || got.Minute() != 0 || got.Day() != 7 {
		t.Fatalf("unexpected truncation %v", got)
	}
}
