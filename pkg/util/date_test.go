package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2025-02-23T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimePlainDate(t *testing.T) {
    got, ok := ParseTime("2025-02-23")
    if !ok {
        t.Fatalf("expected ok")
    }
    want := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("got %v want %v", got, want)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2025, 2, 23, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestDayUTC(t *testing.T) {
    loc := time.FixedZone("UTC+9", 9*3600)
    // 02:30 on the 24th in UTC+9 is still the 23rd in UTC.
    in := time.Date(2025, 2, 24, 2, 30, 0, 0, loc)
    got := DayUTC(in)
    want := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("got %v want %v", got, want)
    }
}

func TestSameDayUTC(t *testing.T) {
    a := time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC)
    b := time.Date(2025, 2, 23, 23, 59, 59, 0, time.UTC)
    if !SameDayUTC(a, b) {
        t.Fatalf("expected same day")
    }
    if SameDayUTC(a, b.Add(time.Second)) {
        t.Fatalf("expected different day")
    }
}
