package cboe

import (
	"errors"
	"testing"
	"time"

	"BitSight/internal/services/dataset"
)

const sampleCSV = `DATE,OPEN,HIGH,LOW,CLOSE
01/02/2025,17.50,18.20,16.90,17.10
01/03/2025,17.10,19.00,17.00,18.50
01/06/2025,18.50,18.80,17.60,17.90
`

func TestParseHistory(t *testing.T) {
	bars, err := ParseHistory([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseHistory: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}

	first := bars[0]
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Fatalf("date %v, want %v", first.Date, want)
	}
	if first.Open != 17.50 || first.High != 18.20 || first.Low != 16.90 || first.Close != 17.10 {
		t.Fatalf("bad first bar: %+v", first)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Date.Before(bars[i].Date) {
			t.Fatalf("bars not date-ascending at %d", i)
		}
	}
}

func TestParseHistoryReorderedColumns(t *testing.T) {
	csv := "CLOSE,DATE,LOW,HIGH,OPEN\n17.10,01/02/2025,16.90,18.20,17.50\n"
	bars, err := ParseHistory([]byte(csv))
	if err != nil {
		t.Fatalf("ParseHistory: %v", err)
	}
	if bars[0].Close != 17.10 || bars[0].Open != 17.50 {
		t.Fatalf("columns not matched by name: %+v", bars[0])
	}
}

func TestParseHistoryISODates(t *testing.T) {
	csv := "DATE,OPEN,HIGH,LOW,CLOSE\n2025-01-02,17.50,18.20,16.90,17.10\n"
	bars, err := ParseHistory([]byte(csv))
	if err != nil {
		t.Fatalf("ParseHistory: %v", err)
	}
	if bars[0].Date != time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("bad date %v", bars[0].Date)
	}
}

func TestParseHistoryMissingColumn(t *testing.T) {
	csv := "DATE,OPEN,HIGH,LOW\n01/02/2025,17.50,18.20,16.90\n"
	_, err := ParseHistory([]byte(csv))
	if !errors.Is(err, dataset.ErrMalformedUpstream) {
		t.Fatalf("expected ErrMalformedUpstream, got %v", err)
	}
}

func TestParseHistoryBadNumber(t *testing.T) {
	csv := "DATE,OPEN,HIGH,LOW,CLOSE\n01/02/2025,n/a,18.20,16.90,17.10\n"
	_, err := ParseHistory([]byte(csv))
	if !errors.Is(err, dataset.ErrMalformedUpstream) {
		t.Fatalf("expected ErrMalformedUpstream, got %v", err)
	}
}

func TestParseHistoryEmpty(t *testing.T) {
	_, err := ParseHistory([]byte("DATE,OPEN,HIGH,LOW,CLOSE\n"))
	if !errors.Is(err, dataset.ErrMalformedUpstream) {
		t.Fatalf("expected ErrMalformedUpstream, got %v", err)
	}
}
