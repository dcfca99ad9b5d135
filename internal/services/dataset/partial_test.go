package dataset

import (
	"testing"
	"time"

	"BitSight/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildProvisionalBarAggregatesIntraday(t *testing.T) {
	today := day(2025, 2, 23)
	yesterday := &models.DailyBar{
		Date:   day(2025, 2, 22),
		Open:   models.Float(49000),
		High:   models.Float(50500),
		Low:    models.Float(48800),
		Close:  50000,
		Volume: 120,
	}
	intraday := []models.IntradayBar{
		{Time: today.Add(2 * time.Hour), Open: 50100, High: 50400, Low: 50050, Close: 50300, Volume: 5},
		{Time: today.Add(1 * time.Hour), Open: 50010, High: 50200, Low: 49900, Close: 50100, Volume: 3},
		{Time: today.Add(3 * time.Hour), Open: 50300, High: 50600, Low: 50250, Close: 50500, Volume: 7},
		// Previous day's bar must be ignored.
		{Time: today.Add(-time.Hour), Open: 1, High: 99999, Low: 1, Close: 1, Volume: 100},
	}

	bar, ok := BuildProvisionalBar(today, yesterday, intraday)
	if !ok {
		t.Fatalf("expected a provisional bar")
	}
	if !bar.Provisional {
		t.Fatalf("bar not marked provisional")
	}
	if bar.Open == nil || *bar.Open != 50010 {
		t.Fatalf("open = %v, want 50010 (earliest intraday open)", bar.Open)
	}
	if bar.High == nil || *bar.High != 50600 {
		t.Fatalf("high = %v, want 50600", bar.High)
	}
	if bar.Low == nil || *bar.Low != 49900 {
		t.Fatalf("low = %v, want 49900", bar.Low)
	}
	if bar.Close != 50000 {
		t.Fatalf("close = %v, want yesterday's close 50000", bar.Close)
	}
	if bar.Volume != 15 {
		t.Fatalf("volume = %v, want 15", bar.Volume)
	}
}

func TestBuildProvisionalBarNoIntraday(t *testing.T) {
	today := day(2025, 2, 23)
	yesterday := &models.DailyBar{Date: day(2025, 2, 22), Close: 50000}

	bar, ok := BuildProvisionalBar(today, yesterday, nil)
	if !ok {
		t.Fatalf("expected a provisional bar")
	}
	if bar.Open != nil || bar.High != nil || bar.Low != nil {
		t.Fatalf("open/high/low should be unknown, got %v/%v/%v", bar.Open, bar.High, bar.Low)
	}
	if bar.Volume != 0 {
		t.Fatalf("volume = %v, want 0", bar.Volume)
	}
	if bar.Close != 50000 {
		t.Fatalf("close = %v, want 50000", bar.Close)
	}
}

func TestBuildProvisionalBarNoYesterday(t *testing.T) {
	if _, ok := BuildProvisionalBar(day(2025, 2, 23), nil, nil); ok {
		t.Fatalf("expected no provisional bar without yesterday's close")
	}
}
