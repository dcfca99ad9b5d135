package dataset

import (
	"errors"
	"testing"
	"time"

	"BitSight/internal/domain/models"
)

func closedBar(d time.Time, open, high, low, close, volume float64) models.DailyBar {
	return models.DailyBar{
		Date:   d,
		Open:   models.Float(open),
		High:   models.Float(high),
		Low:    models.Float(low),
		Close:  close,
		Volume: volume,
	}
}

func TestDeriveAssetWindowCount(t *testing.T) {
	start := day(2025, 2, 1)
	for _, tc := range []struct {
		n    int
		want int
	}{
		{0, 0}, {1, 0}, {2, 0}, {3, 1}, {5, 3}, {10, 8},
	} {
		bars := make([]models.DailyBar, 0, tc.n)
		for i := 0; i < tc.n; i++ {
			bars = append(bars, closedBar(start.AddDate(0, 0, i), 100, 110, 90, 105, 10))
		}
		rows, err := DeriveAsset(bars)
		if err != nil {
			t.Fatalf("n=%d: %v", tc.n, err)
		}
		if len(rows) != tc.want {
			t.Fatalf("n=%d: got %d rows, want %d", tc.n, len(rows), tc.want)
		}
	}
}

func TestDeriveAssetMovingAverages(t *testing.T) {
	bars := []models.DailyBar{
		closedBar(day(2025, 2, 1), 10, 12, 8, 11, 100),
		closedBar(day(2025, 2, 2), 20, 22, 18, 21, 200),
		closedBar(day(2025, 2, 3), 30, 32, 28, 31, 300),
		closedBar(day(2025, 2, 4), 40, 42, 38, 41, 400),
	}
	rows, err := DeriveAsset(bars)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.CloseMA3 != 21 {
		t.Fatalf("close_ma3 = %v, want 21", first.CloseMA3)
	}
	if first.VolumeMA3 != 200 {
		t.Fatalf("volume_ma3 = %v, want 200", first.VolumeMA3)
	}
	if first.OpenMA3 == nil || *first.OpenMA3 != 20 {
		t.Fatalf("open_ma3 = %v, want 20", first.OpenMA3)
	}
	if first.OpenLag == nil || *first.OpenLag != 20 {
		t.Fatalf("open_shift = %v, want 20", first.OpenLag)
	}
	if first.CloseLag != 21 {
		t.Fatalf("close_shift = %v, want 21", first.CloseLag)
	}

	second := rows[1]
	if second.CloseMA3 != 31 {
		t.Fatalf("close_ma3 = %v, want 31", second.CloseMA3)
	}
}

func TestDeriveAssetLabel(t *testing.T) {
	mk := func(open, close float64) []models.DailyBar {
		return []models.DailyBar{
			closedBar(day(2025, 2, 1), 100, 110, 90, 100, 10),
			closedBar(day(2025, 2, 2), 100, 110, 90, 100, 10),
			closedBar(day(2025, 2, 3), open, 110, 90, close, 10),
		}
	}

	// 0.6% gain is strictly above the 0.5% threshold.
	rows, err := DeriveAsset(mk(100, 100.6))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if rows[0].Indication != 1 {
		t.Fatalf("indication = %d, want 1", rows[0].Indication)
	}

	// 0.4% gain stays below it.
	rows, err = DeriveAsset(mk(100, 100.4))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if rows[0].Indication != 0 {
		t.Fatalf("indication = %d, want 0", rows[0].Indication)
	}
}

func TestDeriveAssetProvisionalWithoutOpen(t *testing.T) {
	bars := []models.DailyBar{
		closedBar(day(2025, 2, 1), 10, 12, 8, 11, 100),
		closedBar(day(2025, 2, 2), 20, 22, 18, 21, 200),
		{Date: day(2025, 2, 3), Close: 21, Provisional: true}, // no intraday data yet
	}
	rows, err := DeriveAsset(bars)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.OpenMA3 != nil || row.HighMA3 != nil || row.LowMA3 != nil {
		t.Fatalf("open/high/low MA should be undefined with a missing open")
	}
	if row.CloseMA3 == 0 {
		t.Fatalf("close_ma3 should still be defined")
	}
	if row.Variation != nil {
		t.Fatalf("variation should be undefined without an open")
	}
	if row.Indication != 0 {
		t.Fatalf("indication = %d, want 0", row.Indication)
	}
}

func TestDeriveAssetZeroOpen(t *testing.T) {
	bars := []models.DailyBar{
		closedBar(day(2025, 2, 1), 10, 12, 8, 11, 100),
		closedBar(day(2025, 2, 2), 0, 22, 18, 21, 200),
		closedBar(day(2025, 2, 3), 30, 32, 28, 31, 300),
	}
	if _, err := DeriveAsset(bars); !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("err = %v, want ErrInvalidSeries", err)
	}
}

func TestDeriveIndex(t *testing.T) {
	bars := []models.IndexBar{
		{Date: day(2025, 2, 1), Open: 15, High: 16, Low: 14, Close: 15.5},
		{Date: day(2025, 2, 2), Open: 16, High: 18, Low: 14, Close: 17},
		{Date: day(2025, 2, 3), Open: 17, High: 20, Low: 14, Close: 19},
	}
	rows := DeriveIndex(bars)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Variation != 6 {
		t.Fatalf("variation = %v, want 6", row.Variation)
	}
	if row.Mean != 17 {
		t.Fatalf("mean = %v, want 17", row.Mean)
	}
	// Variations are 2, 4, 6.
	if row.VariationMA3 != 4 {
		t.Fatalf("variation_ma3 = %v, want 4", row.VariationMA3)
	}
	// Means are 15, 16, 17.
	if row.MeanMA3 != 16 {
		t.Fatalf("mean_ma3 = %v, want 16", row.MeanMA3)
	}
	if row.OpenMA3 != 16 {
		t.Fatalf("open_ma3 = %v, want 16", row.OpenMA3)
	}
}

func TestDeriveIndexTooShort(t *testing.T) {
	bars := []models.IndexBar{
		{Date: day(2025, 2, 1), Open: 15, High: 16, Low: 14, Close: 15.5},
		{Date: day(2025, 2, 2), Open: 16, High: 18, Low: 14, Close: 17},
	}
	if rows := DeriveIndex(bars); rows != nil {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
