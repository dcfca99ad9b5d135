package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"BitSight/internal/domain/models"
)

func testBuilder(t *testing.T, market *fakeMarket, index *fakeIndex) *DatasetBuilder {
	t.Helper()
	cfg := BuilderConfig{Symbol: "BTCUSDT", HistoryDays: 10, IndexDays: 30}
	b := NewDatasetBuilder(cfg, market, index, testLogger(t))
	b.now = func() time.Time { return day(2025, 3, 10).Add(14 * time.Hour) }
	return b
}

func indexBars(end time.Time, n int) []models.IndexBar {
	out := make([]models.IndexBar, 0, n)
	for i := n; i >= 1; i-- {
		d := end.AddDate(0, 0, -i)
		out = append(out, models.IndexBar{Date: d, Open: 15, High: 17, Low: 14, Close: 16})
	}
	return out
}

func TestBuildAppendsProvisionalDay(t *testing.T) {
	today := day(2025, 3, 10)
	market := &fakeMarket{
		daily: closedBars(today, 5, 100),
		intraday: []models.IntradayBar{
			{Time: today.Add(time.Hour), Open: 105, High: 106, Low: 104, Close: 105.5, Volume: 3},
		},
	}
	index := &fakeIndex{bars: indexBars(today, 10)}

	snap, err := testBuilder(t, market, index).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	last := snap.Rows[len(snap.Rows)-1]
	if !last.Date().Equal(today) {
		t.Fatalf("last row is %v, want today %v", last.Date(), today)
	}
	if !last.Asset.Provisional {
		t.Fatal("today's row should be provisional")
	}
	yesterdayClose := market.daily[len(market.daily)-1].Close
	if last.Asset.Close != yesterdayClose {
		t.Fatalf("provisional close %v, want yesterday's close %v", last.Asset.Close, yesterdayClose)
	}
	if last.Index == nil {
		t.Fatal("index columns missing on provisional row")
	}
}

func TestBuildWithoutIntradayStillHasToday(t *testing.T) {
	today := day(2025, 3, 10)
	market := &fakeMarket{
		daily:       closedBars(today, 5, 100),
		intradayErr: errors.New("klines unavailable"),
	}
	snap, err := testBuilder(t, market, &fakeIndex{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	last := snap.Rows[len(snap.Rows)-1]
	if !last.Date().Equal(today) || !last.Asset.Provisional {
		t.Fatalf("expected provisional today from prior close alone, got %v provisional=%v",
			last.Date(), last.Asset.Provisional)
	}
	if last.Asset.Open != nil {
		t.Fatal("open must stay unknown without intraday data")
	}
}

func TestBuildPrimarySeriesFailureFails(t *testing.T) {
	boom := errors.New("binance 503")
	market := &fakeMarket{dailyErr: boom}
	if _, err := testBuilder(t, market, &fakeIndex{}).Build(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected primary failure to propagate, got %v", err)
	}
}

func TestBuildIndexFailureFails(t *testing.T) {
	today := day(2025, 3, 10)
	market := &fakeMarket{daily: closedBars(today, 5, 100)}
	boom := errors.New("cboe unreachable")
	index := &fakeIndex{err: boom}

	if _, err := testBuilder(t, market, index).Build(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected index failure to propagate, got %v", err)
	}
}

func TestBuildSkipsProvisionalWhenGapBeforeToday(t *testing.T) {
	today := day(2025, 3, 10)
	// Last closed bar is two days back, so yesterday's close is unknown.
	market := &fakeMarket{daily: closedBars(today.AddDate(0, 0, -1), 5, 100)}

	snap, err := testBuilder(t, market, &fakeIndex{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	last := snap.Rows[len(snap.Rows)-1]
	if last.Asset.Provisional {
		t.Fatal("no provisional row without a closed bar for yesterday")
	}
	if last.Date().Equal(today) {
		t.Fatal("today must be absent when it cannot be synthesized")
	}
}
