package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/pkg/cache"
)

func TestSnapshotCacheRoundTrip(t *testing.T) {
	store := NewSnapshotCache(cache.NewMemoryCache(), "snap")
	ctx := context.Background()

	snap := &models.Snapshot{
		Symbol:  "BTCUSDT",
		BuiltAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Rows: []models.MergedRow{
			{
				Asset: models.AssetRow{
					DailyBar: models.DailyBar{
						Date:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
						Open:  models.Float(100),
						Close: 105,
					},
					OpenMA3:  models.Float(101),
					CloseMA3: 102,
				},
				Index: &models.IndexRow{
					IndexBar: models.IndexBar{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Close: 17},
					Mean:     16.5,
				},
			},
		},
	}

	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Symbol != snap.Symbol || !got.BuiltAt.Equal(snap.BuiltAt) {
		t.Fatalf("metadata lost: %+v", got)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(got.Rows))
	}
	row := got.Rows[0]
	if row.Asset.Open == nil || *row.Asset.Open != 100 {
		t.Fatalf("optional field lost: %+v", row.Asset.Open)
	}
	if row.Index == nil || row.Index.Mean != 16.5 {
		t.Fatalf("index side lost: %+v", row.Index)
	}
}

func TestSnapshotCacheMiss(t *testing.T) {
	store := NewSnapshotCache(cache.NewMemoryCache(), "snap")
	if _, err := store.Load(context.Background()); !errors.Is(err, drepo.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotCacheOverwrite(t *testing.T) {
	store := NewSnapshotCache(cache.NewMemoryCache(), "snap")
	ctx := context.Background()

	old := &models.Snapshot{Symbol: "BTCUSDT", Rows: make([]models.MergedRow, 3)}
	fresh := &models.Snapshot{Symbol: "BTCUSDT", Rows: make([]models.MergedRow, 5)}
	for i := range old.Rows {
		old.Rows[i].Asset.Close = 1
	}
	for i := range fresh.Rows {
		fresh.Rows[i].Asset.Close = 2
	}

	if err := store.Save(ctx, old); err != nil {
		t.Fatalf("Save old: %v", err)
	}
	if err := store.Save(ctx, fresh); err != nil {
		t.Fatalf("Save fresh: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Rows) != 5 || got.Rows[0].Asset.Close != 2 {
		t.Fatalf("old snapshot survived overwrite: %d rows", len(got.Rows))
	}
}
