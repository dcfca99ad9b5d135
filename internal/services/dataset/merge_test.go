package dataset

import (
	"math"
	"testing"
	"time"

	"BitSight/internal/domain/models"
)

func assetRow(d time.Time, close float64) models.AssetRow {
	return models.AssetRow{
		DailyBar: models.DailyBar{Date: d, Close: close},
		CloseMA3: close,
	}
}

func indexRow(d time.Time, close float64) models.IndexRow {
	return models.IndexRow{
		IndexBar: models.IndexBar{Date: d, Close: close},
		CloseMA3: close,
	}
}

func TestMergeAscendingUniqueDates(t *testing.T) {
	asset := []models.AssetRow{
		assetRow(day(2025, 2, 1), 100),
		assetRow(day(2025, 2, 2), 101),
		assetRow(day(2025, 2, 3), 102),
	}
	index := []models.IndexRow{
		indexRow(day(2025, 2, 1), 15),
		indexRow(day(2025, 2, 2), 16),
		indexRow(day(2025, 2, 3), 17),
	}

	rows := Merge(asset, index)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date().Before(rows[i].Date()) {
			t.Fatalf("dates not strictly ascending at %d", i)
		}
	}
	for i, r := range rows {
		if r.Index == nil {
			t.Fatalf("row %d missing index values", i)
		}
	}
}

func TestMergeForwardFill(t *testing.T) {
	asset := []models.AssetRow{
		assetRow(day(2025, 2, 1), 100),
		assetRow(day(2025, 2, 2), 101), // no index entry this day
		assetRow(day(2025, 2, 3), 102),
	}
	index := []models.IndexRow{
		indexRow(day(2025, 2, 1), 15),
		indexRow(day(2025, 2, 3), 17),
	}

	rows := Merge(asset, index)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1].Index == nil || rows[1].Index.Close != 15 {
		t.Fatalf("gap day should carry the previous day's index values, got %+v", rows[1].Index)
	}
	if rows[2].Index == nil || rows[2].Index.Close != 17 {
		t.Fatalf("exact match should win over carry, got %+v", rows[2].Index)
	}
}

func TestMergeLeadingGapKeepsRow(t *testing.T) {
	asset := []models.AssetRow{
		assetRow(day(2025, 2, 1), 100), // before any index data
		assetRow(day(2025, 2, 2), 101),
	}
	index := []models.IndexRow{
		indexRow(day(2025, 2, 2), 16),
	}

	rows := Merge(asset, index)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2; leading rows must not be dropped for missing index data", len(rows))
	}
	if rows[0].Index != nil {
		t.Fatalf("first row should have no index values")
	}
	if rows[1].Index == nil || rows[1].Index.Close != 16 {
		t.Fatalf("second row should match the index entry")
	}
}

func TestMergeDropsMissingClose(t *testing.T) {
	asset := []models.AssetRow{
		assetRow(day(2025, 2, 1), 100),
		assetRow(day(2025, 2, 2), math.NaN()),
		assetRow(day(2025, 2, 3), 102),
	}
	rows := Merge(asset, nil)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !rows[0].Date().Equal(day(2025, 2, 1)) || !rows[1].Date().Equal(day(2025, 2, 3)) {
		t.Fatalf("unexpected dates %v %v", rows[0].Date(), rows[1].Date())
	}
}

func TestMergeDuplicateIndexDateLastWins(t *testing.T) {
	asset := []models.AssetRow{
		assetRow(day(2025, 2, 1), 100),
	}
	index := []models.IndexRow{
		indexRow(day(2025, 2, 1), 15),
		indexRow(day(2025, 2, 1), 18),
	}
	rows := Merge(asset, index)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Index == nil || rows[0].Index.Close != 18 {
		t.Fatalf("expected the chronologically last index entry, got %+v", rows[0].Index)
	}
}

func TestMergeTruncatesTimeOfDay(t *testing.T) {
	asset := []models.AssetRow{
		assetRow(day(2025, 2, 1).Add(10*time.Hour), 100),
	}
	index := []models.IndexRow{
		indexRow(day(2025, 2, 1).Add(21*time.Hour), 15),
	}
	rows := Merge(asset, index)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Index == nil {
		t.Fatalf("rows on the same calendar day must join despite time-of-day")
	}
	if !rows[0].Date().Equal(day(2025, 2, 1)) {
		t.Fatalf("merged date should be truncated to midnight UTC, got %v", rows[0].Date())
	}
}
