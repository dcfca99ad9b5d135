package repository

import (
	"context"
	"errors"
	"time"

	"BitSight/internal/domain/models"
)

// ErrSnapshotNotFound is returned by SnapshotStore.Load when no persisted
// snapshot exists yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// MarketProvider yields raw series for the primary asset. Implementations
// paginate internally and may return empty slices; transient failures are
// reported as errors.
type MarketProvider interface {
	// DailyBars returns closed daily bars from since (inclusive) onward,
	// date-ascending. The still-open current day is not included.
	DailyBars(ctx context.Context, symbol string, since time.Time) ([]models.DailyBar, error)
	// IntradayBars returns sub-daily bars from since (inclusive) onward,
	// time-ascending.
	IntradayBars(ctx context.Context, symbol string, since time.Time) ([]models.IntradayBar, error)
	// LastPrice returns the current traded price for symbol.
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// IndexProvider yields the secondary (volatility) series.
type IndexProvider interface {
	// History returns index bars within [from, to], date-ascending.
	History(ctx context.Context, from, to time.Time) ([]models.IndexBar, error)
}

// SnapshotStore persists the single durable snapshot blob.
type SnapshotStore interface {
	Save(ctx context.Context, s *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
}

// DatasetArchive appends merged rows to long-term storage for later
// retraining and backtests.
type DatasetArchive interface {
	Append(ctx context.Context, symbol string, rows []models.MergedRow) error
}

// RefreshEvent describes one completed snapshot rebuild.
type RefreshEvent struct {
	Symbol    string        `json:"symbol"`
	Rows      int           `json:"rows"`
	FirstDate time.Time     `json:"first_date"`
	LastDate  time.Time     `json:"last_date"`
	Duration  time.Duration `json:"duration_ms"`
	BuiltAt   time.Time     `json:"built_at"`
}

// PredictionEvent describes one served prediction.
type PredictionEvent struct {
	Symbol  string    `json:"symbol"`
	Class   int       `json:"class"`
	RowDate time.Time `json:"row_date"`
	At      time.Time `json:"at"`
}

// EventPublisher emits pipeline lifecycle events. Implementations must not
// block request handling on broker failures.
type EventPublisher interface {
	SnapshotRefreshed(ctx context.Context, ev RefreshEvent) error
	PredictionMade(ctx context.Context, ev PredictionEvent) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordRefresh(result string, seconds float64)
	RecordBuildError(kind string)
	RecordLiveFetch(series, result string)
	RecordPrediction(class string)
	SetSnapshotRows(n int)
	SetSnapshotAge(seconds float64)
	SetLastPrice(series string, price float64)
}
