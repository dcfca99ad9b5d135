package usecase

import (
	"context"
	"testing"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type noopMetrics struct{}

func (noopMetrics) RecordRefresh(string, float64)  {}
func (noopMetrics) RecordBuildError(string)        {}
func (noopMetrics) RecordLiveFetch(string, string) {}
func (noopMetrics) RecordPrediction(string)        {}
func (noopMetrics) SetSnapshotRows(int)            {}
func (noopMetrics) SetSnapshotAge(float64)         {}
func (noopMetrics) SetLastPrice(string, float64)   {}

type fakeMarket struct {
	daily       []models.DailyBar
	dailyErr    error
	intraday    []models.IntradayBar
	intradayErr error
	price       float64
	priceErr    error
	dailyCalls  int
}

func (f *fakeMarket) DailyBars(_ context.Context, _ string, _ time.Time) ([]models.DailyBar, error) {
	f.dailyCalls++
	return f.daily, f.dailyErr
}

func (f *fakeMarket) IntradayBars(_ context.Context, _ string, _ time.Time) ([]models.IntradayBar, error) {
	return f.intraday, f.intradayErr
}

func (f *fakeMarket) LastPrice(_ context.Context, _ string) (float64, error) {
	return f.price, f.priceErr
}

type fakeIndex struct {
	bars []models.IndexBar
	err  error
}

func (f *fakeIndex) History(_ context.Context, _, _ time.Time) ([]models.IndexBar, error) {
	return f.bars, f.err
}

type fakeStore struct {
	saved   *models.Snapshot
	loaded  *models.Snapshot
	loadErr error
	saveErr error
}

func (f *fakeStore) Save(_ context.Context, s *models.Snapshot) error {
	f.saved = s
	return f.saveErr
}

func (f *fakeStore) Load(_ context.Context) (*models.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.loaded == nil {
		return nil, drepo.ErrSnapshotNotFound
	}
	return f.loaded, nil
}

type fakePublisher struct {
	refreshes   []drepo.RefreshEvent
	predictions []drepo.PredictionEvent
}

func (f *fakePublisher) SnapshotRefreshed(_ context.Context, ev drepo.RefreshEvent) error {
	f.refreshes = append(f.refreshes, ev)
	return nil
}

func (f *fakePublisher) PredictionMade(_ context.Context, ev drepo.PredictionEvent) error {
	f.predictions = append(f.predictions, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakePredictor struct {
	class int
	err   error
	last  models.FeatureVector
}

func (f *fakePredictor) Predict(_ context.Context, vec models.FeatureVector) (int, error) {
	f.last = vec
	return f.class, f.err
}

// closedBars makes n sequential closed daily bars ending the day before end.
func closedBars(end time.Time, n int, base float64) []models.DailyBar {
	out := make([]models.DailyBar, 0, n)
	for i := n; i >= 1; i-- {
		d := end.AddDate(0, 0, -i)
		v := base + float64(n-i)
		out = append(out, models.DailyBar{
			Date:   d,
			Open:   models.Float(v),
			High:   models.Float(v + 1),
			Low:    models.Float(v - 1),
			Close:  v + 0.5,
			Volume: 10,
		})
	}
	return out
}
