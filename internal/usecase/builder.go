package usecase

import (
	"context"
	"fmt"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/internal/services/dataset"
	"BitSight/pkg/logger"
	"BitSight/pkg/util"
)

// BuilderConfig controls the lookback windows of one snapshot build.
type BuilderConfig struct {
	Symbol      string
	HistoryDays int // closed daily bars to fetch for the primary asset
	IndexDays   int // calendar days of index history to fetch
}

// DatasetBuilder assembles a complete snapshot from the upstream providers:
// closed daily bars plus a provisional bar for the current day, derived
// rolling features on both series, and the calendar-day merge.
type DatasetBuilder struct {
	cfg    BuilderConfig
	market drepo.MarketProvider
	index  drepo.IndexProvider
	log    *logger.Logger
	now    func() time.Time
}

// NewDatasetBuilder creates a builder over the given providers.
func NewDatasetBuilder(cfg BuilderConfig, market drepo.MarketProvider, index drepo.IndexProvider, log *logger.Logger) *DatasetBuilder {
	return &DatasetBuilder{cfg: cfg, market: market, index: index, log: log, now: time.Now}
}

// Build fetches both series and assembles a fresh snapshot. A fetch failure
// on either series aborts the build, so a caller holding a previous snapshot
// keeps serving it unchanged.
func (b *DatasetBuilder) Build(ctx context.Context) (*models.Snapshot, error) {
	now := b.now().UTC()
	today := util.DayUTC(now)
	since := today.AddDate(0, 0, -b.cfg.HistoryDays)

	bars, err := b.market.DailyBars(ctx, b.cfg.Symbol, since)
	if err != nil {
		return nil, fmt.Errorf("daily bars for %s: %w", b.cfg.Symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("daily bars for %s: %w", b.cfg.Symbol, dataset.ErrInvalidSeries)
	}

	bars = b.appendProvisional(ctx, today, bars)

	assetRows, err := dataset.DeriveAsset(bars)
	if err != nil {
		return nil, fmt.Errorf("derive %s features: %w", b.cfg.Symbol, err)
	}

	indexRows, err := b.indexRows(ctx, today)
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Symbol:  b.cfg.Symbol,
		BuiltAt: now,
		Rows:    dataset.Merge(assetRows, indexRows),
	}
	if len(snap.Rows) == 0 {
		return nil, fmt.Errorf("merge %s: no rows survived: %w", b.cfg.Symbol, dataset.ErrInvalidSeries)
	}
	return snap, nil
}

// appendProvisional synthesizes the still-open day from intraday data and
// yesterday's close. With no closed bar for yesterday or a provider failure
// the snapshot simply ends at the last closed day.
func (b *DatasetBuilder) appendProvisional(ctx context.Context, today time.Time, bars []models.DailyBar) []models.DailyBar {
	last := bars[len(bars)-1]
	if util.SameDayUTC(last.Date, today) {
		return bars
	}
	yesterday := today.AddDate(0, 0, -1)
	if !util.SameDayUTC(last.Date, yesterday) {
		b.log.Warn("closed bars do not reach yesterday, skipping provisional bar",
			logger.String("symbol", b.cfg.Symbol),
			logger.Time("last_closed", last.Date))
		return bars
	}

	intraday, err := b.market.IntradayBars(ctx, b.cfg.Symbol, today)
	if err != nil {
		b.log.Warn("intraday fetch failed, provisional bar uses prior close only",
			logger.String("symbol", b.cfg.Symbol),
			logger.Error(err))
		intraday = nil
	}

	bar, ok := dataset.BuildProvisionalBar(today, &last, intraday)
	if !ok {
		return bars
	}
	return append(bars, bar)
}

// indexRows fetches and derives the index series. A fetch failure aborts the
// whole build: replacing an index-bearing snapshot with one whose rows have
// no index columns would silently change every downstream prediction.
func (b *DatasetBuilder) indexRows(ctx context.Context, today time.Time) ([]models.IndexRow, error) {
	from := today.AddDate(0, 0, -b.cfg.IndexDays)
	ibars, err := b.index.History(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("index history: %w", err)
	}
	return dataset.DeriveIndex(ibars), nil
}

// RefreshEventFor summarizes a built snapshot for publication.
func RefreshEventFor(s *models.Snapshot, took time.Duration) drepo.RefreshEvent {
	ev := drepo.RefreshEvent{
		Symbol:   s.Symbol,
		Rows:     len(s.Rows),
		Duration: took,
		BuiltAt:  s.BuiltAt,
	}
	if len(s.Rows) > 0 {
		ev.FirstDate = s.Rows[0].Date()
		ev.LastDate = s.Rows[len(s.Rows)-1].Date()
	}
	return ev
}
