package models

import "time"

// AssetRow is a primary-asset DailyBar extended with rolling statistics, lag
// fields and the binary target. Rows only exist where the 3-day window is
// complete, so Close-derived aggregates and lags are always present; the
// Open-derived ones stay optional because a provisional bar may lack an open.
type AssetRow struct {
	DailyBar

	OpenMA3   *float64 `json:"open_ma3"`
	CloseMA3  float64  `json:"close_ma3"`
	VolumeMA3 float64  `json:"volume_ma3"`
	HighMA3   *float64 `json:"high_ma3"`
	LowMA3    *float64 `json:"low_ma3"`

	OpenLag  *float64 `json:"open_shift"`
	CloseLag float64  `json:"close_shift"`

	Variation  *float64 `json:"variation"`
	Indication int      `json:"indication"`
}

// IndexRow is an IndexBar extended with its derived columns and their 3-day
// rolling means. Index bars are always complete, so nothing here is optional.
type IndexRow struct {
	IndexBar

	Variation float64 `json:"variation"` // high - low
	Mean      float64 `json:"mean"`      // (high + low) / 2

	OpenMA3      float64 `json:"open_ma3"`
	CloseMA3     float64 `json:"close_ma3"`
	VariationMA3 float64 `json:"variation_ma3"`
	MeanMA3      float64 `json:"mean_ma3"`
}

// MergedRow joins one asset row with the index row for the same UTC calendar
// day. Index is nil when no index value exists on or before that day.
type MergedRow struct {
	Asset AssetRow  `json:"asset"`
	Index *IndexRow `json:"index,omitempty"`
}

// Date returns the row's calendar day.
func (r MergedRow) Date() time.Time { return r.Asset.Date }

// Snapshot is the complete assembled dataset at one point in time. It is
// replaced wholesale on refresh, never mutated.
type Snapshot struct {
	Symbol  string      `json:"symbol"`
	BuiltAt time.Time   `json:"built_at"`
	Rows    []MergedRow `json:"rows"`
}

// Latest returns the most recent merged row, which may describe the
// still-open provisional day.
func (s *Snapshot) Latest() (MergedRow, bool) {
	if s == nil || len(s.Rows) == 0 {
		return MergedRow{}, false
	}
	return s.Rows[len(s.Rows)-1], true
}

// LiveQuote is a cached externally fetched scalar for one series.
type LiveQuote struct {
	Series    string    `json:"series"`
	Value     float64   `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}
