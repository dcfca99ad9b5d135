package dataset

import (
	"fmt"

	"BitSight/internal/domain/models"
)

// rollingWindow is the span of the simple moving averages. Rows without a
// complete window are excluded from output.
const rollingWindow = 3

// labelThreshold is the intraday gain above which a row is labeled 1.
const labelThreshold = 0.005

// DeriveAsset computes rolling means, lag fields and the binary target for a
// date-ascending primary series. The first rollingWindow-1 rows carry no
// complete window and are dropped. A bar with a zero open violates the input
// contract and aborts the derivation.
func DeriveAsset(bars []models.DailyBar) ([]models.AssetRow, error) {
	for _, b := range bars {
		if b.Open != nil && *b.Open == 0 {
			return nil, fmt.Errorf("%w: zero open on %s", ErrInvalidSeries, b.Date.Format("2006-01-02"))
		}
	}

	if len(bars) < rollingWindow {
		return nil, nil
	}

	out := make([]models.AssetRow, 0, len(bars)-rollingWindow+1)
	for i := rollingWindow - 1; i < len(bars); i++ {
		b := bars[i]
		prev := bars[i-1]

		row := models.AssetRow{
			DailyBar:  b,
			CloseMA3:  meanOf(bars[i-2].Close, bars[i-1].Close, b.Close),
			VolumeMA3: meanOf(bars[i-2].Volume, bars[i-1].Volume, b.Volume),
			OpenMA3:   meanOpt(bars[i-2].Open, bars[i-1].Open, b.Open),
			HighMA3:   meanOpt(bars[i-2].High, bars[i-1].High, b.High),
			LowMA3:    meanOpt(bars[i-2].Low, bars[i-1].Low, b.Low),
			OpenLag:   prev.Open,
			CloseLag:  prev.Close,
		}

		if b.Open != nil {
			v := (b.Close - *b.Open) / *b.Open
			row.Variation = &v
			if v > labelThreshold {
				row.Indication = 1
			}
		}

		out = append(out, row)
	}
	return out, nil
}

// DeriveIndex computes the variation/mean columns and their rolling means for
// a date-ascending index series. As with the asset series, rows without a
// complete window are dropped.
func DeriveIndex(bars []models.IndexBar) []models.IndexRow {
	if len(bars) < rollingWindow {
		return nil
	}

	variation := func(b models.IndexBar) float64 { return b.High - b.Low }
	mean := func(b models.IndexBar) float64 { return (b.High + b.Low) / 2 }

	out := make([]models.IndexRow, 0, len(bars)-rollingWindow+1)
	for i := rollingWindow - 1; i < len(bars); i++ {
		a, b, c := bars[i-2], bars[i-1], bars[i]
		out = append(out, models.IndexRow{
			IndexBar:     c,
			Variation:    variation(c),
			Mean:         mean(c),
			OpenMA3:      meanOf(a.Open, b.Open, c.Open),
			CloseMA3:     meanOf(a.Close, b.Close, c.Close),
			VariationMA3: meanOf(variation(a), variation(b), variation(c)),
			MeanMA3:      meanOf(mean(a), mean(b), mean(c)),
		})
	}
	return out
}

func meanOf(xs ...float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// meanOpt averages optional values; any missing input makes the result
// undefined.
func meanOpt(xs ...*float64) *float64 {
	sum := 0.0
	for _, x := range xs {
		if x == nil {
			return nil
		}
		sum += *x
	}
	v := sum / float64(len(xs))
	return &v
}
