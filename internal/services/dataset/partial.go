package dataset

import (
	"time"

	"BitSight/internal/domain/models"
	"BitSight/pkg/util"
)

// BuildProvisionalBar synthesizes the bar for the still-open day from
// intraday observations plus yesterday's closed bar. The close of the
// provisional bar is deliberately yesterday's close: the day has not settled
// yet, and reusing the last settled price keeps close-derived features stable
// within the day.
//
// Returns false when yesterday's bar is absent; the dataset then simply ends
// on the last closed day.
func BuildProvisionalBar(day time.Time, yesterday *models.DailyBar, intraday []models.IntradayBar) (models.DailyBar, bool) {
	if yesterday == nil {
		return models.DailyBar{}, false
	}

	bar := models.DailyBar{
		Date:        util.DayUTC(day),
		Close:       yesterday.Close,
		Provisional: true,
	}

	var (
		earliest time.Time
		open     float64
		high     float64
		low      float64
	)
	seen := false
	for _, b := range intraday {
		if !util.SameDayUTC(b.Time, day) {
			continue
		}
		if !seen {
			earliest, open = b.Time, b.Open
			high, low = b.High, b.Low
			seen = true
		} else {
			if b.Time.Before(earliest) {
				earliest, open = b.Time, b.Open
			}
			if b.High > high {
				high = b.High
			}
			if b.Low < low {
				low = b.Low
			}
		}
		bar.Volume += b.Volume
	}

	if seen {
		bar.Open = models.Float(open)
		bar.High = models.Float(high)
		bar.Low = models.Float(low)
	}

	return bar, true
}
