package dataset

import (
	"math"

	"BitSight/internal/domain/models"
	"BitSight/pkg/util"
)

// Merge left-joins the index series onto the asset series by UTC calendar
// day. Every asset date appears exactly once in the output; where the index
// has no entry for a day, the most recent earlier index row is carried
// forward. Rows before any index value keep a nil index. A row is dropped
// only when the asset close is missing, never for incomplete index fields.
//
// Both inputs must be date-ascending. Duplicate index dates keep the
// chronologically last entry; duplicate asset dates keep the last row.
func Merge(asset []models.AssetRow, index []models.IndexRow) []models.MergedRow {
	byDay := make(map[int64]models.IndexRow, len(index))
	for _, ix := range index {
		byDay[util.DayUTC(ix.Date).Unix()] = ix
	}

	out := make([]models.MergedRow, 0, len(asset))
	var carried *models.IndexRow
	for _, row := range asset {
		if math.IsNaN(row.Close) {
			continue
		}

		day := util.DayUTC(row.Date)
		if ix, ok := byDay[day.Unix()]; ok {
			ixCopy := ix
			carried = &ixCopy
		}

		merged := models.MergedRow{Asset: row}
		merged.Asset.Date = day
		if carried != nil {
			merged.Index = carried
		}

		if n := len(out); n > 0 && out[n-1].Asset.Date.Equal(day) {
			out[n-1] = merged
			continue
		}
		out = append(out, merged)
	}
	return out
}
