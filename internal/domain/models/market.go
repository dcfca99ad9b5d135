package models

import "time"

// DailyBar is one trading day of the primary asset. Open/High/Low are
// pointers because the provisional bar for the still-open day may not have
// them: with no intraday observations yet they stay unknown.
type DailyBar struct {
	Date        time.Time `json:"date"`
	Open        *float64  `json:"open"`
	High        *float64  `json:"high"`
	Low         *float64  `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	Provisional bool      `json:"provisional,omitempty"`
}

// IntradayBar is a sub-daily observation used only to synthesize the
// provisional bar for the current day.
type IntradayBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// IndexBar is one closed day of the secondary (volatility) series.
type IndexBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Float returns a pointer to v. Convenience for optional bar fields.
func Float(v float64) *float64 { return &v }
