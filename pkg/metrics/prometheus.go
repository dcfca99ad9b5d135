package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshTotal  *prometheus.CounterVec
	buildErrors   *prometheus.CounterVec
	liveFetches   *prometheus.CounterVec
	predictions   *prometheus.CounterVec
	snapshotRows  prometheus.Gauge
	snapshotAge   prometheus.Gauge
	lastPrice     *prometheus.GaugeVec
	refreshSecs   prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsight_snapshot_refresh_total",
				Help: "Total snapshot rebuild attempts",
			},
			[]string{"result"},
		),
		buildErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsight_build_errors_total",
				Help: "Build failures by kind",
			},
			[]string{"kind"},
		),
		liveFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsight_live_fetch_total",
				Help: "Live scalar fetches by series and result",
			},
			[]string{"series", "result"},
		),
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsight_predictions_total",
				Help: "Predictions served by class",
			},
			[]string{"class"},
		),
		snapshotRows: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bitsight_snapshot_rows",
				Help: "Row count of the current snapshot",
			},
		),
		snapshotAge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bitsight_snapshot_age_seconds",
				Help: "Seconds since the current snapshot was built",
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bitsight_last_price",
				Help: "Last observed live price per series",
			},
			[]string{"series"},
		),
		refreshSecs: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bitsight_snapshot_refresh_seconds",
				Help:    "Duration of snapshot rebuilds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordRefresh records one rebuild attempt.
func (r *Recorder) RecordRefresh(result string, seconds float64) {
	r.refreshTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		r.refreshSecs.Observe(seconds)
	}
}

// RecordBuildError records a build failure by kind.
func (r *Recorder) RecordBuildError(kind string) {
	r.buildErrors.WithLabelValues(kind).Inc()
}

// RecordLiveFetch records a live scalar fetch outcome.
func (r *Recorder) RecordLiveFetch(series, result string) {
	r.liveFetches.WithLabelValues(series, result).Inc()
}

// RecordPrediction records a served prediction class.
func (r *Recorder) RecordPrediction(class string) {
	r.predictions.WithLabelValues(class).Inc()
}

// SetSnapshotRows records the row count of the live snapshot.
func (r *Recorder) SetSnapshotRows(n int) {
	r.snapshotRows.Set(float64(n))
}

// SetSnapshotAge records the age of the live snapshot.
func (r *Recorder) SetSnapshotAge(seconds float64) {
	r.snapshotAge.Set(seconds)
}

// SetLastPrice records the last live price for a series.
func (r *Recorder) SetLastPrice(series string, price float64) {
	r.lastPrice.WithLabelValues(series).Set(price)
}
