package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	dsvc "BitSight/internal/domain/service"
	"BitSight/pkg/logger"
)

// PredictionService turns the latest merged row into the classifier's fixed
// feature vector and serves its output. Missing values are substituted with
// zero, matching what the model saw in training, and each substitution is
// flagged so consumers can judge the input quality.
type PredictionService struct {
	snapshots *SnapshotService
	predictor dsvc.Predictor
	events    drepo.EventPublisher
	metrics   drepo.Metrics
	log       *logger.Logger
}

// NewPredictionService creates a prediction service. events may be nil.
func NewPredictionService(snapshots *SnapshotService, predictor dsvc.Predictor, events drepo.EventPublisher, metrics drepo.Metrics, log *logger.Logger) *PredictionService {
	return &PredictionService{
		snapshots: snapshots,
		predictor: predictor,
		events:    events,
		metrics:   metrics,
		log:       log,
	}
}

// Predict classifies the most recent row of the served snapshot.
func (p *PredictionService) Predict(ctx context.Context) (models.Prediction, error) {
	snap, err := p.snapshots.Current()
	if err != nil {
		return models.Prediction{}, err
	}
	row, ok := snap.Latest()
	if !ok {
		return models.Prediction{}, ErrNoSnapshot
	}

	vec := VectorFromRow(row)
	if missing := vec.MissingNames(); len(missing) > 0 {
		p.log.Warn("feature vector has imputed values",
			logger.Strings("features", missing),
			logger.Time("row_date", row.Date()))
	}

	class, err := p.predictor.Predict(ctx, vec)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("predict %s: %w", snap.Symbol, err)
	}
	p.metrics.RecordPrediction(strconv.Itoa(class))

	if p.events != nil {
		ev := drepo.PredictionEvent{
			Symbol:  snap.Symbol,
			Class:   class,
			RowDate: row.Date(),
			At:      time.Now().UTC(),
		}
		if err := p.events.PredictionMade(ctx, ev); err != nil {
			p.log.Warn("prediction event publish failed", logger.Error(err))
		}
	}

	return models.Prediction{
		Date:   row.Date().Format("2006-01-02"),
		Class:  class,
		Vector: vec,
	}, nil
}

// VectorFromRow builds the ordered feature vector from one merged row.
// Optional asset fields and the whole index side may be absent; those
// positions carry zero with the imputed flag set.
func VectorFromRow(row models.MergedRow) models.FeatureVector {
	opt := func(name string, v *float64) models.Feature {
		if v == nil {
			return models.Feature{Name: name, Imputed: true}
		}
		return models.Feature{Name: name, Value: *v}
	}
	val := func(name string, v float64) models.Feature {
		return models.Feature{Name: name, Value: v}
	}
	ix := func(name string, pick func(models.IndexRow) float64) models.Feature {
		if row.Index == nil {
			return models.Feature{Name: name, Imputed: true}
		}
		return models.Feature{Name: name, Value: pick(*row.Index)}
	}

	return models.FeatureVector{
		opt("open_ma3", row.Asset.OpenMA3),
		val("close_ma3", row.Asset.CloseMA3),
		val("volume_ma3", row.Asset.VolumeMA3),
		opt("high_ma3", row.Asset.HighMA3),
		opt("low_ma3", row.Asset.LowMA3),
		opt("open_shift", row.Asset.OpenLag),
		val("close_shift", row.Asset.CloseLag),
		ix("vix_open_ma3", func(r models.IndexRow) float64 { return r.OpenMA3 }),
		ix("vix_close_ma3", func(r models.IndexRow) float64 { return r.CloseMA3 }),
		ix("vix_variation_ma3", func(r models.IndexRow) float64 { return r.VariationMA3 }),
		ix("vix_mean_ma3", func(r models.IndexRow) float64 { return r.MeanMA3 }),
	}
}
