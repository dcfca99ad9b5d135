package service

import (
	"context"

	"BitSight/internal/domain/models"
)

// Predictor is the classifier boundary. It consumes the fixed 11-field
// feature vector and returns a class label in {0, 1}.
type Predictor interface {
	Predict(ctx context.Context, vec models.FeatureVector) (int, error)
}
