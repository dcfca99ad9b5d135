package model

import (
	"context"
	"fmt"
	"time"

	"BitSight/internal/domain/models"
	dsvc "BitSight/internal/domain/service"
	"BitSight/pkg/http"
	"BitSight/pkg/logger"
)

// Config holds the model service settings.
type Config struct {
	ServiceURL string
	Timeout    time.Duration
}

// Client calls the external classifier service over HTTP. It implements the
// Predictor interface.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

var _ dsvc.Predictor = (*Client)(nil)

// New creates a model service client.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: http.NewClient(http.WithTimeout(cfg.Timeout)),
		log:  log,
	}
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
	Order    []string           `json:"feature_order"`
}

type predictResponse struct {
	Class *int `json:"predicted_class"`
}

// Predict sends the feature vector and returns the predicted class. Feature
// values are keyed by name, with the contract order passed alongside so the
// service can assemble its input row deterministically.
func (c *Client) Predict(ctx context.Context, vec models.FeatureVector) (int, error) {
	req := predictRequest{
		Features: make(map[string]float64, len(vec)),
		Order:    make([]string, 0, len(vec)),
	}
	for _, f := range vec {
		req.Features[f.Name] = f.Value
		req.Order = append(req.Order, f.Name)
	}

	var resp predictResponse
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodPost,
		URL:    c.cfg.ServiceURL + "/predict",
		Body:   req,
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("model service: %w", err)
	}
	if resp.Class == nil {
		return 0, fmt.Errorf("model service: response missing predicted_class")
	}
	if *resp.Class != 0 && *resp.Class != 1 {
		return 0, fmt.Errorf("model service: class %d outside {0, 1}", *resp.Class)
	}
	c.log.Debug("model prediction", logger.Int("class", *resp.Class))
	return *resp.Class, nil
}
