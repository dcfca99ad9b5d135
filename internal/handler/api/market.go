package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"BitSight/internal/domain/models"
	"BitSight/internal/service/ratelimit"
	"BitSight/internal/services/dataset"
	"BitSight/internal/usecase"
	xhttp "BitSight/pkg/http"
	xlogger "BitSight/pkg/logger"
	"BitSight/pkg/util"
)

const (
	seriesAsset = "btc"
	seriesIndex = "vix"

	// refresh-cache budget per caller: small burst, slow refill.
	refreshBurst     = 2
	refreshPerSecond = 1.0 / 30.0
)

// MarketHandler exposes the dataset and prediction HTTP surface.
type MarketHandler struct {
	logger      *xlogger.Logger
	collector   *xlogger.Collector
	snapshots   *usecase.SnapshotService
	predictions *usecase.PredictionService
	quotes      *usecase.LiveQuotes
	assetPrice  func(ctx context.Context) (float64, error)
	indexPrice  func(ctx context.Context) (float64, error)
	rl          *ratelimit.Limiter
	startedAt   time.Time
}

// NewMarketHandler creates the handler. assetPrice and indexPrice are the
// live fetch functions behind the current-price endpoints.
func NewMarketHandler(
	logger *xlogger.Logger,
	collector *xlogger.Collector,
	snapshots *usecase.SnapshotService,
	predictions *usecase.PredictionService,
	quotes *usecase.LiveQuotes,
	assetPrice func(ctx context.Context) (float64, error),
	indexPrice func(ctx context.Context) (float64, error),
) *MarketHandler {
	return &MarketHandler{
		logger:      logger,
		collector:   collector,
		snapshots:   snapshots,
		predictions: predictions,
		quotes:      quotes,
		assetPrice:  assetPrice,
		indexPrice:  indexPrice,
		rl:          ratelimit.New(),
		startedAt:   time.Now(),
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/market-data", h.MarketData)
	g.GET("/dataset", h.Dataset)
	g.GET("/btc-current-price", h.AssetPrice)
	g.GET("/vix-current-price", h.IndexPrice)
	g.POST("/refresh-cache", h.RefreshCache)
	g.POST("/predict", h.Predict)
}

// marketOverview summarizes the latest row, which may be the provisional
// current day, together with the live scalars.
type marketOverview struct {
	Date        string   `json:"date"`
	BtcOpen     *float64 `json:"btc_open"`
	BtcClose    float64  `json:"btc_close"`
	BtcHigh     *float64 `json:"btc_high"`
	BtcLow      *float64 `json:"btc_low"`
	BtcCloseMA3 float64  `json:"btc_close_ma3"`
	BtcCurrent  *float64 `json:"btc_current"`
	VixOpen     *float64 `json:"vix_open"`
	VixClose    *float64 `json:"vix_close"`
	VixCurrent  *float64 `json:"vix_current"`
	VixCloseMA3 *float64 `json:"vix_close_ma3"`
}

// MarketData returns the latest row summary plus current BTC and VIX quotes.
func (h *MarketHandler) MarketData(c echo.Context) error {
	snap, err := h.snapshots.Current()
	if err != nil {
		return h.serveError(c, "market-data", err)
	}
	row, ok := snap.Latest()
	if !ok {
		return h.serveError(c, "market-data", usecase.ErrNoSnapshot)
	}

	ov := marketOverview{
		Date:        row.Date().Format("2006-01-02"),
		BtcOpen:     row.Asset.Open,
		BtcClose:    row.Asset.Close,
		BtcHigh:     row.Asset.High,
		BtcLow:      row.Asset.Low,
		BtcCloseMA3: row.Asset.CloseMA3,
	}
	if ix := row.Index; ix != nil {
		ov.VixOpen = models.Float(ix.Open)
		ov.VixClose = models.Float(ix.Close)
		ov.VixCloseMA3 = models.Float(ix.CloseMA3)
	}

	// Live scalars are best effort here; the row data stands on its own.
	if q, qerr := h.quotes.GetOrFetch(c.Request().Context(), seriesAsset, h.assetPrice); qerr == nil || q.Series != "" {
		ov.BtcCurrent = models.Float(q.Value)
	}
	if q, qerr := h.quotes.GetOrFetch(c.Request().Context(), seriesIndex, h.indexPrice); qerr == nil || q.Series != "" {
		ov.VixCurrent = models.Float(q.Value)
	}
	return xhttp.SuccessResponse(c, ov)
}

// Dataset returns snapshot rows filtered by date range.
func (h *MarketHandler) Dataset(c echo.Context) error {
	req := &models.DatasetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var from, to time.Time
	if req.From != "" {
		parsed, ok := util.ParseTime(req.From)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid from: %q", req.From))
		}
		from = parsed
	}
	if req.To != "" {
		parsed, ok := util.ParseTime(req.To)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid to: %q", req.To))
		}
		to = parsed
	}

	snap, err := h.snapshots.Current()
	if err != nil {
		return h.serveError(c, "dataset", err)
	}

	rows := make([]models.MergedRow, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		if !from.IsZero() && r.Date().Before(util.DayUTC(from)) {
			continue
		}
		if !to.IsZero() && r.Date().After(util.DayUTC(to)) {
			continue
		}
		rows = append(rows, r)
		if req.Limit > 0 && len(rows) >= req.Limit {
			break
		}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// AssetPrice returns the live primary asset price, memoized by freshness.
func (h *MarketHandler) AssetPrice(c echo.Context) error {
	return h.livePrice(c, seriesAsset, h.assetPrice)
}

// IndexPrice returns the live index value, memoized by freshness.
func (h *MarketHandler) IndexPrice(c echo.Context) error {
	return h.livePrice(c, seriesIndex, h.indexPrice)
}

func (h *MarketHandler) livePrice(c echo.Context, series string, fetch func(ctx context.Context) (float64, error)) error {
	quote, err := h.quotes.GetOrFetch(c.Request().Context(), series, fetch)
	if err != nil {
		if quote.Series != "" {
			// Stale value available; serve it and mark the degradation.
			c.Response().Header().Set("X-Data-Stale", "true")
			return xhttp.SuccessResponse(c, quote)
		}
		return h.serveError(c, series+"-price", err)
	}
	return xhttp.SuccessResponse(c, quote)
}

// RefreshCache rebuilds the snapshot on demand. Per-caller rate limited so
// clients cannot hammer the upstream providers.
func (h *MarketHandler) RefreshCache(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":refresh", refreshBurst, refreshPerSecond) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh already in progress or too frequent"))
	}

	if err := h.snapshots.Refresh(c.Request().Context()); err != nil {
		return h.serveError(c, "refresh-cache", err)
	}
	snap, err := h.snapshots.Current()
	if err != nil {
		return h.serveError(c, "refresh-cache", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"refreshed": true,
		"rows":      len(snap.Rows),
		"built_at":  snap.BuiltAt,
	})
}

// Predict classifies the latest snapshot row.
func (h *MarketHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pred, err := h.predictions.Predict(c.Request().Context())
	if err != nil {
		return h.serveError(c, "predict", err)
	}
	if !req.IncludeVector {
		pred.Vector = nil
	}
	return xhttp.SuccessResponse(c, pred)
}

type healthStatus struct {
	Status       string          `json:"status"`
	UptimeSecs   float64         `json:"uptime_seconds"`
	SnapshotRows int             `json:"snapshot_rows"`
	SnapshotAge  *float64        `json:"snapshot_age_seconds,omitempty"`
	RecentIssues []xlogger.Entry `json:"recent_issues,omitempty"`
}

// Health reports liveness plus snapshot freshness and recent warnings.
func (h *MarketHandler) Health(c echo.Context) error {
	st := healthStatus{
		Status:     "ok",
		UptimeSecs: time.Since(h.startedAt).Seconds(),
	}
	if snap, err := h.snapshots.Current(); err == nil {
		st.SnapshotRows = len(snap.Rows)
		age := time.Since(snap.BuiltAt).Seconds()
		st.SnapshotAge = &age
	} else {
		st.Status = "degraded"
	}
	if h.collector != nil {
		st.RecentIssues = h.collector.Recent()
	}
	return xhttp.SuccessResponse(c, st)
}

// serveError maps pipeline errors onto the HTTP error taxonomy.
func (h *MarketHandler) serveError(c echo.Context, op string, err error) error {
	h.logger.Error(op+" failed", xlogger.Error(err))
	switch {
	case errors.Is(err, usecase.ErrNoSnapshot):
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("dataset not built yet, try again shortly").WithError(err))
	case errors.Is(err, dataset.ErrProviderUnavailable), errors.Is(err, dataset.ErrMalformedUpstream):
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("upstream data source failed").WithError(err))
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}
