package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"strconv"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/internal/services/dataset"
	"BitSight/pkg/http"
	"BitSight/pkg/logger"
	"BitSight/pkg/util"
)

const (
	klinesPath = "/api/v3/klines"
	tickerPath = "/api/v3/ticker/price"

	// klinesPageLimit is the per-request row cap of the klines endpoint.
	klinesPageLimit = 1000
)

// Config holds the REST client settings.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// Client fetches candlestick and ticker data from the Binance spot REST API.
// It implements the MarketProvider interface.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
	now  func() time.Time
}

var _ drepo.MarketProvider = (*Client)(nil)

// New creates a Binance REST client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Client{
		cfg:  cfg,
		http: http.NewClient(http.WithTimeout(cfg.Timeout)),
		log:  log,
		now:  time.Now,
	}
}

// DailyBars returns closed 1d candles from since onward. The still-open
// current day is excluded; pagination is handled internally.
func (c *Client) DailyBars(ctx context.Context, symbol string, since time.Time) ([]models.DailyBar, error) {
	raw, err := c.klines(ctx, symbol, "1d", since)
	if err != nil {
		return nil, err
	}
	today := util.DayUTC(c.now().UTC())
	out := make([]models.DailyBar, 0, len(raw))
	for _, k := range raw {
		day := util.DayUTC(k.openTime)
		if !day.Before(today) {
			continue
		}
		out = append(out, models.DailyBar{
			Date:   day,
			Open:   models.Float(k.open),
			High:   models.Float(k.high),
			Low:    models.Float(k.low),
			Close:  k.close,
			Volume: k.volume,
		})
	}
	return out, nil
}

// IntradayBars returns 1h candles from since onward, the open last candle
// included.
func (c *Client) IntradayBars(ctx context.Context, symbol string, since time.Time) ([]models.IntradayBar, error) {
	raw, err := c.klines(ctx, symbol, "1h", since)
	if err != nil {
		return nil, err
	}
	out := make([]models.IntradayBar, 0, len(raw))
	for _, k := range raw {
		out = append(out, models.IntradayBar{
			Time:   k.openTime,
			Open:   k.open,
			High:   k.high,
			Low:    k.low,
			Close:  k.close,
			Volume: k.volume,
		})
	}
	return out, nil
}

// LastPrice returns the current traded price for symbol.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var payload struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	body, err := c.get(ctx, tickerPath, map[string][]string{"symbol": {symbol}})
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("ticker for %s: %w: %v", symbol, dataset.ErrMalformedUpstream, err)
	}
	price, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("ticker price %q: %w", payload.Price, dataset.ErrMalformedUpstream)
	}
	return price, nil
}

type kline struct {
	openTime time.Time
	open     float64
	high     float64
	low      float64
	close    float64
	volume   float64
}

// klines pages through the endpoint until a short page is returned.
func (c *Client) klines(ctx context.Context, symbol, interval string, since time.Time) ([]kline, error) {
	var out []kline
	start := since.UnixMilli()
	for {
		body, err := c.get(ctx, klinesPath, map[string][]string{
			"symbol":    {symbol},
			"interval":  {interval},
			"startTime": {strconv.FormatInt(start, 10)},
			"limit":     {strconv.Itoa(klinesPageLimit)},
		})
		if err != nil {
			return nil, err
		}
		page, err := parseKlines(body)
		if err != nil {
			return nil, fmt.Errorf("klines %s %s: %w", symbol, interval, err)
		}
		out = append(out, page...)
		if len(page) < klinesPageLimit {
			return out, nil
		}
		start = page[len(page)-1].openTime.UnixMilli() + 1
	}
}

// parseKlines decodes the positional array format of the klines endpoint:
// [openTime, open, high, low, close, volume, ...], prices as strings.
func parseKlines(body []byte) ([]kline, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrMalformedUpstream, err)
	}
	out := make([]kline, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("%w: kline %d has %d fields", dataset.ErrMalformedUpstream, i, len(row))
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("%w: kline %d open time: %v", dataset.ErrMalformedUpstream, i, err)
		}
		k := kline{openTime: time.UnixMilli(openMs).UTC()}
		for j, dst := range []*float64{&k.open, &k.high, &k.low, &k.close, &k.volume} {
			var s string
			if err := json.Unmarshal(row[j+1], &s); err != nil {
				return nil, fmt.Errorf("%w: kline %d field %d: %v", dataset.ErrMalformedUpstream, i, j+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: kline %d field %d: %v", dataset.ErrMalformedUpstream, i, j+1, err)
			}
			*dst = v
		}
		out = append(out, k)
	}
	return out, nil
}

// get issues one GET with bounded retry on transient failures. Responses
// with 5xx or 429 status are retried with linear backoff; other non-2xx
// statuses fail immediately.
func (c *Client) get(ctx context.Context, path string, params map[string][]string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * c.cfg.Backoff):
			}
		}

		body, retry, err := c.getOnce(ctx, path, params)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
		c.log.Warn("binance request failed, retrying",
			logger.String("path", path),
			logger.Int("attempt", attempt),
			logger.Error(err))
	}
	return nil, fmt.Errorf("%w: %v", dataset.ErrProviderUnavailable, lastErr)
}

func (c *Client) getOnce(ctx context.Context, path string, params map[string][]string) (body []byte, retry bool, err error) {
	resp, err := c.http.SendRequest(ctx, &http.RequestOptions{
		Method:      http.MethodGet,
		URL:         c.cfg.BaseURL + path,
		QueryParams: params,
	})
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, false, nil
	case resp.StatusCode == stdhttp.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(data, 256))
	default:
		return nil, false, fmt.Errorf("%w: status %d: %s", dataset.ErrProviderUnavailable, resp.StatusCode, truncate(data, 256))
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
