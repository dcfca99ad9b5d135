package cboe

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/internal/services/dataset"
	"BitSight/pkg/http"
	"BitSight/pkg/logger"
)

// Config holds the CSV download settings.
type Config struct {
	HistoryURL string
	Timeout    time.Duration
}

// Client downloads the published VIX history CSV from CBOE. It implements
// the IndexProvider interface. The endpoint serves the full history; the
// client filters to the requested window locally.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

var _ drepo.IndexProvider = (*Client)(nil)

// New creates a CBOE history client.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: http.NewClient(http.WithTimeout(cfg.Timeout)),
		log:  log,
	}
}

// History returns index bars within [from, to], date-ascending.
func (c *Client) History(ctx context.Context, from, to time.Time) ([]models.IndexBar, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.cfg.HistoryURL,
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("cboe history: %w: %v", dataset.ErrProviderUnavailable, err)
	}

	bars, err := ParseHistory(body)
	if err != nil {
		return nil, fmt.Errorf("cboe history: %w", err)
	}

	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	c.log.Debug("cboe history fetched",
		logger.Int("rows", len(out)),
		logger.Time("from", from),
		logger.Time("to", to))
	return out, nil
}

// ParseHistory decodes the published CSV. The header row is matched by name
// so column reordering upstream does not break parsing; the DATE, OPEN,
// HIGH, LOW and CLOSE columns are required.
func ParseHistory(data []byte) ([]models.IndexBar, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrMalformedUpstream, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: no data rows", dataset.ErrMalformedUpstream)
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"DATE", "OPEN", "HIGH", "LOW", "CLOSE"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", dataset.ErrMalformedUpstream, required)
		}
	}

	out := make([]models.IndexBar, 0, len(records)-1)
	for i, rec := range records[1:] {
		bar, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", dataset.ErrMalformedUpstream, i+1, err)
		}
		out = append(out, bar)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func parseRow(rec []string, cols map[string]int) (models.IndexBar, error) {
	field := func(name string) (string, error) {
		idx := cols[name]
		if idx >= len(rec) {
			return "", fmt.Errorf("short record")
		}
		return strings.TrimSpace(rec[idx]), nil
	}

	dateStr, err := field("DATE")
	if err != nil {
		return models.IndexBar{}, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return models.IndexBar{}, err
	}

	bar := models.IndexBar{Date: date}
	for name, dst := range map[string]*float64{
		"OPEN": &bar.Open, "HIGH": &bar.High, "LOW": &bar.Low, "CLOSE": &bar.Close,
	} {
		s, err := field(name)
		if err != nil {
			return models.IndexBar{}, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.IndexBar{}, fmt.Errorf("%s: %v", name, err)
		}
		*dst = v
	}
	return bar, nil
}

// parseDate accepts both date layouts CBOE has published over the years.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"01/02/2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
