package usecase

import (
	"context"
	"sync"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/pkg/logger"
)

// FetchFunc retrieves the current value of one live series.
type FetchFunc func(ctx context.Context) (float64, error)

type quoteEntry struct {
	quote models.LiveQuote
	ok    bool
}

// LiveQuotes memoizes externally fetched scalar quotes per series name. A
// cached value is served as long as it is younger than the configured TTL;
// past that a fresh fetch is attempted, and on failure the stale value is
// returned together with the fetch error so callers can degrade gracefully.
type LiveQuotes struct {
	ttl     time.Duration
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]quoteEntry
}

// NewLiveQuotes creates a quote cache with the given staleness window.
func NewLiveQuotes(ttl time.Duration, metrics drepo.Metrics, log *logger.Logger) *LiveQuotes {
	return &LiveQuotes{
		ttl:     ttl,
		metrics: metrics,
		log:     log,
		now:     time.Now,
		entries: make(map[string]quoteEntry),
	}
}

// GetOrFetch returns the cached quote for series if it is still fresh,
// otherwise invokes fetch. When fetch fails but a stale quote exists, that
// quote is returned alongside the error.
func (q *LiveQuotes) GetOrFetch(ctx context.Context, series string, fetch FetchFunc) (models.LiveQuote, error) {
	q.mu.Lock()
	entry, ok := q.entries[series]
	q.mu.Unlock()

	now := q.now()
	if ok && entry.ok && now.Sub(entry.quote.FetchedAt) < q.ttl {
		q.metrics.RecordLiveFetch(series, "cached")
		return entry.quote, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		q.metrics.RecordLiveFetch(series, "error")
		q.log.Warn("live quote fetch failed",
			logger.String("series", series),
			logger.Error(err))
		if ok && entry.ok {
			return entry.quote, err
		}
		return models.LiveQuote{}, err
	}

	quote := models.LiveQuote{Series: series, Value: value, FetchedAt: now}
	q.mu.Lock()
	q.entries[series] = quoteEntry{quote: quote, ok: true}
	q.mu.Unlock()

	q.metrics.RecordLiveFetch(series, "fetched")
	q.metrics.SetLastPrice(series, value)
	return quote, nil
}

// Prime stores a value pushed from a streaming source, refreshing the TTL
// window without an outbound request.
func (q *LiveQuotes) Prime(series string, value float64, at time.Time) {
	q.mu.Lock()
	q.entries[series] = quoteEntry{
		quote: models.LiveQuote{Series: series, Value: value, FetchedAt: at},
		ok:    true,
	}
	q.mu.Unlock()
	q.metrics.SetLastPrice(series, value)
}

// Peek returns the cached quote for series without fetching, regardless of
// freshness.
func (q *LiveQuotes) Peek(series string) (models.LiveQuote, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry, ok := q.entries[series]
	if !ok || !entry.ok {
		return models.LiveQuote{}, false
	}
	return entry.quote, true
}

// Reset drops every cached quote. The next GetOrFetch per series goes
// upstream again.
func (q *LiveQuotes) Reset() {
	q.mu.Lock()
	q.entries = make(map[string]quoteEntry)
	q.mu.Unlock()
}
