package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/internal/services/dataset"
	"BitSight/pkg/logger"
)

// ErrNoSnapshot is returned by Current before the first successful build.
var ErrNoSnapshot = errors.New("no snapshot available")

// SnapshotService owns the in-memory snapshot. Reads always see a complete
// snapshot; Refresh swaps the whole value atomically and a failed rebuild
// leaves the previous snapshot untouched. The durable store and archive are
// best-effort sinks, never part of the read path.
type SnapshotService struct {
	builder *DatasetBuilder
	store   drepo.SnapshotStore
	archive drepo.DatasetArchive
	events  drepo.EventPublisher
	metrics drepo.Metrics
	log     *logger.Logger
	quotes  *LiveQuotes

	mu      sync.RWMutex
	current *models.Snapshot

	refreshMu sync.Mutex
}

// NewSnapshotService wires the snapshot lifecycle. archive and events may be
// nil when those sinks are disabled.
func NewSnapshotService(builder *DatasetBuilder, store drepo.SnapshotStore, archive drepo.DatasetArchive, events drepo.EventPublisher, quotes *LiveQuotes, metrics drepo.Metrics, log *logger.Logger) *SnapshotService {
	return &SnapshotService{
		builder: builder,
		store:   store,
		archive: archive,
		events:  events,
		quotes:  quotes,
		metrics: metrics,
		log:     log,
	}
}

// Current returns the snapshot being served. The returned value is shared
// and must not be mutated.
func (s *SnapshotService) Current() (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

// LoadOrBuild restores the persisted snapshot if one exists, otherwise
// builds from upstream. Called once at startup.
func (s *SnapshotService) LoadOrBuild(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	switch {
	case err == nil:
		s.install(snap)
		s.log.Info("snapshot restored from store",
			logger.String("symbol", snap.Symbol),
			logger.Int("rows", len(snap.Rows)),
			logger.Time("built_at", snap.BuiltAt))
		return nil
	case errors.Is(err, drepo.ErrSnapshotNotFound):
		// First boot, build from scratch.
	default:
		s.log.Warn("snapshot store load failed, rebuilding", logger.Error(err))
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the snapshot from upstream and swaps it in. On failure
// the previously served snapshot stays in place and the error is returned.
// Concurrent calls are serialized; each performs its own rebuild.
func (s *SnapshotService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	snap, err := s.builder.Build(ctx)
	if err != nil {
		s.metrics.RecordRefresh("error", time.Since(start).Seconds())
		s.metrics.RecordBuildError(dataset.ErrorKind(err))
		s.log.Error("snapshot rebuild failed, keeping previous snapshot", logger.Error(err))
		return fmt.Errorf("rebuild snapshot: %w", err)
	}

	s.install(snap)
	if s.quotes != nil {
		s.quotes.Reset()
	}
	took := time.Since(start)
	s.metrics.RecordRefresh("ok", took.Seconds())
	s.log.Info("snapshot refreshed",
		logger.String("symbol", snap.Symbol),
		logger.Int("rows", len(snap.Rows)),
		logger.Duration("took", took))

	s.persist(ctx, snap, took)
	return nil
}

func (s *SnapshotService) install(snap *models.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	s.metrics.SetSnapshotRows(len(snap.Rows))
	s.metrics.SetSnapshotAge(time.Since(snap.BuiltAt).Seconds())
}

// persist fans the fresh snapshot out to the durable sinks. Sink failures
// are logged and do not affect the served snapshot.
func (s *SnapshotService) persist(ctx context.Context, snap *models.Snapshot, took time.Duration) {
	if err := s.store.Save(ctx, snap); err != nil {
		s.log.Warn("snapshot store save failed", logger.Error(err))
	}
	if s.archive != nil {
		if err := s.archive.Append(ctx, snap.Symbol, snap.Rows); err != nil {
			s.log.Warn("dataset archive append failed", logger.Error(err))
		}
	}
	if s.events != nil {
		if err := s.events.SnapshotRefreshed(ctx, RefreshEventFor(snap, took)); err != nil {
			s.log.Warn("refresh event publish failed", logger.Error(err))
		}
	}
}
