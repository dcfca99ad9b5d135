package repository

import (
	"context"
	"errors"
	"fmt"

	"BitSight/internal/domain/models"
	drepo "BitSight/internal/domain/repository"
	"BitSight/pkg/cache"
)

// SnapshotCache persists the single snapshot blob in a cache service under a
// fixed key. The blob never expires; a fresh build overwrites it wholesale.
type SnapshotCache struct {
	cache cache.Service
	key   string
}

var _ drepo.SnapshotStore = (*SnapshotCache)(nil)

// NewSnapshotCache creates a snapshot store over the given cache service.
func NewSnapshotCache(svc cache.Service, key string) *SnapshotCache {
	return &SnapshotCache{cache: svc, key: key}
}

func (s *SnapshotCache) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := s.cache.Set(ctx, s.key, snap, 0); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotCache) Load(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := s.cache.Get(ctx, s.key, &snap)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, drepo.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if len(snap.Rows) == 0 {
		return nil, drepo.ErrSnapshotNotFound
	}
	return &snap, nil
}
