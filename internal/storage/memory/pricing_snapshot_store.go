package memory

import (
	"context"
	"sort"
	"sync"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// PricingSnapshotStore is an in-memory implementation of
// storage.PricingSnapshotStore.
type PricingSnapshotStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.PricingSnapshot // keyed by created_at
}

// NewPricingSnapshotStore creates a new in-memory pricing snapshot store.
func NewPricingSnapshotStore() *PricingSnapshotStore {
	return &PricingSnapshotStore{
		data: make(map[int64]*domain.PricingSnapshot),
	}
}

// Compile-time interface check.
var _ storage.PricingSnapshotStore = (*PricingSnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if created_at exists.
func (s *PricingSnapshotStore) Insert(_ context.Context, snap *domain.PricingSnapshot) error {
	if snap == nil || snap.CreatedAt == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.CreatedAt]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *snap
	s.data[snap.CreatedAt] = &copy
	return nil
}

// GetLatest retrieves the most recent snapshot.
func (s *PricingSnapshotStore) GetLatest(_ context.Context) (*domain.PricingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, storage.ErrNotFound
	}

	var latest *domain.PricingSnapshot
	for _, snap := range s.data {
		if latest == nil || snap.CreatedAt > latest.CreatedAt {
			latest = snap
		}
	}

	copy := *latest
	return &copy, nil
}

// ListRange retrieves snapshots within [start, end], ordered by
// created_at ASC.
func (s *PricingSnapshotStore) ListRange(_ context.Context, start, end int64) ([]*domain.PricingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricingSnapshot
	for _, snap := range s.data {
		if snap.CreatedAt >= start && snap.CreatedAt <= end {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})
	return result, nil
}
