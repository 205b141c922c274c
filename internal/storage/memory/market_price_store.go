package memory

import (
	"context"
	"sort"
	"sync"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// MarketPriceStore is an in-memory implementation of
// storage.MarketPriceStore.
type MarketPriceStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.MarketPricePoint // keyed by timestamp_ms
}

// NewMarketPriceStore creates a new in-memory market price store.
func NewMarketPriceStore() *MarketPriceStore {
	return &MarketPriceStore{
		data: make(map[int64]*domain.MarketPricePoint),
	}
}

// Compile-time interface check.
var _ storage.MarketPriceStore = (*MarketPriceStore)(nil)

// InsertBulk adds multiple points. Fails the entire batch on a
// duplicate timestamp_ms.
func (s *MarketPriceStore) InsertBulk(_ context.Context, points []*domain.MarketPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: detect existing and intra-batch duplicates.
	batchKeys := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[p.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[p.TimestampMs] = struct{}{}
	}

	// Second pass: insert all.
	for _, p := range points {
		copy := *p
		s.data[p.TimestampMs] = &copy
	}
	return nil
}

// GetRange retrieves points within [start, end], ordered by
// timestamp_ms ASC.
func (s *MarketPriceStore) GetRange(_ context.Context, start, end int64) ([]*domain.MarketPricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketPricePoint
	for _, p := range s.data {
		if p.TimestampMs >= start && p.TimestampMs <= end {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

// Average returns the mean price within [start, end].
func (s *MarketPriceStore) Average(_ context.Context, start, end int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := 0.0
	count := 0
	for _, p := range s.data {
		if p.TimestampMs >= start && p.TimestampMs <= end {
			sum += p.PriceUSD
			count++
		}
	}

	if count == 0 {
		return 0, storage.ErrNotFound
	}
	return sum / float64(count), nil
}
