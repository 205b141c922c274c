package memory

import (
	"context"
	"sort"
	"sync"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// ScoreTimeseriesStore is an in-memory implementation of
// storage.ScoreTimeseriesStore.
type ScoreTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.ScorePoint // keyed by wallet
}

// NewScoreTimeseriesStore creates a new in-memory score timeseries store.
func NewScoreTimeseriesStore() *ScoreTimeseriesStore {
	return &ScoreTimeseriesStore{
		data: make(map[string][]*domain.ScorePoint),
	}
}

// Compile-time interface check.
var _ storage.ScoreTimeseriesStore = (*ScoreTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails the entire batch on a
// duplicate (wallet, timestamp_ms).
func (s *ScoreTimeseriesStore) InsertBulk(_ context.Context, points []*domain.ScorePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		wallet      string
		timestampMs int64
	}

	batchKeys := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Wallet == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Wallet, p.TimestampMs}
		for _, existing := range s.data[p.Wallet] {
			if existing.TimestampMs == p.TimestampMs {
				return storage.ErrDuplicateKey
			}
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, p := range points {
		copy := *p
		s.data[p.Wallet] = append(s.data[p.Wallet], &copy)
	}
	return nil
}

// GetByWallet retrieves all points for a wallet, ordered by
// timestamp_ms ASC.
func (s *ScoreTimeseriesStore) GetByWallet(_ context.Context, wallet string) ([]*domain.ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.data[wallet]
	result := make([]*domain.ScorePoint, 0, len(points))
	for _, p := range points {
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}
