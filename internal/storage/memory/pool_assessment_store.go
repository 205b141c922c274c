package memory

import (
	"context"
	"sort"
	"sync"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// PoolAssessmentStore is an in-memory implementation of
// storage.PoolAssessmentStore.
type PoolAssessmentStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PoolAssessment // keyed by pool
}

// NewPoolAssessmentStore creates a new in-memory pool assessment store.
func NewPoolAssessmentStore() *PoolAssessmentStore {
	return &PoolAssessmentStore{
		data: make(map[string][]*domain.PoolAssessment),
	}
}

// Compile-time interface check.
var _ storage.PoolAssessmentStore = (*PoolAssessmentStore)(nil)

// Insert adds a new assessment. Returns ErrDuplicateKey if
// (pool, assessed_at) exists.
func (s *PoolAssessmentStore) Insert(_ context.Context, a *domain.PoolAssessment) error {
	if a == nil || a.Pool == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data[a.Pool] {
		if existing.AssessedAt == a.AssessedAt {
			return storage.ErrDuplicateKey
		}
	}

	copy := *a
	copy.Reasons = append([]string(nil), a.Reasons...)
	s.data[a.Pool] = append(s.data[a.Pool], &copy)
	return nil
}

// GetLatest retrieves the most recent assessment for a pool.
func (s *PoolAssessmentStore) GetLatest(_ context.Context, pool string) (*domain.PoolAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assessments := s.data[pool]
	if len(assessments) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := assessments[0]
	for _, a := range assessments[1:] {
		if a.AssessedAt > latest.AssessedAt {
			latest = a
		}
	}

	copy := *latest
	copy.Reasons = append([]string(nil), latest.Reasons...)
	return &copy, nil
}

// ListByPool retrieves all assessments for a pool, ordered by
// assessed_at ASC.
func (s *PoolAssessmentStore) ListByPool(_ context.Context, pool string) ([]*domain.PoolAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assessments := s.data[pool]
	result := make([]*domain.PoolAssessment, 0, len(assessments))
	for _, a := range assessments {
		copy := *a
		copy.Reasons = append([]string(nil), a.Reasons...)
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AssessedAt < result[j].AssessedAt
	})
	return result, nil
}
