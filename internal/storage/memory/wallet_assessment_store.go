// Package memory provides in-memory storage implementations used by
// fixture modes and tests. All stores are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// WalletAssessmentStore is an in-memory implementation of
// storage.WalletAssessmentStore.
type WalletAssessmentStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.WalletAssessment // keyed by wallet, unordered
}

// NewWalletAssessmentStore creates a new in-memory wallet assessment store.
func NewWalletAssessmentStore() *WalletAssessmentStore {
	return &WalletAssessmentStore{
		data: make(map[string][]*domain.WalletAssessment),
	}
}

// Compile-time interface check.
var _ storage.WalletAssessmentStore = (*WalletAssessmentStore)(nil)

// Insert adds a new assessment. Returns ErrDuplicateKey if
// (wallet, assessed_at) exists.
func (s *WalletAssessmentStore) Insert(_ context.Context, a *domain.WalletAssessment) error {
	if a == nil || a.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data[a.Wallet] {
		if existing.AssessedAt == a.AssessedAt {
			return storage.ErrDuplicateKey
		}
	}

	copy := *a
	s.data[a.Wallet] = append(s.data[a.Wallet], &copy)
	return nil
}

// GetLatest retrieves the most recent assessment for a wallet.
func (s *WalletAssessmentStore) GetLatest(_ context.Context, wallet string) (*domain.WalletAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assessments := s.data[wallet]
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
	return &copy, nil
}

// ListByWallet retrieves all assessments for a wallet, ordered by
// assessed_at ASC.
func (s *WalletAssessmentStore) ListByWallet(_ context.Context, wallet string) ([]*domain.WalletAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assessments := s.data[wallet]
	result := make([]*domain.WalletAssessment, 0, len(assessments))
	for _, a := range assessments {
		copy := *a
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AssessedAt < result[j].AssessedAt
	})
	return result, nil
}

// ListLatestScores returns the most recent score of every wallet.
func (s *WalletAssessmentStore) ListLatestScores(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Iterate wallets in sorted order for deterministic output.
	wallets := make([]string, 0, len(s.data))
	for w := range s.data {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)

	scores := make([]int, 0, len(wallets))
	for _, w := range wallets {
		assessments := s.data[w]
		latest := assessments[0]
		for _, a := range assessments[1:] {
			if a.AssessedAt > latest.AssessedAt {
				latest = a
			}
		}
		scores = append(scores, latest.Score)
	}
	return scores, nil
}
