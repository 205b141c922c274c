package storage

import (
	"context"

	"solana-risk-lab/internal/domain"
)

// WalletAssessmentStore provides access to wallet_assessments storage.
type WalletAssessmentStore interface {
	// Insert adds a new assessment. Returns ErrDuplicateKey if
	// (wallet, assessed_at) exists.
	Insert(ctx context.Context, a *domain.WalletAssessment) error

	// GetLatest retrieves the most recent assessment for a wallet.
	// Returns ErrNotFound if the wallet has never been assessed.
	GetLatest(ctx context.Context, wallet string) (*domain.WalletAssessment, error)

	// ListByWallet retrieves all assessments for a wallet, ordered by
	// assessed_at ASC.
	ListByWallet(ctx context.Context, wallet string) ([]*domain.WalletAssessment, error)

	// ListLatestScores returns the most recent score of every assessed
	// wallet, for use as the percentile corpus. Order is unspecified.
	ListLatestScores(ctx context.Context) ([]int, error)
}

// PoolAssessmentStore provides access to pool_assessments storage.
type PoolAssessmentStore interface {
	// Insert adds a new assessment. Returns ErrDuplicateKey if
	// (pool, assessed_at) exists.
	Insert(ctx context.Context, a *domain.PoolAssessment) error

	// GetLatest retrieves the most recent assessment for a pool.
	// Returns ErrNotFound if the pool has never been assessed.
	GetLatest(ctx context.Context, pool string) (*domain.PoolAssessment, error)

	// ListByPool retrieves all assessments for a pool, ordered by
	// assessed_at ASC.
	ListByPool(ctx context.Context, pool string) ([]*domain.PoolAssessment, error)
}

// PricingSnapshotStore provides access to pricing_snapshots storage.
type PricingSnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if
	// created_at exists.
	Insert(ctx context.Context, s *domain.PricingSnapshot) error

	// GetLatest retrieves the most recent snapshot.
	// Returns ErrNotFound if no snapshot has been stored.
	GetLatest(ctx context.Context) (*domain.PricingSnapshot, error)

	// ListRange retrieves snapshots created within [start, end]
	// (inclusive, ms), ordered by created_at ASC.
	ListRange(ctx context.Context, start, end int64) ([]*domain.PricingSnapshot, error)
}

// MarketPriceStore provides access to market_prices storage.
type MarketPriceStore interface {
	// InsertBulk adds multiple points. Fails the entire batch on a
	// duplicate timestamp_ms.
	InsertBulk(ctx context.Context, points []*domain.MarketPricePoint) error

	// GetRange retrieves points within [start, end] (inclusive, ms),
	// ordered by timestamp_ms ASC.
	GetRange(ctx context.Context, start, end int64) ([]*domain.MarketPricePoint, error)

	// Average returns the mean price within [start, end] (inclusive,
	// ms). Returns ErrNotFound if the range holds no points.
	Average(ctx context.Context, start, end int64) (float64, error)
}

// ScoreTimeseriesStore provides access to score_timeseries storage.
type ScoreTimeseriesStore interface {
	// InsertBulk adds multiple points. Fails the entire batch on a
	// duplicate (wallet, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.ScorePoint) error

	// GetByWallet retrieves all points for a wallet, ordered by
	// timestamp_ms ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.ScorePoint, error)
}
