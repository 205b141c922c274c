package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// PricingSnapshotStore implements storage.PricingSnapshotStore using PostgreSQL.
type PricingSnapshotStore struct {
	pool *Pool
}

// NewPricingSnapshotStore creates a new PricingSnapshotStore.
func NewPricingSnapshotStore(pool *Pool) *PricingSnapshotStore {
	return &PricingSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PricingSnapshotStore = (*PricingSnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if created_at exists.
func (s *PricingSnapshotStore) Insert(ctx context.Context, snap *domain.PricingSnapshot) error {
	if snap == nil || snap.CreatedAt == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pricing_snapshots (
			created_at, phase, base_price, final_price,
			volume_multiplier, congestion_multiplier, market_multiplier,
			adjustment_applied, reason
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		snap.CreatedAt, snap.Phase, snap.BasePrice, snap.FinalPrice,
		snap.VolumeMultiplier, snap.CongestionMultiplier, snap.MarketMultiplier,
		snap.AdjustmentApplied, snap.Reason,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pricing snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot.
func (s *PricingSnapshotStore) GetLatest(ctx context.Context) (*domain.PricingSnapshot, error) {
	query := `
		SELECT
			created_at, phase, base_price, final_price,
			volume_multiplier, congestion_multiplier, market_multiplier,
			adjustment_applied, reason
		FROM pricing_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query)
	snap, err := scanPricingSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest pricing snapshot: %w", err)
	}
	return snap, nil
}

// ListRange retrieves snapshots within [start, end], ordered by
// created_at ASC.
func (s *PricingSnapshotStore) ListRange(ctx context.Context, start, end int64) ([]*domain.PricingSnapshot, error) {
	query := `
		SELECT
			created_at, phase, base_price, final_price,
			volume_multiplier, congestion_multiplier, market_multiplier,
			adjustment_applied, reason
		FROM pricing_snapshots
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("list pricing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.PricingSnapshot
	for rows.Next() {
		var snap domain.PricingSnapshot

		err := rows.Scan(
			&snap.CreatedAt, &snap.Phase, &snap.BasePrice, &snap.FinalPrice,
			&snap.VolumeMultiplier, &snap.CongestionMultiplier, &snap.MarketMultiplier,
			&snap.AdjustmentApplied, &snap.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pricing snapshot row: %w", err)
		}

		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing snapshot rows: %w", err)
	}

	return snaps, nil
}

// scanPricingSnapshot scans a single row into a PricingSnapshot.
func scanPricingSnapshot(row pgx.Row) (*domain.PricingSnapshot, error) {
	var snap domain.PricingSnapshot

	err := row.Scan(
		&snap.CreatedAt, &snap.Phase, &snap.BasePrice, &snap.FinalPrice,
		&snap.VolumeMultiplier, &snap.CongestionMultiplier, &snap.MarketMultiplier,
		&snap.AdjustmentApplied, &snap.Reason,
	)
	if err != nil {
		return nil, err
	}

	return &snap, nil
}
