package clickhouse

import (
	"context"
	"fmt"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// ScoreTimeseriesStore implements storage.ScoreTimeseriesStore using ClickHouse.
type ScoreTimeseriesStore struct {
	conn *Conn
}

// NewScoreTimeseriesStore creates a new ScoreTimeseriesStore.
func NewScoreTimeseriesStore(conn *Conn) *ScoreTimeseriesStore {
	return &ScoreTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreTimeseriesStore = (*ScoreTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails the entire batch on a
// duplicate (wallet, timestamp_ms).
func (s *ScoreTimeseriesStore) InsertBulk(ctx context.Context, points []*domain.ScorePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		wallet      string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Wallet == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Wallet, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows.
	// MergeTree does not enforce uniqueness at insert time.
	for _, p := range points {
		exists, err := s.exists(ctx, p.Wallet, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO score_timeseries (wallet, timestamp_ms, score, tier)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.Wallet, uint64(p.TimestampMs), int32(p.Score), string(p.Tier)); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByWallet retrieves all points for a wallet, ordered by
// timestamp_ms ASC.
func (s *ScoreTimeseriesStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.ScorePoint, error) {
	query := `
		SELECT wallet, timestamp_ms, score, tier
		FROM score_timeseries
		WHERE wallet = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query score timeseries by wallet: %w", err)
	}
	defer rows.Close()

	var points []*domain.ScorePoint
	for rows.Next() {
		var p domain.ScorePoint
		var timestampMs uint64
		var score int32
		var tier string

		if err := rows.Scan(&p.Wallet, &timestampMs, &score, &tier); err != nil {
			return nil, fmt.Errorf("scan score timeseries row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		p.Score = int(score)
		p.Tier = domain.Tier(tier)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score timeseries rows: %w", err)
	}

	return points, nil
}

// exists checks if a point with the given key exists.
func (s *ScoreTimeseriesStore) exists(ctx context.Context, wallet string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM score_timeseries
		WHERE wallet = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, wallet, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
