package clickhouse

import (
	"context"
	"fmt"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

// MarketPriceStore implements storage.MarketPriceStore using ClickHouse.
type MarketPriceStore struct {
	conn *Conn
}

// NewMarketPriceStore creates a new MarketPriceStore.
func NewMarketPriceStore(conn *Conn) *MarketPriceStore {
	return &MarketPriceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MarketPriceStore = (*MarketPriceStore)(nil)

// InsertBulk adds multiple points. Fails the entire batch on a
// duplicate timestamp_ms.
func (s *MarketPriceStore) InsertBulk(ctx context.Context, points []*domain.MarketPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[p.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[p.TimestampMs] = struct{}{}
	}

	// Check for duplicates against existing DB rows.
	// MergeTree does not enforce uniqueness at insert time.
	for _, p := range points {
		exists, err := s.exists(ctx, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_prices (timestamp_ms, price_usd)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(uint64(p.TimestampMs), p.PriceUSD); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetRange retrieves points within [start, end], ordered by
// timestamp_ms ASC.
func (s *MarketPriceStore) GetRange(ctx context.Context, start, end int64) ([]*domain.MarketPricePoint, error) {
	query := `
		SELECT timestamp_ms, price_usd
		FROM market_prices
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query market prices by range: %w", err)
	}
	defer rows.Close()

	return scanMarketPrices(rows)
}

// Average returns the mean price within [start, end].
func (s *MarketPriceStore) Average(ctx context.Context, start, end int64) (float64, error) {
	query := `
		SELECT avg(price_usd), count()
		FROM market_prices
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
	`

	var avg float64
	var count uint64
	err := s.conn.QueryRow(ctx, query, uint64(start), uint64(end)).Scan(&avg, &count)
	if err != nil {
		return 0, fmt.Errorf("query market price average: %w", err)
	}
	if count == 0 {
		return 0, storage.ErrNotFound
	}
	return avg, nil
}

// exists checks if a point with the given timestamp exists.
func (s *MarketPriceStore) exists(ctx context.Context, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM market_prices
		WHERE timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanMarketPrices scans multiple rows.
func scanMarketPrices(rows chRows) ([]*domain.MarketPricePoint, error) {
	var points []*domain.MarketPricePoint

	for rows.Next() {
		var p domain.MarketPricePoint
		var timestampMs uint64

		if err := rows.Scan(&timestampMs, &p.PriceUSD); err != nil {
			return nil, fmt.Errorf("scan market price row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market price rows: %w", err)
	}

	return points, nil
}
