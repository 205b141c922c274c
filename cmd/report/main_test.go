package main

import (
	"context"
	"math"
	"testing"
	"time"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage/memory"
)

// staleMarketStore reports a 7-day average but returns no points, the
// shape a timeseries store takes when retention empties the window
// between the two queries.
type staleMarketStore struct{}

func (staleMarketStore) InsertBulk(ctx context.Context, points []*domain.MarketPricePoint) error {
	return nil
}

func (staleMarketStore) GetRange(ctx context.Context, start, end int64) ([]*domain.MarketPricePoint, error) {
	return nil, nil
}

func (staleMarketStore) Average(ctx context.Context, start, end int64) (float64, error) {
	return 1.5, nil
}

func TestMarketContext_EmptyRangeAfterAverage(t *testing.T) {
	launch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	pctx, err := marketContext(context.Background(), staleMarketStore{}, launch)
	if err != nil {
		t.Fatalf("marketContext: %v", err)
	}
	if pctx != nil {
		t.Errorf("expected nil context when the window is empty, got %+v", pctx)
	}
}

func TestMarketContext_WithData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMarketPriceStore()

	nowMs := time.Now().UTC().UnixMilli()
	points := []*domain.MarketPricePoint{
		{TimestampMs: nowMs - 2000, PriceUSD: 1.0},
		{TimestampMs: nowMs - 1000, PriceUSD: 3.0},
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	launch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pctx, err := marketContext(ctx, store, launch)
	if err != nil {
		t.Fatalf("marketContext: %v", err)
	}
	if pctx == nil {
		t.Fatal("expected a pricing context")
	}

	if pctx.CurrentPrice != 3.0 {
		t.Errorf("expected current price 3.0, got %f", pctx.CurrentPrice)
	}
	if math.Abs(pctx.AvgPrice7d-2.0) > 1e-9 {
		t.Errorf("expected 7-day average 2.0, got %f", pctx.AvgPrice7d)
	}
	if !pctx.LaunchDate.Equal(launch) {
		t.Errorf("launch date not carried through")
	}
}

func TestMarketContext_NoData(t *testing.T) {
	launch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	pctx, err := marketContext(context.Background(), memory.NewMarketPriceStore(), launch)
	if err != nil {
		t.Fatalf("marketContext: %v", err)
	}
	if pctx != nil {
		t.Errorf("expected nil context for an empty store, got %+v", pctx)
	}
}
