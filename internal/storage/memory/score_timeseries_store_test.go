package memory

import (
	"context"
	"errors"
	"testing"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

func TestScoreTimeseriesStore_InsertBulkAndGet(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()

	points := []*domain.ScorePoint{
		{Wallet: "wallet1", TimestampMs: 1000, Score: 70, Tier: domain.TierB},
		{Wallet: "wallet1", TimestampMs: 2000, Score: 75, Tier: domain.TierB},
		{Wallet: "wallet2", TimestampMs: 1500, Score: 90, Tier: domain.TierA},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByWallet(ctx, "wallet1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("Expected 2 points for wallet1, got %d", len(result))
	}
}

func TestScoreTimeseriesStore_DuplicateKey(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()

	points := []*domain.ScorePoint{{Wallet: "wallet1", TimestampMs: 1000, Score: 70}}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, points)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestScoreTimeseriesStore_IntraBatchDuplicate(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()

	points := []*domain.ScorePoint{
		{Wallet: "wallet1", TimestampMs: 1000, Score: 70},
		{Wallet: "wallet1", TimestampMs: 1000, Score: 75}, // duplicate key
	}

	err := store.InsertBulk(ctx, points)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	// Verify nothing was inserted
	result, _ := store.GetByWallet(ctx, "wallet1")
	if len(result) != 0 {
		t.Errorf("Expected 0 points (rollback), got %d", len(result))
	}
}

func TestScoreTimeseriesStore_OrderByTimestamp(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()

	points := []*domain.ScorePoint{
		{Wallet: "wallet1", TimestampMs: 3000, Score: 80},
		{Wallet: "wallet1", TimestampMs: 1000, Score: 70},
		{Wallet: "wallet1", TimestampMs: 2000, Score: 75},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, _ := store.GetByWallet(ctx, "wallet1")

	for i := 1; i < len(result); i++ {
		if result[i].TimestampMs < result[i-1].TimestampMs {
			t.Errorf("Results not ordered: %d < %d", result[i].TimestampMs, result[i-1].TimestampMs)
		}
	}
}

func TestScoreTimeseriesStore_InvalidInput(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ScorePoint{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil point, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.ScorePoint{{Wallet: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty wallet, got %v", err)
	}
}
