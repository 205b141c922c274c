package memory

import (
	"context"
	"errors"
	"testing"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage"
)

func TestPoolAssessmentStore_InsertAndGetLatest(t *testing.T) {
	store := NewPoolAssessmentStore()
	ctx := context.Background()

	a := &domain.PoolAssessment{
		Pool:       "pool1",
		Status:     domain.YieldSuspicious,
		Confidence: 70,
		Reasons:    []string{"Headline APR more than 3x effective APR"},
		AssessedAt: 1000,
	}

	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetLatest(ctx, "pool1")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}

	if got.Status != domain.YieldSuspicious {
		t.Errorf("Status mismatch: got %s, want %s", got.Status, domain.YieldSuspicious)
	}
	if len(got.Reasons) != 1 {
		t.Errorf("Expected 1 reason, got %d", len(got.Reasons))
	}
}

func TestPoolAssessmentStore_DuplicateKey(t *testing.T) {
	store := NewPoolAssessmentStore()
	ctx := context.Background()

	a := &domain.PoolAssessment{Pool: "pool1", Status: domain.YieldHealthy, AssessedAt: 1000}

	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, a)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPoolAssessmentStore_NotFound(t *testing.T) {
	store := NewPoolAssessmentStore()
	ctx := context.Background()

	_, err := store.GetLatest(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPoolAssessmentStore_ListByPoolOrdered(t *testing.T) {
	store := NewPoolAssessmentStore()
	ctx := context.Background()

	assessments := []*domain.PoolAssessment{
		{Pool: "pool1", Status: domain.YieldTrap, AssessedAt: 3000},
		{Pool: "pool1", Status: domain.YieldHealthy, AssessedAt: 1000},
		{Pool: "pool1", Status: domain.YieldSuspicious, AssessedAt: 2000},
	}

	for _, a := range assessments {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.ListByPool(ctx, "pool1")
	if err != nil {
		t.Fatalf("ListByPool failed: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("Expected 3 assessments, got %d", len(result))
	}

	for i := 1; i < len(result); i++ {
		if result[i].AssessedAt < result[i-1].AssessedAt {
			t.Errorf("Results not ordered: %d < %d", result[i].AssessedAt, result[i-1].AssessedAt)
		}
	}
}

func TestPoolAssessmentStore_ReasonsCopied(t *testing.T) {
	store := NewPoolAssessmentStore()
	ctx := context.Background()

	a := &domain.PoolAssessment{
		Pool:       "pool1",
		Status:     domain.YieldTrap,
		Reasons:    []string{"original"},
		AssessedAt: 1000,
	}

	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's slice must not affect stored data.
	a.Reasons[0] = "mutated"

	got, err := store.GetLatest(ctx, "pool1")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}

	if got.Reasons[0] != "original" {
		t.Errorf("Stored reasons mutated: got %q", got.Reasons[0])
	}
}

func TestPoolAssessmentStore_InvalidInput(t *testing.T) {
	store := NewPoolAssessmentStore()
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	err = store.Insert(ctx, &domain.PoolAssessment{Pool: ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty pool, got %v", err)
	}
}
