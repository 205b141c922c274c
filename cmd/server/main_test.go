package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solana-risk-lab/internal/domain"
	"solana-risk-lab/internal/storage/memory"
	"solana-risk-lab/internal/telemetry"
)

func newTestServer() *Server {
	return &Server{
		basePrice:     0.05,
		estimatedCost: 0.02,
		launchDate:    time.Now().UTC().AddDate(0, 0, -120),
		reserveRatio:  1.0,
		stores: &allStores{
			walletStore:     memory.NewWalletAssessmentStore(),
			poolStore:       memory.NewPoolAssessmentStore(),
			snapshotStore:   memory.NewPricingSnapshotStore(),
			marketStore:     memory.NewMarketPriceStore(),
			scoreTimeseries: memory.NewScoreTimeseriesStore(),
		},
		cache:   telemetry.NewPriceCache(),
		usage:   newUsageTracker(),
		logger:  log.New(io.Discard, "", 0),
		started: time.Now(),
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleYield_ProgramDerivedPool(t *testing.T) {
	server := newTestServer()

	// The Orca SOL/USDC whirlpool state account is a PDA: a valid pool
	// address that no wallet could ever own.
	const pool = "HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ"

	rec := postJSON(t, server.handleYield, "/api/yield", domain.YieldTrapParams{
		Pool:                 pool,
		HeadlineAPR:          200,
		EffectiveAPR:         20,
		RewardTokenChange30d: -50,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for PDA pool, got %d: %s", rec.Code, rec.Body.String())
	}

	var assessment domain.YieldTrapAssessment
	if err := json.NewDecoder(rec.Body).Decode(&assessment); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if assessment.Status != domain.YieldTrap {
		t.Errorf("expected trap verdict, got %s", assessment.Status)
	}

	stored, err := server.stores.poolStore.GetLatest(context.Background(), pool)
	if err != nil {
		t.Fatalf("assessment not persisted: %v", err)
	}
	if stored.Status != domain.YieldTrap {
		t.Errorf("persisted status %s, want trap", stored.Status)
	}
}

func TestHandleYield_RejectsMalformedPool(t *testing.T) {
	server := newTestServer()

	rec := postJSON(t, server.handleYield, "/api/yield", domain.YieldTrapParams{
		Pool:        "0OIl",
		HeadlineAPR: 10,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed pool address, got %d", rec.Code)
	}
}

func TestHandleScore_RejectsProgramDerivedWallet(t *testing.T) {
	server := newTestServer()

	// Off-curve accounts stay invalid as wallets.
	rec := postJSON(t, server.handleScore, "/api/score", domain.FeatureVector{
		Wallet: "HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for PDA wallet, got %d", rec.Code)
	}
}
