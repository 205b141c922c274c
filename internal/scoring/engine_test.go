package scoring

import (
	"math"
	"testing"

	"solana-risk-lab/internal/domain"
)

func holdings(n int) []domain.TokenHolding {
	hs := make([]domain.TokenHolding, n)
	for i := range hs {
		hs[i] = domain.TokenHolding{Mint: "mint", Symbol: "TKN", Amount: 1, ValueUSD: 10}
	}
	return hs
}

func positions(protocols ...string) []domain.DefiPosition {
	ps := make([]domain.DefiPosition, len(protocols))
	for i, p := range protocols {
		ps[i] = domain.DefiPosition{Protocol: p, Category: "lending", ValueUSD: 100}
	}
	return ps
}

func TestScore_EmptyWallet(t *testing.T) {
	result := Score(domain.FeatureVector{Wallet: "empty"})

	if result.Breakdown.PortfolioDiversity != 0 {
		t.Errorf("PortfolioDiversity = %f, want 0", result.Breakdown.PortfolioDiversity)
	}
	if result.Breakdown.ProtocolSafety != 100 {
		t.Errorf("ProtocolSafety = %f, want 100", result.Breakdown.ProtocolSafety)
	}
	if result.Breakdown.ExposureManagement != 100 {
		t.Errorf("ExposureManagement = %f, want 100", result.Breakdown.ExposureManagement)
	}
	if result.Breakdown.TransactionHygiene != 85 {
		t.Errorf("TransactionHygiene = %f, want baseline 85", result.Breakdown.TransactionHygiene)
	}
	if result.Breakdown.LiquidityHealth != 75 {
		t.Errorf("LiquidityHealth = %f, want baseline 75", result.Breakdown.LiquidityHealth)
	}

	// 0.20*0 + 0.25*100 + 0.15*85 + 0.20*75 + 0.20*100 = 72.75 -> 73
	if result.Score != 73 {
		t.Errorf("Score = %d, want 73", result.Score)
	}
	if result.Tier != domain.TierB {
		t.Errorf("Tier = %s, want B", result.Tier)
	}
}

func TestScore_WeightedSumInvariant(t *testing.T) {
	cases := []domain.FeatureVector{
		{Wallet: "w1"},
		{Wallet: "w2", Holdings: holdings(4), Positions: positions("orca", "orca", "solend"), Protocols: []string{"orca", "solend"}},
		{Wallet: "w3", Holdings: holdings(12), Positions: positions("unknown"), Protocols: []string{"unknown"}},
	}

	for _, fv := range cases {
		result := Score(fv)
		b := result.Breakdown
		want := int(math.Round(0.20*b.PortfolioDiversity + 0.25*b.ProtocolSafety +
			0.15*b.TransactionHygiene + 0.20*b.LiquidityHealth + 0.20*b.ExposureManagement))
		if result.Score != want {
			t.Errorf("%s: Score = %d, want round of weighted sum = %d", fv.Wallet, result.Score, want)
		}
	}
}

func TestPortfolioDiversity_Steps(t *testing.T) {
	cases := []struct {
		holdings int
		want     float64
	}{
		{0, 0}, {1, 30}, {2, 50}, {3, 50}, {4, 70}, {5, 70},
		{6, 85}, {10, 85}, {11, 95}, {50, 95},
	}

	for _, tc := range cases {
		if got := portfolioDiversity(tc.holdings); got != tc.want {
			t.Errorf("portfolioDiversity(%d) = %f, want %f", tc.holdings, got, tc.want)
		}
	}
}

func TestProtocolSafety_AuditedFraction(t *testing.T) {
	ps := positions("orca", "unknown")

	// 1 of 2 protocols audited -> 50
	got := protocolSafety(ps, []string{"orca", "unknownfarm"})
	if got != 50 {
		t.Errorf("protocolSafety = %f, want 50", got)
	}

	// All audited -> 100
	got = protocolSafety(ps, []string{"orca", "solend", "marinade"})
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("protocolSafety = %f, want 100", got)
	}

	// Positions but no protocol names -> 0
	if got := protocolSafety(ps, nil); got != 0 {
		t.Errorf("protocolSafety with empty protocol list = %f, want 0", got)
	}
}

func TestExposureManagement_ConcentrationSteps(t *testing.T) {
	cases := []struct {
		name string
		ps   []domain.DefiPosition
		want float64
	}{
		{"all one protocol", positions("orca", "orca", "orca"), 40},                        // ratio 1.0
		{"three quarters", positions("orca", "orca", "orca", "solend"), 40},                // ratio 0.75
		{"two thirds", positions("orca", "orca", "solend"), 60},                            // ratio 0.667
		{"even split", positions("orca", "solend", "drift", "kamino"), 95},                 // ratio 0.25
		{"third each", positions("orca", "orca", "solend", "drift", "kamino", "jito"), 80}, // ratio 0.333
	}

	for _, tc := range cases {
		if got := exposureManagement(tc.ps); got != tc.want {
			t.Errorf("%s: exposureManagement = %f, want %f", tc.name, got, tc.want)
		}
	}
}

func TestExposureManagement_HalfRatio(t *testing.T) {
	// 2/4 = 0.5 is not > 0.5, falls to the > 0.3 bracket.
	ps := positions("orca", "orca", "solend", "drift")
	if got := exposureManagement(ps); got != 80 {
		t.Errorf("exposureManagement at ratio 0.5 = %f, want 80", got)
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  domain.Tier
	}{
		{100, domain.TierS}, {95, domain.TierS}, {94, domain.TierA},
		{85, domain.TierA}, {84, domain.TierB}, {70, domain.TierB},
		{69, domain.TierC}, {50, domain.TierC}, {49, domain.TierD},
		{30, domain.TierD}, {29, domain.TierF}, {0, domain.TierF},
	}

	for _, tc := range cases {
		if got := TierFor(tc.score); got != tc.want {
			t.Errorf("TierFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestTierFor_TotalPartition(t *testing.T) {
	// Every score in [0, 100] maps to exactly one tier.
	for s := 0; s <= 100; s++ {
		tier := TierFor(s)
		switch tier {
		case domain.TierS, domain.TierA, domain.TierB, domain.TierC, domain.TierD, domain.TierF:
		default:
			t.Fatalf("TierFor(%d) returned unknown tier %q", s, tier)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	fv := domain.FeatureVector{
		Wallet:    "wallet1",
		Holdings:  holdings(7),
		Positions: positions("orca", "solend", "orca"),
		Protocols: []string{"orca", "solend"},
	}

	first := Score(fv)
	for i := 0; i < 20; i++ {
		if got := Score(fv); got != first {
			t.Fatalf("Score not deterministic: got %+v, want %+v", got, first)
		}
	}
}
