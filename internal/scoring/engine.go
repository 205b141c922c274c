// Package scoring reduces a wallet feature vector to a 0-100 risk
// score, a letter tier and a percentile. Scoring is a pure function of
// its input: no branch reads shared state and every empty-input case
// has a defined result, so concurrent callers need no coordination.
package scoring

import (
	"math"

	"solana-risk-lab/internal/domain"
)

// Component weights. Must sum to 1.0.
const (
	weightDiversity = 0.20
	weightSafety    = 0.25
	weightHygiene   = 0.15
	weightLiquidity = 0.20
	weightExposure  = 0.20
)

// Baseline scores for components with no real signal yet.
// transactionHygiene and liquidityHealth are intentional placeholders:
// the constant-return contract must be preserved until real transaction
// and liquidity analysis is wired in.
const (
	baselineTransactionHygiene = 85
	baselineLiquidityHealth    = 75
)

// auditedProtocols is the fixed allow-list used by the protocol safety
// component. Names are matched case-sensitively against the caller's
// protocol list, which is normalized at the telemetry boundary.
var auditedProtocols = map[string]struct{}{
	"marinade": {},
	"orca":     {},
	"raydium":  {},
	"jupiter":  {},
	"solend":   {},
	"kamino":   {},
	"drift":    {},
	"jito":     {},
	"meteora":  {},
	"mango":    {},
	"sanctum":  {},
	"lifinity": {},
}

// Score computes a RiskScoreResult from a feature vector using the
// fixed percentile bracket table. See ScoreWithCorpus for empirical
// percentiles.
func Score(features domain.FeatureVector) domain.RiskScoreResult {
	return ScoreWithCorpus(features, nil)
}

// ScoreWithCorpus computes a RiskScoreResult, deriving the percentile
// from an empirical rank over corpus when corpus is non-empty and from
// the fixed bracket table otherwise.
func ScoreWithCorpus(features domain.FeatureVector, corpus []int) domain.RiskScoreResult {
	breakdown := domain.ScoreBreakdown{
		PortfolioDiversity: portfolioDiversity(len(features.Holdings)),
		ProtocolSafety:     protocolSafety(features.Positions, features.Protocols),
		TransactionHygiene: baselineTransactionHygiene,
		LiquidityHealth:    baselineLiquidityHealth,
		ExposureManagement: exposureManagement(features.Positions),
	}

	raw := weightDiversity*breakdown.PortfolioDiversity +
		weightSafety*breakdown.ProtocolSafety +
		weightHygiene*breakdown.TransactionHygiene +
		weightLiquidity*breakdown.LiquidityHealth +
		weightExposure*breakdown.ExposureManagement

	score := clampScore(int(math.Round(raw)))

	return domain.RiskScoreResult{
		Score:      score,
		Tier:       TierFor(score),
		Percentile: percentile(score, corpus),
		Breakdown:  breakdown,
	}
}

// portfolioDiversity maps holdings count through a fixed step function.
func portfolioDiversity(holdings int) float64 {
	switch {
	case holdings == 0:
		return 0
	case holdings == 1:
		return 30
	case holdings <= 3:
		return 50
	case holdings <= 5:
		return 70
	case holdings <= 10:
		return 85
	default:
		return 95
	}
}

// protocolSafety scores the fraction of the wallet's protocols found in
// the audited allow-list. A wallet with no positions has no protocol
// exposure at all, which is treated as absence of risk, not missing
// data, and scores 100.
func protocolSafety(positions []domain.DefiPosition, protocols []string) float64 {
	if len(positions) == 0 {
		return 100
	}
	if len(protocols) == 0 {
		return 0
	}

	audited := 0
	for _, p := range protocols {
		if _, ok := auditedProtocols[p]; ok {
			audited++
		}
	}
	return float64(audited) / float64(len(protocols)) * 100
}

// exposureManagement scores position concentration: the share of
// positions held in the single most-used protocol, mapped through a
// fixed step function. No positions means no concentration risk.
func exposureManagement(positions []domain.DefiPosition) float64 {
	if len(positions) == 0 {
		return 100
	}

	perProtocol := make(map[string]int)
	maxCount := 0
	for _, p := range positions {
		perProtocol[p.Protocol]++
		if perProtocol[p.Protocol] > maxCount {
			maxCount = perProtocol[p.Protocol]
		}
	}

	ratio := float64(maxCount) / float64(len(positions))
	switch {
	case ratio > 0.7:
		return 40
	case ratio > 0.5:
		return 60
	case ratio > 0.3:
		return 80
	default:
		return 95
	}
}

// tierThresholds is scanned in descending order; the first threshold at
// or below the score wins. The brackets partition [0, 100] with no
// overlap: [95,100]=S [85,94]=A [70,84]=B [50,69]=C [30,49]=D [0,29]=F.
var tierThresholds = []struct {
	min  int
	tier domain.Tier
}{
	{95, domain.TierS},
	{85, domain.TierA},
	{70, domain.TierB},
	{50, domain.TierC},
	{30, domain.TierD},
	{0, domain.TierF},
}

// TierFor maps a clamped score to its letter tier.
func TierFor(score int) domain.Tier {
	for _, t := range tierThresholds {
		if score >= t.min {
			return t.tier
		}
	}
	return domain.TierF
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
