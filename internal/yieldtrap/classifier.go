// Package yieldtrap classifies a pool's advertised yield as healthy,
// suspicious or an outright trap.
//
// Six rules run in a fixed order. A later rule may only escalate the
// status already set by an earlier rule (healthy -> suspicious -> trap),
// never downgrade it, and confidence is the running maximum across all
// fired rules. The evaluation order is load-bearing: several rules are
// gated on the status reached so far.
package yieldtrap

import (
	"fmt"

	"solana-risk-lab/internal/domain"
)

// baselineConfidence is the starting confidence before any rule fires.
const baselineConfidence = 50

// statusRank orders statuses for escalate-only transitions.
var statusRank = map[domain.YieldStatus]int{
	domain.YieldHealthy:    0,
	domain.YieldSuspicious: 1,
	domain.YieldTrap:       2,
}

// Classify evaluates the six yield trap rules against pool telemetry.
// It is total over its input domain: degenerate values (zero APR, zero
// emissions) take defined branches instead of failing.
func Classify(params domain.YieldTrapParams) domain.YieldTrapAssessment {
	status := domain.YieldHealthy
	confidence := baselineConfidence
	var reasons []string

	// Derived: relative gap between headline and effective APR, in
	// percent of headline. Zero when headline is not positive.
	aprDelta := 0.0
	if params.HeadlineAPR > 0 {
		aprDelta = 100 * (params.HeadlineAPR - params.EffectiveAPR) / params.HeadlineAPR
	}

	escalate := func(to domain.YieldStatus, conf int, reason string) {
		if statusRank[to] > statusRank[status] {
			status = to
		}
		if conf > confidence {
			confidence = conf
		}
		reasons = append(reasons, reason)
	}

	// Rule 1: triple-digit APR funded by a collapsing reward token.
	if params.HeadlineAPR > 100 && params.RewardTokenChange30d < -30 {
		escalate(domain.YieldTrap, 90, fmt.Sprintf(
			"Headline APR of %.1f%% while the reward token fell %.1f%% in 30 days: yield is funded by emissions of a collapsing token",
			params.HeadlineAPR, -params.RewardTokenChange30d))
	}

	// Rule 2: high APR, capital leaving, and a large headline/effective
	// gap. Skipped once the pool is already classified as a trap.
	if status != domain.YieldTrap &&
		params.HeadlineAPR > 50 &&
		params.TVLChange7d < -10 &&
		params.HeadlineAPR > params.EffectiveAPR*1.2 {
		escalate(domain.YieldSuspicious, 75, fmt.Sprintf(
			"APR of %.1f%% with TVL down %.1f%% over 7 days suggests capital is exiting while yield stays inflated",
			params.HeadlineAPR, -params.TVLChange7d))
	}

	// Rule 3: effective yield far below the advertised rate.
	if aprDelta > 40 {
		escalate(domain.YieldSuspicious, 70, fmt.Sprintf(
			"Effective APR is %.1f%% below the headline rate after fees and token depreciation",
			aprDelta))
	}

	// Rule 4: active emissions paying a high APR in a depreciating token.
	if params.EmissionRate*params.TokenPriceUSD > 0 &&
		params.RewardTokenChange30d < -20 &&
		params.HeadlineAPR > 80 {
		escalate(domain.YieldSuspicious, 65, fmt.Sprintf(
			"Daily emissions of %.0f tokens back an %.1f%% APR while the reward token is down %.1f%% in 30 days",
			params.EmissionRate, params.HeadlineAPR, -params.RewardTokenChange30d))
	}

	// Rule 5: positive confirmation of organic yield. Only reachable
	// when no earlier rule escalated; raises confidence, not status.
	if status == domain.YieldHealthy &&
		aprDelta < 20 &&
		params.TVLChange7d > 0 &&
		params.RewardTokenChange30d > -10 {
		escalate(domain.YieldHealthy, 85,
			"APR is consistent with fees earned, TVL is growing and the reward token is stable: yield looks organic")
	}

	// Rule 6: advertised yield that effectively pays nothing.
	if params.EffectiveAPR < 2 && params.HeadlineAPR > 30 {
		escalate(domain.YieldSuspicious, 80, fmt.Sprintf(
			"Effective APR of %.2f%% against an advertised %.1f%%: the posted rate is unearnable",
			params.EffectiveAPR, params.HeadlineAPR))
	}

	// Default reason when nothing fired at all.
	if status == domain.YieldHealthy && len(reasons) == 0 {
		if confidence < 60 {
			confidence = 60
		}
		reasons = append(reasons, "No yield trap indicators detected")
	}

	return domain.YieldTrapAssessment{
		Status:       status,
		Confidence:   confidence,
		Reasons:      reasons,
		HeadlineAPR:  params.HeadlineAPR,
		EffectiveAPR: params.EffectiveAPR,
		RewardTrend:  params.RewardTokenChange30d,
		TVLTrend:     TVLTrendLabel(params.TVLChange7d),
	}
}

// TVLTrendLabel maps a 7-day TVL change percentage to a categorical
// label for display.
func TVLTrendLabel(tvlChange7d float64) string {
	switch {
	case tvlChange7d > 10:
		return "Growing rapidly"
	case tvlChange7d > 2:
		return "Growing"
	case tvlChange7d > -2:
		return "Stable"
	case tvlChange7d > -10:
		return "Declining"
	default:
		return "Declining rapidly"
	}
}
