// Package report assembles user-facing risk analysis documents from
// the scoring, yield classification and pricing outputs.
package report

import (
	"time"

	"solana-risk-lab/internal/domain"
)

// RiskReport is the assembled analysis document for one wallet.
type RiskReport struct {
	// Metadata
	GeneratedAt time.Time
	Wallet      string

	// Risk score
	Score domain.RiskScoreResult

	// Portfolio summary
	Portfolio PortfolioSummary

	// Synthetic activity timeline, derived deterministically from the
	// wallet address so repeated renders are identical.
	Timeline []TimelineEntry

	// Pool classifications (sorted by pool)
	Pools []PoolRow

	// Pricing evaluation, nil when no pricing context was supplied
	Pricing    *domain.PricingResult
	Safeguards *domain.SafeguardStatus
}

// PortfolioSummary describes the scored feature vector.
type PortfolioSummary struct {
	Holdings     int
	Positions    int
	Transactions int
	Protocols    []string
	TotalValue   float64
}

// TimelineEntry is one synthetic activity item.
type TimelineEntry struct {
	Day      int    // days before report generation
	Activity string // activity kind
	Protocol string // protocol involved
}

// PoolRow is one pool classification row.
type PoolRow struct {
	Pool         string
	Status       domain.YieldStatus
	Confidence   int
	HeadlineAPR  float64
	EffectiveAPR float64
	TVLTrend     string
	Reasons      []string
}
