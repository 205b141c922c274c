package domain

// YieldStatus is the tri-state verdict of the yield trap classifier.
type YieldStatus string

// Yield status constants. Trap strictly dominates suspicious,
// suspicious strictly dominates healthy.
const (
	YieldHealthy    YieldStatus = "healthy"
	YieldSuspicious YieldStatus = "suspicious"
	YieldTrap       YieldStatus = "trap"
)

// YieldTrapParams is the pool telemetry consumed by the classifier.
// All percentage fields are expressed as percentages, not fractions
// (an APR of 150% is 150, a -40% price change is -40).
type YieldTrapParams struct {
	Pool                 string  // pool address, opaque to the classifier
	HeadlineAPR          float64 // advertised APR (%)
	EffectiveAPR         float64 // real yield after fees, IL and depreciation (%)
	RewardTokenChange30d float64 // 30-day reward token price change (%)
	TVLChange7d          float64 // 7-day TVL change (%)
	EmissionRate         float64 // daily reward emission (tokens/day)
	TokenPriceUSD        float64 // reward token price in USD
}

// YieldTrapAssessment is the output of the yield trap classifier.
type YieldTrapAssessment struct {
	Status       YieldStatus // healthy | suspicious | trap
	Confidence   int         // 0-100, running maximum across fired rules
	Reasons      []string    // one entry per fired rule, in rule order
	HeadlineAPR  float64     // echoed input
	EffectiveAPR float64     // echoed input
	RewardTrend  float64     // echoed 30d reward token change
	TVLTrend     string      // categorical label derived from TVLChange7d
}

// PoolAssessment is a persisted yield classification.
// Corresponds to pool_assessments table in PostgreSQL.
type PoolAssessment struct {
	Pool       string      // pool address, part of the primary key
	Status     YieldStatus // verdict
	Confidence int         // confidence at assessment time
	Reasons    []string    // fired rule reasons
	AssessedAt int64       // Unix timestamp in milliseconds, part of the primary key
}
