package domain

// Tier is the letter grade mapped from a 0-100 risk score.
type Tier string

// Tier constants, best to worst.
const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
	TierF Tier = "F"
)

// ScoreBreakdown holds the five component scores, each 0-100.
type ScoreBreakdown struct {
	PortfolioDiversity float64 // step function of holdings count
	ProtocolSafety     float64 // fraction of audited protocols
	TransactionHygiene float64 // baseline constant pending a real signal
	LiquidityHealth    float64 // baseline constant pending a real signal
	ExposureManagement float64 // concentration ratio step function
}

// RiskScoreResult is the output of the risk scoring engine.
type RiskScoreResult struct {
	Score      int            // weighted sum, rounded and clamped to [0, 100]
	Tier       Tier           // letter grade from fixed thresholds
	Percentile int            // 0-100, table fallback or empirical rank
	Breakdown  ScoreBreakdown // component scores
}

// WalletAssessment is a persisted scoring result.
// Corresponds to wallet_assessments table in PostgreSQL.
type WalletAssessment struct {
	Wallet     string         // wallet address, part of the primary key
	Score      int            // final score
	Tier       Tier           // letter grade
	Percentile int            // percentile at assessment time
	Breakdown  ScoreBreakdown // component scores
	AssessedAt int64          // Unix timestamp in milliseconds, part of the primary key
}

// ScorePoint is one wallet score observation over time.
// Corresponds to score_timeseries table in ClickHouse.
type ScorePoint struct {
	Wallet      string // wallet address
	TimestampMs int64  // Unix timestamp in milliseconds
	Score       int    // score at this point
	Tier        Tier   // tier at this point
}
