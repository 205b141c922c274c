package domain

import "time"

// PricingPhase governs how aggressively price may move. It is a pure
// function of elapsed days since launch, never stored as mutable state.
type PricingPhase string

// Pricing phase constants.
const (
	PhaseLaunch      PricingPhase = "launch"      // days 0-30: price frozen
	PhaseCalibration PricingPhase = "calibration" // days 31-90: up to 10% weekly moves
	PhaseStable      PricingPhase = "stable"      // day 91+: up to 5% weekly moves
)

// PricingContext carries the telemetry consumed by the pricing
// stabilizer and the safeguard checks. Base price and estimated cost
// are passed alongside it, see pricing.Stabilize.
type PricingContext struct {
	LaunchDate        time.Time // service launch date
	Now               time.Time // evaluation date
	CurrentPrice      float64   // current market price of the payment asset
	AvgPrice7d        float64   // 7-day average market price
	DailyVolume       int       // requests per day
	MonthlyVolume     int       // requests per month
	NetworkCongestion float64   // 0-1
	ReserveRatio      float64   // treasury reserve ratio, 0-1
}

// PricingResult is the output of the pricing stabilizer.
type PricingResult struct {
	Phase                PricingPhase // phase at evaluation time
	VolumeMultiplier     float64      // 1.0 during launch
	CongestionMultiplier float64      // 1.0 during launch
	MarketMultiplier     float64      // 1.0 during launch
	MaxWeeklyChange      float64      // change ceiling: 0, 0.10 or 0.05
	FinalPrice           float64      // max(cost floor, adjusted price), 6 decimals
	AdjustmentApplied    bool         // true if any multiplier deviated from 1.0
	Reason               string       // names the deviating factors in fixed order
}

// SafeguardStatus holds four independent alert flags. The flags do not
// feed back into the computed price.
type SafeguardStatus struct {
	TreasuryReserveAlert  bool   // reserve ratio below threshold
	LowVolumeAlert        bool   // daily volume below threshold
	MarketVolatilityAlert bool   // 7-day price deviation above threshold
	MarginAlert           bool   // placeholder, always false pending per-service margin data
	Reason                string // composed human-readable summary
}

// MarketPricePoint is one observed price of the payment asset.
// Corresponds to market_prices table in ClickHouse; the telemetry
// layer derives the 7-day average from these points.
type MarketPricePoint struct {
	TimestampMs int64   // Unix timestamp in milliseconds
	PriceUSD    float64 // observed market price
}

// PricingSnapshot is a persisted pricing evaluation.
// Corresponds to pricing_snapshots table in PostgreSQL.
type PricingSnapshot struct {
	Phase                PricingPhase
	BasePrice            float64
	FinalPrice           float64
	VolumeMultiplier     float64
	CongestionMultiplier float64
	MarketMultiplier     float64
	AdjustmentApplied    bool
	Reason               string
	CreatedAt            int64 // Unix timestamp in milliseconds
}
