// Package pricing computes a stabilized service price from a base
// price, a cost floor and market telemetry, plus independent safeguard
// checks. Both entry points are pure functions of their arguments and
// recompute the pricing phase on every call; no state is retained
// between evaluations.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"solana-risk-lab/internal/domain"
)

// marginFraction is the guaranteed margin over estimated cost. The
// cost floor is estimatedCost / (1 - marginFraction).
const marginFraction = 0.20

// Phase boundaries in days since launch.
const (
	launchPhaseDays      = 30
	calibrationPhaseDays = 90
)

// Weekly change ceilings per phase.
const (
	calibrationWeeklyChange = 0.10
	stableWeeklyChange      = 0.05
)

// PhaseFor returns the pricing phase for a number of elapsed days
// since launch.
func PhaseFor(daysSinceLaunch int) domain.PricingPhase {
	switch {
	case daysSinceLaunch <= launchPhaseDays:
		return domain.PhaseLaunch
	case daysSinceLaunch <= calibrationPhaseDays:
		return domain.PhaseCalibration
	default:
		return domain.PhaseStable
	}
}

// Stabilize computes the final service price.
//
// finalPrice = max(costFloor, basePrice * volume * congestion * market),
// rounded to 6 decimal places of the payment asset's base unit. During
// the launch phase all multipliers are forced to 1.0 and the weekly
// change ceiling is 0.
func Stabilize(basePrice, estimatedCost float64, ctx domain.PricingContext) domain.PricingResult {
	days := int(ctx.Now.Sub(ctx.LaunchDate).Hours() / 24)
	phase := PhaseFor(days)

	volumeMult := 1.0
	congestionMult := 1.0
	marketMult := 1.0
	maxWeeklyChange := 0.0

	if phase != domain.PhaseLaunch {
		volumeMult = volumeMultiplier(ctx.DailyVolume)
		congestionMult = congestionMultiplier(ctx.NetworkCongestion)
		marketMult = marketMultiplier(ctx.CurrentPrice, ctx.AvgPrice7d)

		maxWeeklyChange = stableWeeklyChange
		if phase == domain.PhaseCalibration {
			maxWeeklyChange = calibrationWeeklyChange
		}
	}

	costFloor := estimatedCost / (1 - marginFraction)
	dynamicPrice := basePrice * volumeMult * congestionMult * marketMult
	finalPrice := math.Max(costFloor, dynamicPrice)
	finalPrice = math.Round(finalPrice*1e6) / 1e6

	adjusted := phase != domain.PhaseLaunch &&
		(volumeMult != 1.0 || congestionMult != 1.0 || marketMult != 1.0)

	return domain.PricingResult{
		Phase:                phase,
		VolumeMultiplier:     volumeMult,
		CongestionMultiplier: congestionMult,
		MarketMultiplier:     marketMult,
		MaxWeeklyChange:      maxWeeklyChange,
		FinalPrice:           finalPrice,
		AdjustmentApplied:    adjusted,
		Reason:               adjustmentReason(phase, volumeMult, congestionMult, marketMult),
	}
}

// volumeMultiplier discounts heavy usage and surcharges near-idle
// usage. Evaluation order matters: the high-volume brackets win over
// the low-volume ones.
func volumeMultiplier(dailyVolume int) float64 {
	switch {
	case dailyVolume > 100:
		return 0.95
	case dailyVolume > 50:
		return 0.98
	case dailyVolume < 5:
		return 1.10
	case dailyVolume < 10:
		return 1.05
	default:
		return 1.0
	}
}

// congestionMultiplier surcharges pricing when the network is congested.
func congestionMultiplier(congestion float64) float64 {
	switch {
	case congestion > 0.9:
		return 1.15
	case congestion > 0.7:
		return 1.10
	default:
		return 1.0
	}
}

// marketMultiplier counteracts payment-asset price swings against its
// 7-day average: full correction above 20% deviation, half correction
// above 10%. Degenerate inputs (non-positive average or current price)
// leave the multiplier at 1.0 rather than dividing by zero.
func marketMultiplier(current, avg7d float64) float64 {
	if avg7d <= 0 || current <= 0 {
		return 1.0
	}

	deviation := math.Abs(current-avg7d) / avg7d
	switch {
	case deviation > 0.20:
		return avg7d / current
	case deviation > 0.10:
		return 1 + (avg7d/current-1)*0.5
	default:
		return 1.0
	}
}

// adjustmentReason names the deviating factors in the fixed order
// volume, congestion, market-price.
func adjustmentReason(phase domain.PricingPhase, volumeMult, congestionMult, marketMult float64) string {
	if phase == domain.PhaseLaunch {
		return "launch phase: price held at base, no adjustments permitted"
	}

	var parts []string
	if volumeMult != 1.0 {
		parts = append(parts, fmt.Sprintf("volume multiplier %.2f", volumeMult))
	}
	if congestionMult != 1.0 {
		parts = append(parts, fmt.Sprintf("congestion multiplier %.2f", congestionMult))
	}
	if marketMult != 1.0 {
		parts = append(parts, fmt.Sprintf("market-price multiplier %.4f", marketMult))
	}

	if len(parts) == 0 {
		return "no adjustment: all multipliers at 1.0"
	}
	return "adjusted for " + strings.Join(parts, ", ")
}
