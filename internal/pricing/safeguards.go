package pricing

import (
	"math"
	"strings"

	"solana-risk-lab/internal/domain"
)

// Safeguard thresholds.
const (
	reserveAlertThreshold    = 0.25
	lowVolumeThreshold       = 5
	marketVolatilityFraction = 0.10
)

// CheckSafeguards evaluates four independent alert flags against the
// pricing context. Each flag is computed on its own; none of them feed
// back into the price produced by Stabilize.
//
// MarginAlert is a deliberate no-op: per-service margin data is not
// available yet, so the flag is always false rather than guessed from
// aggregate numbers.
func CheckSafeguards(ctx domain.PricingContext) domain.SafeguardStatus {
	status := domain.SafeguardStatus{
		TreasuryReserveAlert: ctx.ReserveRatio < reserveAlertThreshold,
		LowVolumeAlert:       ctx.DailyVolume < lowVolumeThreshold,
		MarginAlert:          false,
	}

	if ctx.AvgPrice7d > 0 {
		deviation := math.Abs(ctx.CurrentPrice-ctx.AvgPrice7d) / ctx.AvgPrice7d
		status.MarketVolatilityAlert = deviation > marketVolatilityFraction
	}

	status.Reason = safeguardReason(status)
	return status
}

func safeguardReason(s domain.SafeguardStatus) string {
	var alerts []string
	if s.TreasuryReserveAlert {
		alerts = append(alerts, "treasury reserve below threshold")
	}
	if s.LowVolumeAlert {
		alerts = append(alerts, "daily volume critically low")
	}
	if s.MarketVolatilityAlert {
		alerts = append(alerts, "payment asset volatile against 7-day average")
	}

	if len(alerts) == 0 {
		return "all safeguards nominal"
	}
	return strings.Join(alerts, "; ")
}
