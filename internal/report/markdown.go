package report

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a risk report as a Markdown string.
func RenderMarkdown(r *RiskReport) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Risk Report\n\n")
	sb.WriteString(fmt.Sprintf("Wallet: `%s`\n\n", r.Wallet))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Risk Score
	sb.WriteString("## Risk Score\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Score | %d |\n", r.Score.Score))
	sb.WriteString(fmt.Sprintf("| Tier | %s |\n", r.Score.Tier))
	sb.WriteString(fmt.Sprintf("| Percentile | %d |\n", r.Score.Percentile))
	sb.WriteString("\n")

	sb.WriteString("### Score Breakdown\n\n")
	sb.WriteString("| Component | Score |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Portfolio Diversity | %.1f |\n", r.Score.Breakdown.PortfolioDiversity))
	sb.WriteString(fmt.Sprintf("| Protocol Safety | %.1f |\n", r.Score.Breakdown.ProtocolSafety))
	sb.WriteString(fmt.Sprintf("| Transaction Hygiene | %.1f |\n", r.Score.Breakdown.TransactionHygiene))
	sb.WriteString(fmt.Sprintf("| Liquidity Health | %.1f |\n", r.Score.Breakdown.LiquidityHealth))
	sb.WriteString(fmt.Sprintf("| Exposure Management | %.1f |\n", r.Score.Breakdown.ExposureManagement))
	sb.WriteString("\n")

	// Portfolio Summary
	sb.WriteString("## Portfolio Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Token Holdings | %d |\n", r.Portfolio.Holdings))
	sb.WriteString(fmt.Sprintf("| DeFi Positions | %d |\n", r.Portfolio.Positions))
	sb.WriteString(fmt.Sprintf("| Transactions | %d |\n", r.Portfolio.Transactions))
	sb.WriteString(fmt.Sprintf("| Total Value (USD) | %.2f |\n", r.Portfolio.TotalValue))
	if len(r.Portfolio.Protocols) > 0 {
		sb.WriteString(fmt.Sprintf("| Protocols | %s |\n", strings.Join(r.Portfolio.Protocols, ", ")))
	}
	sb.WriteString("\n")

	// Activity Timeline
	sb.WriteString("## Recent Activity\n\n")
	if len(r.Timeline) > 0 {
		sb.WriteString("| Days Ago | Activity | Protocol |\n")
		sb.WriteString("|----------|----------|----------|\n")
		for _, e := range r.Timeline {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", e.Day, e.Activity, e.Protocol))
		}
	} else {
		sb.WriteString("No activity available.\n")
	}
	sb.WriteString("\n")

	// Pool Classifications
	sb.WriteString("## Yield Pool Classifications\n\n")
	if len(r.Pools) > 0 {
		sb.WriteString("| Pool | Status | Confidence | Headline APR | Effective APR | TVL Trend |\n")
		sb.WriteString("|------|--------|------------|--------------|---------------|----------|\n")
		for _, p := range r.Pools {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f%% | %.2f%% | %s |\n",
				p.Pool, p.Status, p.Confidence, p.HeadlineAPR, p.EffectiveAPR, p.TVLTrend))
		}
		sb.WriteString("\n")

		for _, p := range r.Pools {
			if len(p.Reasons) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("### %s\n\n", p.Pool))
			for _, reason := range p.Reasons {
				sb.WriteString(fmt.Sprintf("- %s\n", reason))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No pool classifications available.\n\n")
	}

	// Pricing
	sb.WriteString("## Pricing\n\n")
	if r.Pricing != nil {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Phase | %s |\n", r.Pricing.Phase))
		sb.WriteString(fmt.Sprintf("| Final Price | %.6f |\n", r.Pricing.FinalPrice))
		sb.WriteString(fmt.Sprintf("| Volume Multiplier | %.4f |\n", r.Pricing.VolumeMultiplier))
		sb.WriteString(fmt.Sprintf("| Congestion Multiplier | %.4f |\n", r.Pricing.CongestionMultiplier))
		sb.WriteString(fmt.Sprintf("| Market Multiplier | %.4f |\n", r.Pricing.MarketMultiplier))
		sb.WriteString(fmt.Sprintf("| Adjustment Applied | %t |\n", r.Pricing.AdjustmentApplied))
		if r.Pricing.Reason != "" {
			sb.WriteString(fmt.Sprintf("| Reason | %s |\n", r.Pricing.Reason))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No pricing evaluation available.\n\n")
	}

	// Safeguards
	if r.Safeguards != nil {
		sb.WriteString("## Safeguards\n\n")
		sb.WriteString("| Check | Status |\n")
		sb.WriteString("|-------|--------|\n")
		sb.WriteString(fmt.Sprintf("| Treasury Reserve | %s |\n", alertLabel(r.Safeguards.TreasuryReserveAlert)))
		sb.WriteString(fmt.Sprintf("| Volume | %s |\n", alertLabel(r.Safeguards.LowVolumeAlert)))
		sb.WriteString(fmt.Sprintf("| Market Volatility | %s |\n", alertLabel(r.Safeguards.MarketVolatilityAlert)))
		sb.WriteString(fmt.Sprintf("| Margin | %s |\n", alertLabel(r.Safeguards.MarginAlert)))
		sb.WriteString("\n")
		if r.Safeguards.Reason != "" {
			sb.WriteString(fmt.Sprintf("%s\n\n", r.Safeguards.Reason))
		}
	}

	return sb.String()
}

func alertLabel(alert bool) string {
	if alert {
		return "ALERT"
	}
	return "OK"
}
