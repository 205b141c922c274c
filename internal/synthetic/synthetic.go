// Package synthetic derives demo feature vectors and pool telemetry
// from wallet identifiers. Everything is built on the derive package,
// so the same identifier always yields the same data. Used by the
// report and simulate commands when no real telemetry is wired in.
package synthetic

import (
	"fmt"

	"solana-risk-lab/internal/derive"
	"solana-risk-lab/internal/domain"
)

// Fixed epoch for derived timestamps: 2025-01-01T00:00:00Z in ms.
const epochMs = int64(1735689600000)

const dayMs = int64(24 * 60 * 60 * 1000)

// tokenUniverse is the set of tokens synthetic wallets may hold.
var tokenUniverse = []domain.TokenHolding{
	{Mint: "So11111111111111111111111111111111111111112", Symbol: "SOL"},
	{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC"},
	{Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT"},
	{Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP"},
	{Mint: "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE", Symbol: "ORCA"},
	{Mint: "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", Symbol: "RAY"},
	{Mint: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Symbol: "MSOL"},
	{Mint: "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", Symbol: "JITOSOL"},
	{Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Symbol: "BONK"},
	{Mint: "HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3", Symbol: "PYTH"},
}

// protocolUniverse mixes audited and unaudited protocols so synthetic
// wallets spread across the protocol safety brackets.
var protocolUniverse = []string{
	"marinade", "orca", "raydium", "jupiter", "solend",
	"kamino", "drift", "jito", "meteora", "mango",
	"moonfarm", "apexvault", "degenpool",
}

var positionCategories = []string{"lending", "liquidity", "staking", "derivatives"}

var transactionKinds = []string{"swap", "deposit", "withdraw", "stake", "transfer"}

// Features derives a complete feature vector for a wallet identifier.
func Features(wallet string) domain.FeatureVector {
	protocols := derive.Subset(wallet, "protocols", protocolUniverse, 1, 5)

	return domain.FeatureVector{
		Wallet:       wallet,
		Holdings:     holdings(wallet),
		Positions:    positions(wallet, protocols),
		Transactions: transactions(wallet, protocols),
		Protocols:    protocols,
	}
}

func holdings(wallet string) []domain.TokenHolding {
	held := derive.Subset(wallet, "holdings", tokenUniverse, 1, len(tokenUniverse))

	out := make([]domain.TokenHolding, len(held))
	for i, h := range held {
		h.Amount = derive.FloatRange(wallet, "holding_amount_"+h.Symbol, 0.5, 5000)
		h.ValueUSD = derive.FloatRange(wallet, "holding_value_"+h.Symbol, 10, 25000)
		out[i] = h
	}
	return out
}

func positions(wallet string, protocols []string) []domain.DefiPosition {
	var out []domain.DefiPosition
	for _, protocol := range protocols {
		count := derive.IntRange(wallet, "positions_"+protocol, 0, 2)
		for i := 0; i < count; i++ {
			seed := fmt.Sprintf("position_%s_%d", protocol, i)

			category, _ := derive.Choice(wallet, seed+"_category", positionCategories)
			pos := domain.DefiPosition{
				Protocol: protocol,
				Category: category,
				ValueUSD: derive.FloatRange(wallet, seed+"_value", 50, 20000),
			}

			// Lending positions carry a health factor.
			if category == "lending" {
				hf := derive.FloatRange(wallet, seed+"_health", 1.05, 3.0)
				pos.HealthFactor = &hf
			}
			out = append(out, pos)
		}
	}
	return out
}

func transactions(wallet string, protocols []string) []domain.WalletTransaction {
	count := derive.IntRange(wallet, "tx_count", 3, 40)

	out := make([]domain.WalletTransaction, count)
	for i := 0; i < count; i++ {
		seed := fmt.Sprintf("tx_%d", i)

		kind, _ := derive.Choice(wallet, seed+"_kind", transactionKinds)
		protocol := ""
		if kind != "transfer" {
			protocol, _ = derive.Choice(wallet, seed+"_protocol", protocols)
		}

		out[i] = domain.WalletTransaction{
			Signature:   fmt.Sprintf("%s-%s", wallet, seed),
			Kind:        kind,
			Protocol:    protocol,
			ValueUSD:    derive.FloatRange(wallet, seed+"_value", 5, 10000),
			TimestampMs: epochMs - int64(derive.IntRange(wallet, seed+"_age", 0, 90))*dayMs,
		}
	}
	return out
}

// poolUniverse is the set of pools synthetic assessments draw from.
var poolUniverse = []string{
	"orca-sol-usdc", "raydium-ray-sol", "meteora-jup-usdc",
	"kamino-msol-sol", "moonfarm-moon-usdc", "degenpool-degen-sol",
	"solend-usdc-main", "drift-sol-perp",
}

// Pools derives pool telemetry for a wallet's report, between min and
// max pools from the fixed universe.
func Pools(wallet string, min, max int) []domain.YieldTrapParams {
	pools := derive.Subset(wallet, "pools", poolUniverse, min, max)

	out := make([]domain.YieldTrapParams, len(pools))
	for i, pool := range pools {
		headline := derive.FloatRange(pool, "headline_apr", 3, 300)

		out[i] = domain.YieldTrapParams{
			Pool:                 pool,
			HeadlineAPR:          headline,
			EffectiveAPR:         headline * derive.FloatRange(pool, "effective_fraction", 0.05, 1.0),
			RewardTokenChange30d: derive.FloatRange(pool, "reward_change_30d", -70, 30),
			TVLChange7d:          derive.FloatRange(pool, "tvl_change_7d", -40, 40),
			EmissionRate:         derive.FloatRange(pool, "emission_rate", 0, 200000),
			TokenPriceUSD:        derive.FloatRange(pool, "token_price", 0.001, 5),
		}
	}
	return out
}
