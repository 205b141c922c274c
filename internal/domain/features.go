package domain

// TokenHolding represents a single token balance held by a wallet.
type TokenHolding struct {
	Mint     string  // token mint address
	Symbol   string  // display symbol, e.g. "SOL"
	Amount   float64 // token amount in UI units
	ValueUSD float64 // USD value at observation time
}

// DefiPosition represents one DeFi position held by a wallet.
// Validated at the telemetry boundary; the scoring engine assumes
// required fields are populated.
type DefiPosition struct {
	Protocol     string   // protocol name, e.g. "solend"
	Category     string   // lending | liquidity | staking | derivatives
	ValueUSD     float64  // position value in USD
	HealthFactor *float64 // collateralization ratio, nil for non-borrowing positions
}

// WalletTransaction represents one historical transaction of a wallet.
type WalletTransaction struct {
	Signature   string  // transaction signature
	Kind        string  // swap | deposit | withdraw | stake | transfer
	Protocol    string  // protocol involved, empty for plain transfers
	ValueUSD    float64 // transaction value in USD
	TimestampMs int64   // Unix timestamp in milliseconds
}

// FeatureVector is the immutable input to the risk scoring engine.
// All slices are read-only from the engine's perspective.
type FeatureVector struct {
	Wallet       string              // wallet address, opaque to the engine
	Holdings     []TokenHolding      // token balances
	Positions    []DefiPosition      // DeFi positions
	Transactions []WalletTransaction // transaction history
	Protocols    []string            // distinct protocols the wallet has touched
}
