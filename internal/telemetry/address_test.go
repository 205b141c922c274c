package telemetry

import (
	"testing"

	"github.com/mr-tron/base58"
)

func TestValidateAddress_KnownWallets(t *testing.T) {
	// System program and WSOL mint are on-curve 32-byte keys.
	valid := []string{
		"11111111111111111111111111111111",
		"So11111111111111111111111111111111111111112",
	}

	for _, addr := range valid {
		if err := ValidateAddress(addr); err != nil {
			t.Errorf("ValidateAddress(%q) = %v, want nil", addr, err)
		}
	}
}

func TestValidateAddress_Empty(t *testing.T) {
	if err := ValidateAddress(""); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestValidateAddress_BadBase58(t *testing.T) {
	// 0, O, I and l are not in the base58 alphabet.
	if err := ValidateAddress("0OIl"); err == nil {
		t.Error("expected error for invalid base58")
	}
}

func TestValidateAddress_WrongLength(t *testing.T) {
	short := base58.Encode([]byte{1, 2, 3})
	if err := ValidateAddress(short); err == nil {
		t.Error("expected error for short address")
	}
}

func TestValidatePoolAddress_ProgramDerived(t *testing.T) {
	// Pool state accounts are PDAs: off-curve by construction. The Orca
	// SOL/USDC whirlpool and its config must pass the pool validator
	// while the wallet validator keeps rejecting them.
	pools := []string{
		"HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ",
		"Czfq3xZZDmsdGdUyrNLtRhGc47cXcZtLG4crryfu44zE",
	}

	for _, addr := range pools {
		if err := ValidatePoolAddress(addr); err != nil {
			t.Errorf("ValidatePoolAddress(%q) = %v, want nil", addr, err)
		}
		if err := ValidateAddress(addr); err == nil {
			t.Errorf("ValidateAddress(%q) = nil, want off-curve error", addr)
		}
	}
}

func TestValidatePoolAddress_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"bad base58": "0OIl",
		"too short":  base58.Encode([]byte{1, 2, 3}),
	}

	for name, addr := range cases {
		if err := ValidatePoolAddress(addr); err == nil {
			t.Errorf("%s: expected error for %q", name, addr)
		}
	}
}

func TestValidateAddress_OffCurve(t *testing.T) {
	// y = 2 has no square root for x on the curve.
	raw := make([]byte, 32)
	raw[0] = 2
	offCurve := base58.Encode(raw)

	if err := ValidateAddress(offCurve); err == nil {
		t.Error("expected error for off-curve address")
	}
}
