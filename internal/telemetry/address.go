// Package telemetry sources the market and network inputs consumed by
// the pricing layer: a live price feed, a rolling price cache, and
// boundary validation of incoming addresses. The decision cores never
// re-validate what this package has admitted.
package telemetry

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that addr is a base58-encoded 32-byte ed25519
// public key on the curve. Program-derived addresses are off-curve and
// rejected, so this admits wallet addresses only.
func ValidateAddress(addr string) error {
	decoded, err := decodeAddress(addr)
	if err != nil {
		return err
	}

	if !isOnCurve(decoded) {
		return fmt.Errorf("address is not on the ed25519 curve")
	}

	return nil
}

// ValidatePoolAddress checks that addr is a base58-encoded 32-byte
// account address. Pool state accounts are program-derived and sit off
// the curve, so unlike ValidateAddress no curve check is applied.
func ValidatePoolAddress(addr string) error {
	_, err := decodeAddress(addr)
	return err
}

func decodeAddress(addr string) ([]byte, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty address")
	}

	decoded, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("address must be 32 bytes, got %d", len(decoded))
	}

	return decoded, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
