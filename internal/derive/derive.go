// Package derive provides deterministic value derivation from
// (identifier, seed) pairs. Every function is pure: the same arguments
// produce bit-identical results across calls, goroutines and process
// restarts, with no dependency on wall-clock time or external entropy.
// Downstream report and widget code relies on this to render the same
// synthetic values for the same wallet every time.
package derive

import (
	"errors"
	"strconv"
)

// ErrEmptyDomain is returned by Choice when the options slice is empty.
// This is a caller precondition violation, not a recoverable condition.
var ErrEmptyDomain = errors.New("empty domain: options must not be empty")

// Hash folds identifier and seed into an unsigned 32-bit value.
// Formula: h = h*33 + byte, accumulated in signed 32-bit arithmetic
// with wraparound, then the absolute value is taken. The identifier
// and seed are joined with ":" so ("ab","c") and ("a","bc") differ.
func Hash(identifier, seed string) uint32 {
	key := identifier + ":" + seed

	var h int32
	for i := 0; i < len(key); i++ {
		h = h*33 + int32(key[i])
	}

	if h < 0 {
		// int64 widening avoids overflow at math.MinInt32.
		return uint32(-int64(h))
	}
	return uint32(h)
}

// Float01 returns a deterministic value in [0, 1) with 1/10000 resolution.
func Float01(identifier, seed string) float64 {
	return float64(Hash(identifier, seed)%10000) / 10000
}

// IntRange returns a deterministic integer in [min, max] inclusive.
// If max < min the range collapses and min is returned.
func IntRange(identifier, seed string, min, max int) int {
	span := max - min + 1
	if span <= 0 {
		return min
	}
	return min + int(Hash(identifier, seed)%uint32(span))
}

// FloatRange returns a deterministic value in [min, max).
func FloatRange(identifier, seed string, min, max float64) float64 {
	return min + Float01(identifier, seed)*(max-min)
}

// Boolean returns a deterministic boolean that is true with the given
// probability. Probability 0.5 yields an unbiased coin for the seed.
func Boolean(identifier, seed string, probability float64) bool {
	return Float01(identifier, seed) < probability
}

// Choice returns a deterministic element of options.
// Returns ErrEmptyDomain if options is empty.
func Choice[T any](identifier, seed string, options []T) (T, error) {
	if len(options) == 0 {
		var zero T
		return zero, ErrEmptyDomain
	}
	idx := int(Hash(identifier, seed) % uint32(len(options)))
	return options[idx], nil
}

// Subset returns a deterministic subset of options with between min and
// min(max, len(options)) elements, all distinct, in shuffled order.
//
// The element count is drawn with seed+"_count", then a Fisher-Yates
// shuffle of a copy of options draws each swap index with
// seed+"_shuf_"+i, so the result depends only on (identifier, seed).
// An empty options slice yields an empty result.
func Subset[T any](identifier, seed string, options []T, min, max int) []T {
	n := len(options)

	upper := max
	if upper > n {
		upper = n
	}
	lower := min
	if lower < 0 {
		lower = 0
	}
	if lower > upper {
		lower = upper
	}

	count := IntRange(identifier, seed+"_count", lower, upper)

	shuffled := make([]T, n)
	copy(shuffled, options)
	for i := n - 1; i > 0; i-- {
		j := int(Hash(identifier, seed+"_shuf_"+strconv.Itoa(i)) % uint32(i+1))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled[:count]
}
