package scoring

import "math"

// percentileBrackets is the fallback lookup used when no historical
// corpus is available. The breakpoints are a fixed placeholder for a
// real score distribution and must not be re-derived.
var percentileBrackets = []struct {
	min        int
	percentile int
}{
	{95, 98},
	{85, 92},
	{70, 75},
	{50, 50},
	{30, 25},
	{0, 10},
}

// percentile returns the empirical rank of score within corpus when a
// corpus is supplied, and the bracket-table value otherwise.
// Empirical rank: count of corpus scores >= score, divided by corpus
// size, scaled to 0-100.
func percentile(score int, corpus []int) int {
	if len(corpus) == 0 {
		for _, b := range percentileBrackets {
			if score >= b.min {
				return b.percentile
			}
		}
		return 10
	}

	atOrAbove := 0
	for _, s := range corpus {
		if s >= score {
			atOrAbove++
		}
	}
	return int(math.Round(float64(atOrAbove) / float64(len(corpus)) * 100))
}
