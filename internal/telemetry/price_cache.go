package telemetry

import (
	"sort"
	"sync"
	"time"

	"solana-risk-lab/internal/domain"
)

// windowMs is the retention window for cached price points, 7 days.
const windowMs = 7 * 24 * 60 * 60 * 1000

// PriceCache holds the current market price and a rolling 7-day window
// of observations. It is an explicit object passed by reference, safe
// for concurrent use.
type PriceCache struct {
	mu     sync.RWMutex
	points []*domain.MarketPricePoint // ordered by timestamp_ms ASC
}

// NewPriceCache creates an empty price cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{}
}

// Record adds an observation and prunes points older than the window.
// Out-of-order points are accepted and kept sorted.
func (c *PriceCache) Record(p domain.MarketPricePoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].TimestampMs >= p.TimestampMs
	})
	if idx < len(c.points) && c.points[idx].TimestampMs == p.TimestampMs {
		c.points[idx] = &p
	} else {
		c.points = append(c.points, nil)
		copy(c.points[idx+1:], c.points[idx:])
		c.points[idx] = &p
	}

	c.pruneLocked()
}

// Current returns the most recent price and whether any is known.
func (c *PriceCache) Current() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.points) == 0 {
		return 0, false
	}
	return c.points[len(c.points)-1].PriceUSD, true
}

// Average7d returns the mean over the retained window and whether any
// points are present.
func (c *PriceCache) Average7d() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.points) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, p := range c.points {
		sum += p.PriceUSD
	}
	return sum / float64(len(c.points)), true
}

// Size returns the number of retained points.
func (c *PriceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.points)
}

// Context fills the market price fields of a PricingContext snapshot.
// Missing telemetry leaves the fields at zero, which the pricing core
// treats as "no adjustment".
func (c *PriceCache) Context(launchDate, now time.Time) domain.PricingContext {
	ctx := domain.PricingContext{
		LaunchDate: launchDate,
		Now:        now,
	}
	if cur, ok := c.Current(); ok {
		ctx.CurrentPrice = cur
	}
	if avg, ok := c.Average7d(); ok {
		ctx.AvgPrice7d = avg
	}
	return ctx
}

// pruneLocked drops points older than the window relative to the
// newest point. Caller must hold the write lock.
func (c *PriceCache) pruneLocked() {
	if len(c.points) == 0 {
		return
	}

	cutoff := c.points[len(c.points)-1].TimestampMs - windowMs
	idx := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].TimestampMs > cutoff
	})
	if idx > 0 {
		c.points = append([]*domain.MarketPricePoint(nil), c.points[idx:]...)
	}
}
