package engine

import "market_go/internal/domain"

// Clock tracks the two-level simulation time coordinate. Both counters
// only move forward; the tick resets at the start of each day. Run
// lengths are bounded in practice, so there is no wraparound handling.
type Clock struct {
	day  int
	tick int
}

// Day returns the current day, starting at 0.
func (c *Clock) Day() int { return c.day }

// Tick returns the intra-day sequence number, starting at 0 each day.
func (c *Clock) Tick() int { return c.tick }

// Now returns the current timestamp.
func (c *Clock) Now() domain.Time {
	return domain.Time{Day: c.day, Tick: c.tick}
}

// AdvanceTick increments the intra-day counter and returns its new value.
func (c *Clock) AdvanceTick() int {
	c.tick++
	return c.tick
}

// AdvanceDay rolls over to the next day and resets the tick counter.
func (c *Clock) AdvanceDay() int {
	c.day++
	c.tick = 0
	return c.day
}
