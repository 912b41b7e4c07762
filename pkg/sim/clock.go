package sim

import "time"

// TickPeriod is the wall-clock duration a single simulation tick represents.
// Scenario files specify deadlines in seconds; DurationToTicks converts them.
const TickPeriod = 100 * time.Millisecond

// Clock is the shared tick counter for a simulation run. It starts at -1
// so that the first Step() lands on tick 0.
type Clock struct {
	tick int
}

func NewClock() *Clock {
	return &Clock{tick: -1}
}

// Step advances the clock by one tick and returns the new tick.
func (c *Clock) Step() int {
	c.tick++
	return c.tick
}

// Tick returns the current tick without advancing the clock.
func (c *Clock) Tick() int {
	return c.tick
}

// DurationToTicks converts a wall-clock duration into whole ticks.
func DurationToTicks(d time.Duration) int {
	return int(d / TickPeriod)
}
