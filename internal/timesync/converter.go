package timesync

import (
	"fmt"
	"time"
)

// DefaultTick is the duration of one simulated tick. Schedulers report ms.
const DefaultTick = time.Millisecond

// Converter handles conversion from simulated ticks to wall-clock time.
type Converter struct {
	epoch time.Time
	tick  time.Duration
}

// NewConverter creates a converter that places tick 0 at epoch.
func NewConverter(epoch time.Time, tick time.Duration) (*Converter, error) {
	if tick <= 0 {
		return nil, fmt.Errorf("tick duration must be positive, got %s", tick)
	}
	if epoch.IsZero() {
		epoch = time.Now()
	}

	return &Converter{
		epoch: epoch,
		tick:  tick,
	}, nil
}

// TickToWallClock converts a tick count to wall-clock time.
func (c *Converter) TickToWallClock(ticks int64) time.Time {
	return c.epoch.Add(c.Duration(ticks))
}

// Duration converts a tick count to a duration.
func (c *Converter) Duration(ticks int64) time.Duration {
	return time.Duration(ticks) * c.tick
}

// Epoch returns the wall-clock time of tick 0.
func (c *Converter) Epoch() time.Time {
	return c.epoch
}
