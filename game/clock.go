package game

import "time"

// frameClock turns wall-clock timestamps into per-frame dt. The first frame
// yields zero. There is no upper bound: a stalled frame produces one large step.
type frameClock struct {
	now     func() time.Time
	last    time.Time
	lastDT  float64
	started bool
}

func newFrameClock(now func() time.Time) frameClock {
	return frameClock{now: now}
}

// Next returns the seconds elapsed since the previous call.
func (c *frameClock) Next() float64 {
	t := c.now()
	if !c.started {
		c.started = true
		c.last = t
		c.lastDT = 0
		return 0
	}
	dt := t.Sub(c.last).Seconds()
	c.last = t
	if dt < 0 {
		dt = 0
	}
	c.lastDT = dt
	return dt
}
