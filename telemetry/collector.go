package telemetry

import (
	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/systems"
	"github.com/pthm-cable/flux/vmath"
)

// Collector accumulates events within simulated-time windows and produces WindowStats.
// Frame dt varies in graphics mode, so windows close on elapsed seconds, not tick counts.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int32
	elapsed         float64
	simTime         float64

	// Event counters for current window
	step     systems.StepStats
	added    int
	removed  int
	moved    int
	flipped  int
	speedBuf []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordStep adds one engine update to the current window.
func (c *Collector) RecordStep(st systems.StepStats, dt float64) {
	c.step.Add(st)
	c.elapsed += dt
	c.simTime += dt
}

// Record counts a node edit. Other event types only matter for logs.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventNodeAdded:
		c.added++
	case EventNodeRemoved:
		c.removed++
	case EventNodeMoved:
		c.moved++
	case EventNodeFlipped:
		c.flipped++
	}
}

// ShouldFlush returns true once the window's simulated time has elapsed.
func (c *Collector) ShouldFlush() bool {
	return c.elapsed >= c.windowDurationSec
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, stage string, nodes []components.Node, particles []components.Particle) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      c.simTime,
		Stage:           stage,
		Particles:       len(particles),

		Spawned:   c.step.Spawned,
		Absorbed:  c.step.Absorbed,
		Escaped:   c.step.Escaped,
		NonFinite: c.step.NonFinite,

		NodesAdded:   c.added,
		NodesRemoved: c.removed,
		NodesMoved:   c.moved,
		NodesFlipped: c.flipped,
	}

	for i := range nodes {
		if nodes[i].Polarity == components.Source {
			stats.Sources++
		} else {
			stats.Sinks++
		}
	}

	if c.step.Absorbed > 0 {
		stats.AbsorbedAgeMean = c.step.AbsorbedAge / float64(c.step.Absorbed)
	}

	c.speedBuf = c.speedBuf[:0]
	for i := range particles {
		c.speedBuf = append(c.speedBuf, vmath.Magnitude(particles[i].Velocity))
	}
	stats.SpeedMean, stats.SpeedStd, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = ComputeDistribution(c.speedBuf)

	// Reset for next window
	c.windowStartTick = currentTick
	c.elapsed = 0
	c.step = systems.StepStats{}
	c.added = 0
	c.removed = 0
	c.moved = 0
	c.flipped = 0

	return stats
}

// SimTime returns the total simulated seconds recorded.
func (c *Collector) SimTime() float64 {
	return c.simTime
}
