package game

import (
	"log/slog"
)

// flushTelemetry closes the stats window once enough simulated time has passed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	g.nodeBuf = g.layout.Snapshot(g.nodeBuf[:0])
	stats := g.collector.Flush(g.tick, g.StageName(), g.nodeBuf, g.particles.Particles)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
