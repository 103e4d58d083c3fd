package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Stage           string  `csv:"stage"`

	// Field state at window end
	Sources   int `csv:"sources"`
	Sinks     int `csv:"sinks"`
	Particles int `csv:"particles"`

	// Particle lifecycle during window
	Spawned   int `csv:"spawned"`
	Absorbed  int `csv:"absorbed"`
	Escaped   int `csv:"escaped"`
	NonFinite int `csv:"non_finite"`

	// Mean age at absorption (seconds)
	AbsorbedAgeMean float64 `csv:"absorbed_age_mean"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Edits during window
	NodesAdded   int `csv:"nodes_added"`
	NodesRemoved int `csv:"nodes_removed"`
	NodesMoved   int `csv:"nodes_moved"`
	NodesFlipped int `csv:"nodes_flipped"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
// values is sorted in place.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)

	sort.Float64s(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("stage", s.Stage),
		slog.Int("sources", s.Sources),
		slog.Int("sinks", s.Sinks),
		slog.Int("particles", s.Particles),
		slog.Int("spawned", s.Spawned),
		slog.Int("absorbed", s.Absorbed),
		slog.Int("escaped", s.Escaped),
		slog.Int("non_finite", s.NonFinite),
		slog.Float64("absorbed_age_mean", s.AbsorbedAgeMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("nodes_added", s.NodesAdded),
		slog.Int("nodes_removed", s.NodesRemoved),
		slog.Int("nodes_moved", s.NodesMoved),
		slog.Int("nodes_flipped", s.NodesFlipped),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"stage", s.Stage,
		"sources", s.Sources,
		"sinks", s.Sinks,
		"particles", s.Particles,
		"spawned", s.Spawned,
		"absorbed", s.Absorbed,
		"escaped", s.Escaped,
		"non_finite", s.NonFinite,
		"absorbed_age_mean", s.AbsorbedAgeMean,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"nodes_added", s.NodesAdded,
		"nodes_removed", s.NodesRemoved,
		"nodes_moved", s.NodesMoved,
		"nodes_flipped", s.NodesFlipped,
	)
}
