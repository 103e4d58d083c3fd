package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/flux/systems"
)

// Phase names for one frame. The engine reports spawn, force and removal
// itself through systems.PhaseTimer.
const (
	PhaseLayout    = systems.PhaseLayout
	PhaseSpawn     = systems.PhaseSpawn
	PhaseForce     = systems.PhaseForce
	PhaseRemoval   = systems.PhaseRemoval
	PhaseRender    = systems.PhaseRender
	PhaseTelemetry = "telemetry"
)

// Phases lists every timed phase in frame order.
var Phases = [...]string{
	PhaseLayout, PhaseSpawn, PhaseForce, PhaseRemoval, PhaseRender, PhaseTelemetry,
}

const numPhases = len(Phases)

func phaseIndex(phase string) int {
	for i, p := range Phases {
		if p == phase {
			return i
		}
	}
	return -1
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	Total  time.Duration
	Phases [numPhases]time.Duration
}

// PerfCollector tracks frame timing over a rolling window.
// It implements systems.PhaseTimer.
type PerfCollector struct {
	samples     []PerfSample
	next        int
	filled      int
	current     PerfSample
	frameStart  time.Time
	phaseStart  time.Time
	activePhase int

	// Wall-clock gap between frames (graphics mode)
	lastPresent time.Time
	presentGap  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples:     make([]PerfSample, windowSize),
		activePhase: -1,
	}
}

// StartTick begins timing a new frame.
func (p *PerfCollector) StartTick() {
	p.current = PerfSample{}
	p.frameStart = time.Now()
	p.activePhase = -1
}

// StartPhase closes the running phase and opens the named one.
// Unknown names close the running phase without opening another.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.activePhase = phaseIndex(phase)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.activePhase >= 0 {
		p.current.Phases[p.activePhase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the frame and stores its sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.activePhase = -1
	p.current.Total = now.Sub(p.frameStart)

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	if p.filled < len(p.samples) {
		p.filled++
	}
}

// RecordFrame records the wall-clock gap since the previous presented frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.presentGap = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average time and share of the frame per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Presentation timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples in the current window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, numPhases),
		PhasePct:      make(map[string]float64, numPhases),
		FrameDuration: p.presentGap,
	}
	if p.presentGap > 0 {
		out.FPS = float64(time.Second) / float64(p.presentGap)
	}
	if p.filled == 0 {
		return out
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	for i, s := range p.samples[:p.filled] {
		total += s.Total
		if i == 0 || s.Total < out.MinTickDuration {
			out.MinTickDuration = s.Total
		}
		if s.Total > out.MaxTickDuration {
			out.MaxTickDuration = s.Total
		}
		for j, d := range s.Phases {
			phaseSum[j] += d
		}
	}

	n := time.Duration(p.filled)
	out.AvgTickDuration = total / n
	for j, name := range Phases {
		if phaseSum[j] == 0 {
			continue
		}
		avg := phaseSum[j] / n
		out.PhaseAvg[name] = avg
		if out.AvgTickDuration > 0 {
			out.PhasePct[name] = float64(avg) / float64(out.AvgTickDuration) * 100
		}
	}
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	return out
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	LayoutPct    float64 `csv:"layout_pct"`
	SpawnPct     float64 `csv:"spawn_pct"`
	ForcePct     float64 `csv:"force_pct"`
	RemovalPct   float64 `csv:"removal_pct"`
	RenderPct    float64 `csv:"render_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		LayoutPct:    s.PhasePct[PhaseLayout],
		SpawnPct:     s.PhasePct[PhaseSpawn],
		ForcePct:     s.PhasePct[PhaseForce],
		RemovalPct:   s.PhasePct[PhaseRemoval],
		RenderPct:    s.PhasePct[PhaseRender],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
