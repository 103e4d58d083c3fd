package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/systems"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1.0, 0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6, 0.5}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.287", std)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

// ---------- Collector ----------

func TestCollector_WindowByElapsedTime(t *testing.T) {
	c := NewCollector(1.0)

	c.RecordStep(systems.StepStats{Spawned: 10}, 0.6)
	if c.ShouldFlush() {
		t.Fatal("flush before window elapsed")
	}
	c.RecordStep(systems.StepStats{Spawned: 5, Absorbed: 2, AbsorbedAge: 3, Escaped: 1}, 0.5)
	if !c.ShouldFlush() {
		t.Fatal("expected flush after 1.1s")
	}

	c.Record(NewNodeEvent(EventNodeAdded, 3, 7))
	c.Record(NewNodeEvent(EventNodeFlipped, 3, 7))
	c.Record(NewNodeEvent(EventNodeFlipped, 4, 7))
	c.Record(NewStageEvent(4, "triangle"))

	nodes := []components.Node{
		{Polarity: components.Source},
		{Polarity: components.Sink},
		{Polarity: components.Sink},
	}
	particles := []components.Particle{
		{Velocity: r2.Vec{X: 3, Y: 4}},
		{Velocity: r2.Vec{X: 0, Y: 1}},
	}

	ws := c.Flush(66, "static", nodes, particles)

	if ws.Spawned != 15 || ws.Absorbed != 2 || ws.Escaped != 1 {
		t.Errorf("lifecycle counts = %d/%d/%d", ws.Spawned, ws.Absorbed, ws.Escaped)
	}
	if ws.AbsorbedAgeMean != 1.5 {
		t.Errorf("absorbed age mean = %v, want 1.5", ws.AbsorbedAgeMean)
	}
	if ws.Sources != 1 || ws.Sinks != 2 || ws.Particles != 2 {
		t.Errorf("field counts = %d/%d/%d", ws.Sources, ws.Sinks, ws.Particles)
	}
	if ws.NodesAdded != 1 || ws.NodesFlipped != 2 {
		t.Errorf("edits = added %d flipped %d", ws.NodesAdded, ws.NodesFlipped)
	}
	if ws.SpeedMean != 3 {
		t.Errorf("speed mean = %v, want 3", ws.SpeedMean)
	}
	if math.Abs(ws.SimTimeSec-1.1) > 1e-9 || ws.WindowEndTick != 66 || ws.Stage != "static" {
		t.Errorf("window = %+v", ws)
	}

	// Counters reset but sim time keeps running
	if c.ShouldFlush() {
		t.Error("ShouldFlush true right after Flush")
	}
	next := c.Flush(70, "static", nil, nil)
	if next.Spawned != 0 || next.NodesFlipped != 0 || next.WindowStartTick != 66 {
		t.Errorf("second window = %+v", next)
	}
}

func TestEventTypeString(t *testing.T) {
	if EventStageChanged.String() != "stage_changed" {
		t.Errorf("String() = %q", EventStageChanged.String())
	}
	if EventType(200).String() != "unknown" {
		t.Error("out-of-range event type should be unknown")
	}
}

// ---------- Output ----------

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// All methods are nil-safe
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 60, Stage: "static"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 60); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,stage") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}
