package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/vmath"
)

var testBounds = r2.Vec{X: 1000, Y: 800}

func newTestSystem(seed int64) *ParticleSystem {
	return NewParticleSystem(DefaultFieldParams(), testBounds, rand.New(rand.NewSource(seed)))
}

func source(x, y, radius float64) *components.Node {
	return &components.Node{Position: r2.Vec{X: x, Y: y}, Polarity: components.Source, Radius: radius}
}

func sink(x, y, radius float64) *components.Node {
	return &components.Node{Position: r2.Vec{X: x, Y: y}, Polarity: components.Sink, Radius: radius}
}

// ---------- Spawn phase ----------

func TestUpdate_SpawnsFivePerTenMilliseconds(t *testing.T) {
	s := newTestSystem(1)
	src := source(250, 0, 20)

	st := s.Update(0.01, []*components.Node{src})

	if st.Spawned != 5 {
		t.Fatalf("spawned %d, want 5", st.Spawned)
	}
	if s.Count() != 5 {
		t.Fatalf("live particles %d, want 5", s.Count())
	}
	for i, p := range s.Particles {
		// Previous holds the spawn point; Position has taken one Euler step.
		d := vmath.Distance(p.Previous, src.Position)
		if d < 10-1e-9 || d > 20+1e-9 {
			t.Errorf("particle %d spawned %.3f from source, want [10, 20]", i, d)
		}
	}
}

func TestUpdate_AccumulatorKeepsRemainder(t *testing.T) {
	tests := []struct {
		name      string
		lapsed    float64
		dt        float64
		wantCount int
		wantAfter float64
	}{
		{"below period", 0, 0.001, 0, 0.001},
		{"one and a half periods", 0, 0.003, 1, 0.001},
		{"exact multiple", 0, 0.004, 2, 0},
		{"carry from previous tick", 0.0015, 0.001, 1, 0.0005},
		{"zero dt with full period pending", 0.002, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSystem(2)
			src := source(0, 0, 20)
			src.Lapsed = tt.lapsed

			st := s.Update(tt.dt, []*components.Node{src})

			if st.Spawned != tt.wantCount {
				t.Errorf("spawned %d, want %d", st.Spawned, tt.wantCount)
			}
			if math.Abs(src.Lapsed-tt.wantAfter) > 1e-9 {
				t.Errorf("lapsed after = %v, want %v", src.Lapsed, tt.wantAfter)
			}
		})
	}
}

func TestUpdate_SpawnBurstClamped(t *testing.T) {
	s := newTestSystem(3)
	src := source(0, 0, 20)

	st := s.Update(30, []*components.Node{src})

	if st.Spawned != 100 {
		t.Errorf("spawned %d after long stall, want 100", st.Spawned)
	}
	if src.Lapsed > 1e-9 {
		t.Errorf("lapsed after burst = %v, want 0", src.Lapsed)
	}
}

func TestUpdate_SinksDoNotSpawn(t *testing.T) {
	s := newTestSystem(4)
	st := s.Update(1, []*components.Node{sink(0, 0, 20)})
	if st.Spawned != 0 || s.Count() != 0 {
		t.Errorf("sink spawned %d particles", st.Spawned)
	}
}

func TestUpdate_SpawnRadiusRange(t *testing.T) {
	params := DefaultFieldParams()
	params.ForceConstant = 0
	params.Drag = 0
	s := NewParticleSystem(params, testBounds, rand.New(rand.NewSource(5)))
	src := source(-100, 50, 15)

	s.Update(0.2, []*components.Node{src})

	if s.Count() != 100 {
		t.Fatalf("count = %d, want 100", s.Count())
	}
	for i, p := range s.Particles {
		d := vmath.Distance(p.Position, src.Position)
		if d < 7.5-1e-9 || d > 15+1e-9 {
			t.Errorf("particle %d at distance %.3f, want [7.5, 15]", i, d)
		}
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	nodes := func() []*components.Node {
		return []*components.Node{source(-200, 0, 20), sink(200, 0, 20)}
	}
	a, b := newTestSystem(42), newTestSystem(42)
	na, nb := nodes(), nodes()
	for i := 0; i < 60; i++ {
		a.Update(1.0/60, na)
		b.Update(1.0/60, nb)
	}

	if a.Count() != b.Count() {
		t.Fatalf("counts differ: %d vs %d", a.Count(), b.Count())
	}
	for i := range a.Particles {
		if a.Particles[i] != b.Particles[i] {
			t.Fatalf("particle %d differs: %+v vs %+v", i, a.Particles[i], b.Particles[i])
		}
	}
}

// ---------- Force phase ----------

func TestForce_SignAndCap(t *testing.T) {
	s := newTestSystem(6)

	tests := []struct {
		name  string
		node  *components.Node
		at    r2.Vec
		wantX float64
	}{
		{"sink attracts, capped", sink(0, 0, 20), r2.Vec{X: 1}, -3000},
		{"source repels, capped", source(0, 0, 20), r2.Vec{X: 1}, 3000},
		{"sink far field", sink(0, 0, 20), r2.Vec{X: 1000}, -3},
		{"source far field", source(0, 0, 20), r2.Vec{X: -1000}, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := s.Force(tt.at, []*components.Node{tt.node})
			if math.Abs(f.X-tt.wantX) > 1e-9 || f.Y != 0 {
				t.Errorf("force = %v, want (%v, 0)", f, tt.wantX)
			}
		})
	}
}

func TestForce_CoincidentNodeIsZero(t *testing.T) {
	s := newTestSystem(7)
	f := s.Force(r2.Vec{X: 3, Y: 4}, []*components.Node{source(3, 4, 20)})
	if f != (r2.Vec{}) {
		t.Errorf("force at node center = %v, want zero", f)
	}
}

func TestUpdate_VelocityStaysFinite(t *testing.T) {
	s := newTestSystem(8)
	src := source(0, 0, 20)
	nodes := []*components.Node{src, sink(100, 0, 20), sink(-100, 50, 20)}

	// A particle exactly on a source center is the degenerate case.
	s.Particles = append(s.Particles, components.Particle{})

	for _, dt := range []float64{0, 1e-6, 1.0 / 60, 0.5, 5, 1000} {
		st := s.Update(dt, nodes)
		if st.NonFinite != 0 {
			t.Errorf("dt=%v dropped %d non-finite particles", dt, st.NonFinite)
		}
		for i, p := range s.Particles {
			if !vmath.IsFinite(p.Position) || !vmath.IsFinite(p.Velocity) {
				t.Fatalf("dt=%v particle %d not finite: %+v", dt, i, p)
			}
		}
	}
}

func TestUpdate_QuadraticDrag(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want float64
	}{
		// v - Drag·v²·dt
		{"small step", 0.01, 1000 - 0.01*1000*1000*0.01},
		{"large step overshoots", 0.2, -1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewParticleSystem(DefaultFieldParams(), r2.Vec{X: 1e9, Y: 1e9}, rand.New(rand.NewSource(9)))
			s.Particles = append(s.Particles, components.Particle{Velocity: r2.Vec{X: 1000}})

			s.Update(tt.dt, nil)

			if s.Count() != 1 {
				t.Fatalf("count = %d, want 1", s.Count())
			}
			v := s.Particles[0].Velocity
			if math.Abs(v.X-tt.want) > 1e-9 || v.Y != 0 {
				t.Errorf("velocity = %v, want (%v, 0)", v, tt.want)
			}
		})
	}
}

func TestUpdate_EulerStep(t *testing.T) {
	params := DefaultFieldParams()
	params.Drag = 0
	s := NewParticleSystem(params, testBounds, rand.New(rand.NewSource(10)))
	s.Particles = append(s.Particles, components.Particle{Position: r2.Vec{X: 100}, Velocity: r2.Vec{Y: 10}})
	nodes := []*components.Node{sink(0, 0, 20)}

	s.Update(0.1, nodes)

	// force = 3e6/100² = 300 toward origin
	p := s.Particles[0]
	wantVel := r2.Vec{X: -30, Y: 10}
	wantPos := r2.Vec{X: 97, Y: 1}
	if math.Abs(p.Velocity.X-wantVel.X) > 1e-9 || math.Abs(p.Velocity.Y-wantVel.Y) > 1e-9 {
		t.Errorf("velocity = %v, want %v", p.Velocity, wantVel)
	}
	if math.Abs(p.Position.X-wantPos.X) > 1e-9 || math.Abs(p.Position.Y-wantPos.Y) > 1e-9 {
		t.Errorf("position = %v, want %v", p.Position, wantPos)
	}
	if p.Previous != (r2.Vec{X: 100}) {
		t.Errorf("previous = %v, want (100, 0)", p.Previous)
	}
	if math.Abs(p.Age-0.1) > 1e-12 {
		t.Errorf("age = %v, want 0.1", p.Age)
	}
}

// ---------- Removal phase ----------

func TestUpdate_ParticleInsideSinkRemoved(t *testing.T) {
	for _, dt := range []float64{0, 0.001, 1.0 / 60, 1, 100} {
		s := newTestSystem(11)
		s.Particles = append(s.Particles, components.Particle{Position: r2.Vec{X: 5}, Previous: r2.Vec{X: 5}})

		st := s.Update(dt, []*components.Node{sink(0, 0, 20)})

		if s.Count() != 0 {
			t.Errorf("dt=%v: particle at (5,0) survived", dt)
		}
		if st.Absorbed != 1 {
			t.Errorf("dt=%v: absorbed = %d, want 1", dt, st.Absorbed)
		}
	}
}

func TestUpdate_ParticleEnteringSinkRemoved(t *testing.T) {
	s := newTestSystem(12)
	s.Particles = append(s.Particles, components.Particle{
		Position: r2.Vec{X: 30},
		Velocity: r2.Vec{X: -1000},
		Age:      2,
	})

	st := s.Update(0.02, []*components.Node{sink(0, 0, 20)})

	if st.Absorbed != 1 || s.Count() != 0 {
		t.Errorf("absorbed = %d, count = %d; want 1, 0", st.Absorbed, s.Count())
	}
	if math.Abs(st.AbsorbedAge-2.02) > 1e-9 {
		t.Errorf("absorbed age = %v, want 2.02", st.AbsorbedAge)
	}
}

func TestUpdate_SourcesDoNotAbsorb(t *testing.T) {
	params := DefaultFieldParams()
	params.SpawnPeriod = 1e9
	s := NewParticleSystem(params, testBounds, rand.New(rand.NewSource(13)))
	s.Particles = append(s.Particles, components.Particle{Position: r2.Vec{X: 5}})

	s.Update(0.001, []*components.Node{source(0, 0, 20)})

	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestUpdate_Escape(t *testing.T) {
	tests := []struct {
		name   string
		pos    r2.Vec
		vel    r2.Vec
		escape bool
	}{
		{"crosses x bound", r2.Vec{X: 666}, r2.Vec{X: 100}, true},
		{"crosses negative x bound", r2.Vec{X: -666}, r2.Vec{X: -100}, true},
		{"crosses y bound", r2.Vec{Y: 533}, r2.Vec{Y: 100}, true},
		{"stays inside", r2.Vec{X: 600, Y: 500}, r2.Vec{X: 100}, false},
		{"moves back inside", r2.Vec{X: 700}, r2.Vec{X: -10000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultFieldParams()
			params.Drag = 0
			s := NewParticleSystem(params, testBounds, rand.New(rand.NewSource(14)))
			s.Particles = append(s.Particles, components.Particle{Position: tt.pos, Velocity: tt.vel})

			st := s.Update(0.01, nil)

			if got := st.Escaped == 1; got != tt.escape {
				t.Errorf("escaped = %d, want escape %v", st.Escaped, tt.escape)
			}
			if got := s.Count() == 0; got != tt.escape {
				t.Errorf("count = %d after update", s.Count())
			}
		})
	}
}

func TestUpdate_RemovalDoesNotPerturbOthers(t *testing.T) {
	nodes := []*components.Node{sink(0, 0, 20), source(300, 300, 20)}
	params := DefaultFieldParams()
	params.SpawnPeriod = 1e9

	free := components.Particle{Position: r2.Vec{X: -200, Y: 100}, Velocity: r2.Vec{X: 5}}

	alone := NewParticleSystem(params, testBounds, rand.New(rand.NewSource(15)))
	alone.Particles = append(alone.Particles, free)
	alone.Update(0.05, nodes)

	mixed := NewParticleSystem(params, testBounds, rand.New(rand.NewSource(15)))
	mixed.Particles = append(mixed.Particles,
		components.Particle{Position: r2.Vec{X: 1}},
		free,
		components.Particle{Position: r2.Vec{X: 2000}},
	)
	st := mixed.Update(0.05, nodes)

	if st.Absorbed != 1 || st.Escaped != 1 {
		t.Errorf("absorbed/escaped = %d/%d, want 1/1", st.Absorbed, st.Escaped)
	}
	if mixed.Count() != 1 {
		t.Fatalf("count = %d, want 1", mixed.Count())
	}
	if mixed.Particles[0] != alone.Particles[0] {
		t.Errorf("survivor = %+v, want %+v", mixed.Particles[0], alone.Particles[0])
	}
}

func TestUpdate_NonFiniteDropped(t *testing.T) {
	s := newTestSystem(16)
	s.Particles = append(s.Particles,
		components.Particle{Position: r2.Vec{X: math.NaN()}},
		components.Particle{Position: r2.Vec{X: 10, Y: 10}},
	)

	st := s.Update(0.01, nil)

	if st.NonFinite != 1 {
		t.Errorf("non-finite = %d, want 1", st.NonFinite)
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

// ---------- Misc ----------

func TestClearAndNegativeDt(t *testing.T) {
	s := newTestSystem(17)
	src := source(0, 0, 20)
	s.Update(0.01, []*components.Node{src})
	if s.Count() == 0 {
		t.Fatal("expected particles")
	}

	s.Clear()
	if s.Count() != 0 {
		t.Errorf("count after Clear = %d", s.Count())
	}

	before := src.Lapsed
	if st := s.Update(-1, []*components.Node{src}); st.Spawned != 0 {
		t.Errorf("negative dt spawned %d", st.Spawned)
	}
	if src.Lapsed != before {
		t.Errorf("negative dt changed lapsed %v -> %v", before, src.Lapsed)
	}
}

type recordingTimer struct {
	phases []string
}

func (r *recordingTimer) StartPhase(p string) { r.phases = append(r.phases, p) }

func TestUpdate_ReportsPhases(t *testing.T) {
	s := newTestSystem(18)
	rec := &recordingTimer{}
	s.SetPhaseTimer(rec)

	s.Update(0.01, nil)

	want := []string{PhaseSpawn, PhaseForce, PhaseRemoval}
	if len(rec.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", rec.phases, want)
	}
	for i := range want {
		if rec.phases[i] != want[i] {
			t.Errorf("phase %d = %q, want %q", i, rec.phases[i], want[i])
		}
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()
	want := []string{PhaseLayout, PhaseSpawn, PhaseForce, PhaseRemoval, PhaseRender}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id %d = %q, want %q", i, ids[i], want[i])
		}
	}
	if reg.GetName("unknown") != "unknown" {
		t.Error("GetName should fall back to the id")
	}
}
