// Package systems contains the particle engine that drives the field simulation.
package systems

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/vmath"
)

// spawnEpsilon absorbs float error when the accumulator is an exact multiple of the period.
const spawnEpsilon = 1e-9

// FieldParams holds the engine tuning.
type FieldParams struct {
	ForceConstant     float64
	ForceCap          float64
	Drag              float64
	SpawnPeriod       float64
	SpawnClampPeriods float64
	SpawnMinFraction  float64
	AbsorbFraction    float64
	EscapeDivisor     float64
}

// DefaultFieldParams returns the stock tuning.
func DefaultFieldParams() FieldParams {
	return FieldParams{
		ForceConstant:     3e6,
		ForceCap:          3000,
		Drag:              0.01,
		SpawnPeriod:       0.002,
		SpawnClampPeriods: 100,
		SpawnMinFraction:  0.5,
		AbsorbFraction:    0.8,
		EscapeDivisor:     1.5,
	}
}

// FieldParamsFromConfig converts a field config section.
func FieldParamsFromConfig(c config.FieldConfig) FieldParams {
	return FieldParams{
		ForceConstant:     c.ForceConstant,
		ForceCap:          c.ForceCap,
		Drag:              c.Drag,
		SpawnPeriod:       c.SpawnPeriod,
		SpawnClampPeriods: c.SpawnClampPeriods,
		SpawnMinFraction:  c.SpawnMinFraction,
		AbsorbFraction:    c.AbsorbFraction,
		EscapeDivisor:     c.EscapeDivisor,
	}
}

// StepStats counts particle lifecycle events for one update.
type StepStats struct {
	Spawned   int
	Absorbed  int
	Escaped   int
	NonFinite int // Dropped because position or velocity stopped being finite

	AbsorbedAge float64 // Sum of ages of absorbed particles
}

// Add accumulates other into s.
func (s *StepStats) Add(other StepStats) {
	s.Spawned += other.Spawned
	s.Absorbed += other.Absorbed
	s.Escaped += other.Escaped
	s.NonFinite += other.NonFinite
	s.AbsorbedAge += other.AbsorbedAge
}

// PhaseTimer receives phase boundaries during Update.
type PhaseTimer interface {
	StartPhase(phase string)
}

// ParticleSystem spawns, moves and removes particles under the node field.
// Particles only feel nodes; there is no particle-particle interaction.
type ParticleSystem struct {
	Particles []components.Particle

	params  FieldParams
	bounds  r2.Vec
	rng     *rand.Rand
	timer   PhaseTimer
	removed []int
}

// NewParticleSystem creates an engine. A nil rng is seeded from the clock.
func NewParticleSystem(params FieldParams, bounds r2.Vec, rng *rand.Rand) *ParticleSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ParticleSystem{
		Particles: make([]components.Particle, 0, 1024),
		params:    params,
		bounds:    bounds,
		rng:       rng,
	}
}

// Params returns the current tuning.
func (s *ParticleSystem) Params() FieldParams { return s.params }

// SetParams replaces the tuning. Live particles are kept.
func (s *ParticleSystem) SetParams(p FieldParams) { s.params = p }

// Bounds returns the simulation extent.
func (s *ParticleSystem) Bounds() r2.Vec { return s.bounds }

// SetBounds changes the simulation extent used by the escape test.
func (s *ParticleSystem) SetBounds(b r2.Vec) { s.bounds = b }

// SetPhaseTimer installs an optional phase timer. Pass nil to disable.
func (s *ParticleSystem) SetPhaseTimer(t PhaseTimer) { s.timer = t }

// Count returns the number of live particles.
func (s *ParticleSystem) Count() int { return len(s.Particles) }

// Clear removes every particle.
func (s *ParticleSystem) Clear() {
	s.Particles = s.Particles[:0]
}

func (s *ParticleSystem) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Update advances the engine by dt. Node emission accumulators are updated in place.
func (s *ParticleSystem) Update(dt float64, nodes []*components.Node) StepStats {
	var st StepStats
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}

	s.phase(PhaseSpawn)
	for _, n := range nodes {
		if n.Polarity == components.Source {
			st.Spawned += s.spawn(n, dt)
		}
	}

	s.phase(PhaseForce)
	s.removed = s.removed[:0]
	for i := range s.Particles {
		p := &s.Particles[i]

		// A particle spawned or moved inside a sink is gone before it moves.
		if s.absorbed(p.Position, nodes) {
			s.removed = append(s.removed, i)
			st.Absorbed++
			st.AbsorbedAge += p.Age
			continue
		}

		s.integrate(p, dt, nodes)

		switch {
		case !vmath.IsFinite(p.Position) || !vmath.IsFinite(p.Velocity):
			s.removed = append(s.removed, i)
			st.NonFinite++
		case s.absorbed(p.Position, nodes):
			s.removed = append(s.removed, i)
			st.Absorbed++
			st.AbsorbedAge += p.Age
		case s.escaped(p.Position):
			s.removed = append(s.removed, i)
			st.Escaped++
		}
	}

	s.phase(PhaseRemoval)
	s.compact()
	return st
}

// spawn accrues dt on a source and emits one particle per whole period.
func (s *ParticleSystem) spawn(n *components.Node, dt float64) int {
	period := s.params.SpawnPeriod
	if period <= 0 {
		return 0
	}

	n.Lapsed += dt
	if limit := s.params.SpawnClampPeriods * period; n.Lapsed > limit {
		n.Lapsed = limit
	}

	count := int(math.Floor(n.Lapsed/period + spawnEpsilon))
	if count <= 0 {
		return 0
	}
	n.Lapsed -= float64(count) * period
	if n.Lapsed < 0 {
		n.Lapsed = 0
	}

	minFrac := s.params.SpawnMinFraction
	for i := 0; i < count; i++ {
		r := n.Radius * (minFrac + s.rng.Float64()*(1-minFrac))
		pos := vmath.Add(n.Position, vmath.RandomVector(s.rng, r))
		s.Particles = append(s.Particles, components.Particle{
			Position: pos,
			Previous: pos,
		})
	}
	return count
}

// Force returns the summed node force acting at p.
func (s *ParticleSystem) Force(p r2.Vec, nodes []*components.Node) r2.Vec {
	var total r2.Vec
	for _, n := range nodes {
		delta := vmath.Sub(n.Position, p)
		d2 := delta.X*delta.X + delta.Y*delta.Y
		if d2 == 0 {
			continue
		}
		mag := math.Min(s.params.ForceCap, s.params.ForceConstant/d2)
		total = vmath.Add(total, vmath.Scale(vmath.Unit(delta), mag*n.Polarity.Sign()))
	}
	return total
}

// integrate applies node forces and quadratic drag with explicit Euler.
func (s *ParticleSystem) integrate(p *components.Particle, dt float64, nodes []*components.Node) {
	force := s.Force(p.Position, nodes)

	// Drag opposes velocity with magnitude Drag·|v|². Not clamped: a single
	// large dt can overshoot and reverse the particle.
	speed := vmath.Magnitude(p.Velocity)
	drag := vmath.Scale(vmath.Unit(p.Velocity), -s.params.Drag*speed*speed)

	p.Velocity = vmath.Add(p.Velocity, vmath.Scale(vmath.Add(force, drag), dt))
	p.Previous = p.Position
	p.Position = vmath.Add(p.Position, vmath.Scale(p.Velocity, dt))
	p.Age += dt
}

func (s *ParticleSystem) absorbed(p r2.Vec, nodes []*components.Node) bool {
	for _, n := range nodes {
		if n.Polarity != components.Sink {
			continue
		}
		if vmath.Distance(p, n.Position) < n.Radius*s.params.AbsorbFraction {
			return true
		}
	}
	return false
}

func (s *ParticleSystem) escaped(p r2.Vec) bool {
	div := s.params.EscapeDivisor
	return math.Abs(p.X) > s.bounds.X/div || math.Abs(p.Y) > s.bounds.Y/div
}

// compact drops the particles collected during the force phase.
// removed is ascending.
func (s *ParticleSystem) compact() {
	if len(s.removed) == 0 {
		return
	}
	alive := 0
	next := 0
	for i := range s.Particles {
		if next < len(s.removed) && s.removed[next] == i {
			next++
			continue
		}
		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
}
