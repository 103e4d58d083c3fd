package layout

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/config"
)

// Params holds generator tuning shared by all stages.
type Params struct {
	NodeRadius          float64
	AngularSpeed        float64 // rad/s
	OscillatorFrequency float64 // rad/s
	OscillatorAmplitude float64 // fraction of bounds.Y
	OscillatorOffset    float64 // fraction of bounds.X
}

// DefaultParams returns the stock generator tuning.
func DefaultParams() Params {
	return Params{
		NodeRadius:          20,
		AngularSpeed:        1.5,
		OscillatorFrequency: 1.5,
		OscillatorAmplitude: 0.25,
		OscillatorOffset:    0.15,
	}
}

// ParamsFromConfig reads generator tuning from the layouts config section.
func ParamsFromConfig(c config.LayoutsConfig) Params {
	return Params{
		NodeRadius:          c.NodeRadius,
		AngularSpeed:        c.AngularSpeed,
		OscillatorFrequency: c.OscillatorFrequency,
		OscillatorAmplitude: c.OscillatorAmplitude,
		OscillatorOffset:    c.OscillatorOffset,
	}
}

// Builder constructs a layout for the given bounds.
type Builder func(bounds r2.Vec, p Params) Layout

var builders = map[string]Builder{
	"static":     NewStatic,
	"balanced":   NewBalanced,
	"oscillator": NewOscillator,
	"triangle":   NewTriangle,
}

// Names returns the known layout names in default stage order.
func Names() []string {
	return []string{"static", "balanced", "oscillator", "triangle"}
}

// New constructs the named layout.
func New(name string, bounds r2.Vec, p Params) (Layout, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q", name)
	}
	return b(bounds, p), nil
}

func node(x, y float64, pol components.Polarity, radius float64) components.Node {
	return components.Node{Position: r2.Vec{X: x, Y: y}, Polarity: pol, Radius: radius}
}

// Static places two sources and two sinks at fixed fractions of the bounds.
type Static struct {
	*Field
}

// NewStatic creates the static layout.
func NewStatic(bounds r2.Vec, p Params) Layout {
	s := &Static{Field: NewField(bounds)}
	r := p.NodeRadius
	s.Add(node(bounds.X*0.25, 0, components.Source, r))
	s.Add(node(-bounds.X*0.25, 0, components.Source, r))
	s.Add(node(0, -bounds.Y*0.25, components.Sink, r))
	s.Add(node(0, bounds.Y*0.25, components.Sink, r))
	return s
}

// Name returns "static".
func (s *Static) Name() string { return "static" }

// Balanced places two sinks outside two closely spaced sources.
type Balanced struct {
	*Field
}

// NewBalanced creates the balanced layout.
func NewBalanced(bounds r2.Vec, p Params) Layout {
	b := &Balanced{Field: NewField(bounds)}
	r := p.NodeRadius
	b.Add(node(bounds.X*0.1, 0, components.Sink, r))
	b.Add(node(-bounds.X*0.1, 0, components.Sink, r))
	b.Add(node(bounds.X*0.05, 0, components.Source, r))
	b.Add(node(-bounds.X*0.05, 0, components.Source, r))
	return b
}

// Name returns "balanced".
func (b *Balanced) Name() string { return "balanced" }

// Triangle rotates three sources around a fixed central sink.
type Triangle struct {
	*Field
	radius float64
	speed  float64
}

// NewTriangle creates the rotating triangle layout. Sources sit at 0°, 120°
// and 240° on a circle of radius min(bounds)/3.
func NewTriangle(bounds r2.Vec, p Params) Layout {
	t := &Triangle{
		Field:  NewField(bounds),
		radius: math.Min(bounds.X, bounds.Y) / 3,
		speed:  p.AngularSpeed,
	}
	for slot := 0; slot < 3; slot++ {
		pos := t.position(slot)
		e := t.Add(node(pos.X, pos.Y, components.Source, p.NodeRadius))
		t.track(e, slot)
	}
	t.Add(node(0, 0, components.Sink, p.NodeRadius))
	return t
}

// Name returns "triangle".
func (t *Triangle) Name() string { return "triangle" }

// Radius returns the orbit radius.
func (t *Triangle) Radius() float64 { return t.radius }

// Angle returns the current orbit angle of a slot, measured from +Y.
func (t *Triangle) Angle(slot int) float64 {
	return 2*math.Pi/3*float64(slot) + t.time*t.speed
}

func (t *Triangle) position(slot int) r2.Vec {
	a := t.Angle(slot)
	return r2.Vec{X: t.radius * math.Sin(a), Y: t.radius * math.Cos(a)}
}

// Update advances the clock and places every still-attached source on its orbit.
func (t *Triangle) Update(dt float64) {
	t.advance(dt, func(slot int, n *components.Node) {
		n.Position = t.position(slot)
	})
}

// Oscillator swings two sinks vertically in anti-phase around a central source.
type Oscillator struct {
	*Field
	frequency float64
	amplitude float64
	offset    float64
}

const (
	slotLeft  = 0
	slotRight = 1
)

// NewOscillator creates the oscillating pair layout.
func NewOscillator(bounds r2.Vec, p Params) Layout {
	o := &Oscillator{
		Field:     NewField(bounds),
		frequency: p.OscillatorFrequency,
		amplitude: p.OscillatorAmplitude,
		offset:    p.OscillatorOffset,
	}
	for _, slot := range []int{slotLeft, slotRight} {
		pos := o.position(slot)
		e := o.Add(node(pos.X, pos.Y, components.Sink, p.NodeRadius))
		o.track(e, slot)
	}
	o.Add(node(0, 0, components.Source, p.NodeRadius))
	return o
}

// Name returns "oscillator".
func (o *Oscillator) Name() string { return "oscillator" }

func (o *Oscillator) position(slot int) r2.Vec {
	side := 1.0
	if slot == slotLeft {
		side = -1
	}
	return r2.Vec{
		X: o.bounds.X * o.offset * side,
		Y: o.bounds.Y * o.amplitude * math.Sin(o.time*o.frequency*side),
	}
}

// Update advances the clock and recomputes both sinks from the closed form.
func (o *Oscillator) Update(dt float64) {
	o.advance(dt, func(slot int, n *components.Node) {
		n.Position = o.position(slot)
	})
}
