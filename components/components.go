// Package components defines the value types shared by the field simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Polarity determines whether a node emits or absorbs particles.
type Polarity uint8

const (
	Source Polarity = iota // Emits particles and repels them
	Sink                   // Attracts and absorbs particles
)

// Sign returns the force sign applied along the particle-to-node direction:
// +1 pulls particles toward sinks, -1 pushes them away from sources.
func (p Polarity) Sign() float64 {
	if p == Sink {
		return 1
	}
	return -1
}

// Flipped returns the opposite polarity.
func (p Polarity) Flipped() Polarity {
	if p == Sink {
		return Source
	}
	return Sink
}

// String returns the display name for a Polarity.
func (p Polarity) String() string {
	switch p {
	case Source:
		return "source"
	case Sink:
		return "sink"
	}
	return "unknown"
}

// Node is a force-field emitter or absorber.
type Node struct {
	Position r2.Vec
	Polarity Polarity
	Radius   float64

	// Lapsed is time accrued since the last spawn. Only sources use it.
	Lapsed float64
}

// Contains reports whether p lies strictly inside the node's hit radius.
func (n *Node) Contains(p r2.Vec) bool {
	dx := p.X - n.Position.X
	dy := p.Y - n.Position.Y
	return dx*dx+dy*dy < n.Radius*n.Radius
}

// Particle is an emitted point mass.
type Particle struct {
	Position r2.Vec
	Previous r2.Vec // Position at the start of the last step (trail segment)
	Velocity r2.Vec
	Age      float64 // Seconds since spawn
}
