// Package layout provides the node layout generators ("stages") that own the
// node set, animate it, and expose the editing surface used by pointer input.
package layout

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
)

// Layout is the capability set shared by every generator.
type Layout interface {
	Name() string
	Update(dt float64)
	Resize(bounds r2.Vec)

	Len() int
	Nodes() []*components.Node
	Snapshot(dst []components.Node) []components.Node
	NodeAt(p r2.Vec) (int, *components.Node, bool)
	Entity(i int) (ecs.Entity, bool)
	IndexOf(e ecs.Entity) (int, bool)

	Add(n components.Node) ecs.Entity
	Remove(i int) bool
	Move(i int, p r2.Vec) bool
	MoveByID(e ecs.Entity, p r2.Vec) bool
	Flip(i int) bool
	Animated(e ecs.Entity) bool
}

// Field stores the node set in an ECS world. Entities give every node a stable,
// generation-tagged identity; order keeps insertion order for hit testing.
// Generators embed Field and override Update.
type Field struct {
	world   *ecs.World
	nodeMap *ecs.Map[components.Node]
	order   []ecs.Entity

	// tracked maps animated nodes to their trajectory slot.
	// Editing a node removes it permanently.
	tracked map[ecs.Entity]int

	bounds r2.Vec
	time   float64
	ptrs   []*components.Node
}

// NewField creates an empty node store for the given bounds.
func NewField(bounds r2.Vec) *Field {
	world := ecs.NewWorld()
	return &Field{
		world:   world,
		nodeMap: ecs.NewMap[components.Node](world),
		tracked: make(map[ecs.Entity]int),
		bounds:  bounds,
	}
}

// Update is a no-op for static layouts.
func (f *Field) Update(dt float64) {}

// Resize updates the bounds used by bounds-relative animation.
func (f *Field) Resize(bounds r2.Vec) {
	f.bounds = bounds
}

// Bounds returns the current simulation bounds.
func (f *Field) Bounds() r2.Vec {
	return f.bounds
}

// Time returns the animation clock in seconds.
func (f *Field) Time() float64 {
	return f.time
}

// Len returns the number of nodes.
func (f *Field) Len() int {
	return len(f.order)
}

// Nodes returns pointers to every node in insertion order. The pointers are
// valid until the next Add or Remove; the slice is reused between calls.
func (f *Field) Nodes() []*components.Node {
	f.ptrs = f.ptrs[:0]
	for _, e := range f.order {
		f.ptrs = append(f.ptrs, f.nodeMap.Get(e))
	}
	return f.ptrs
}

// Snapshot appends a copy of every node to dst in insertion order.
func (f *Field) Snapshot(dst []components.Node) []components.Node {
	for _, e := range f.order {
		dst = append(dst, *f.nodeMap.Get(e))
	}
	return dst
}

// NodeAt returns the first node (by insertion order) whose hit radius contains p.
func (f *Field) NodeAt(p r2.Vec) (int, *components.Node, bool) {
	for i, e := range f.order {
		n := f.nodeMap.Get(e)
		if n.Contains(p) {
			return i, n, true
		}
	}
	return -1, nil, false
}

// Entity returns the stable identity of the node at index i.
func (f *Field) Entity(i int) (ecs.Entity, bool) {
	if i < 0 || i >= len(f.order) {
		return ecs.Entity{}, false
	}
	return f.order[i], true
}

// IndexOf returns the current index of a node identity.
func (f *Field) IndexOf(e ecs.Entity) (int, bool) {
	if !f.world.Alive(e) {
		return -1, false
	}
	for i, o := range f.order {
		if o == e {
			return i, true
		}
	}
	return -1, false
}

// Add appends a node and returns its identity. Overlapping nodes are allowed.
func (f *Field) Add(n components.Node) ecs.Entity {
	e := f.nodeMap.NewEntity(&n)
	f.order = append(f.order, e)
	return e
}

// track registers e as animated with the given trajectory slot.
func (f *Field) track(e ecs.Entity, slot int) {
	f.tracked[e] = slot
}

// Animated reports whether e still follows its generator's trajectory.
func (f *Field) Animated(e ecs.Entity) bool {
	_, ok := f.tracked[e]
	return ok
}

// Remove deletes the node at index i. Indices above i shift down by one.
func (f *Field) Remove(i int) bool {
	e, ok := f.checked("remove", i)
	if !ok {
		return false
	}
	delete(f.tracked, e)
	f.order = append(f.order[:i], f.order[i+1:]...)
	f.world.RemoveEntity(e)
	return true
}

// Move overwrites the position of the node at index i and detaches it from animation.
func (f *Field) Move(i int, p r2.Vec) bool {
	e, ok := f.checked("move", i)
	if !ok {
		return false
	}
	delete(f.tracked, e)
	f.nodeMap.Get(e).Position = p
	return true
}

// MoveByID moves a node addressed by identity.
func (f *Field) MoveByID(e ecs.Entity, p r2.Vec) bool {
	i, ok := f.IndexOf(e)
	if !ok {
		slog.Debug("layout: move of unknown node", "entity", e.ID())
		return false
	}
	return f.Move(i, p)
}

// Flip toggles the polarity of the node at index i.
func (f *Field) Flip(i int) bool {
	e, ok := f.checked("flip", i)
	if !ok {
		return false
	}
	n := f.nodeMap.Get(e)
	n.Polarity = n.Polarity.Flipped()
	return true
}

// checked resolves an index, logging stale indices as caller contract violations.
func (f *Field) checked(op string, i int) (ecs.Entity, bool) {
	if i < 0 || i >= len(f.order) {
		slog.Debug("layout: stale node index", "op", op, "index", i, "nodes", len(f.order))
		return ecs.Entity{}, false
	}
	return f.order[i], true
}

// advance moves the animation clock and visits every tracked node.
func (f *Field) advance(dt float64, place func(slot int, n *components.Node)) {
	f.time += dt
	for e, slot := range f.tracked {
		place(slot, f.nodeMap.Get(e))
	}
}
