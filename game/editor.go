package game

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/layout"
	"github.com/pthm-cable/flux/telemetry"
)

// recordingEditor forwards edits to a layout and counts the ones that
// succeed in the telemetry window.
type recordingEditor struct {
	layout    layout.Layout
	collector *telemetry.Collector
	tick      func() int32
}

func newRecordingEditor(l layout.Layout, c *telemetry.Collector, tick func() int32) *recordingEditor {
	return &recordingEditor{layout: l, collector: c, tick: tick}
}

func (e *recordingEditor) record(t telemetry.EventType, ent ecs.Entity) {
	e.collector.Record(telemetry.NewNodeEvent(t, e.tick(), ent.ID()))
}

func (e *recordingEditor) NodeAt(p r2.Vec) (int, *components.Node, bool) {
	return e.layout.NodeAt(p)
}

func (e *recordingEditor) Entity(i int) (ecs.Entity, bool) {
	return e.layout.Entity(i)
}

func (e *recordingEditor) IndexOf(ent ecs.Entity) (int, bool) {
	return e.layout.IndexOf(ent)
}

func (e *recordingEditor) Add(n components.Node) ecs.Entity {
	ent := e.layout.Add(n)
	e.record(telemetry.EventNodeAdded, ent)
	return ent
}

func (e *recordingEditor) Remove(i int) bool {
	ent, ok := e.layout.Entity(i)
	if !ok || !e.layout.Remove(i) {
		return false
	}
	e.record(telemetry.EventNodeRemoved, ent)
	return true
}

// MoveByID counts every drag step, not just the first.
func (e *recordingEditor) MoveByID(ent ecs.Entity, p r2.Vec) bool {
	if !e.layout.MoveByID(ent, p) {
		return false
	}
	e.record(telemetry.EventNodeMoved, ent)
	return true
}

func (e *recordingEditor) Flip(i int) bool {
	ent, ok := e.layout.Entity(i)
	if !ok || !e.layout.Flip(i) {
		return false
	}
	e.record(telemetry.EventNodeFlipped, ent)
	return true
}
