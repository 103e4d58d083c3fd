// Package telemetry provides field statistics, edit counters and performance tracking.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventNodeAdded EventType = iota
	EventNodeRemoved
	EventNodeMoved
	EventNodeFlipped
	EventStageChanged
	EventCleared
	EventPauseToggled
)

// String returns the event name used in logs.
func (t EventType) String() string {
	switch t {
	case EventNodeAdded:
		return "node_added"
	case EventNodeRemoved:
		return "node_removed"
	case EventNodeMoved:
		return "node_moved"
	case EventNodeFlipped:
		return "node_flipped"
	case EventStageChanged:
		return "stage_changed"
	case EventCleared:
		return "cleared"
	case EventPauseToggled:
		return "pause_toggled"
	}
	return "unknown"
}

// Event represents a single user or game action.
type Event struct {
	Type     EventType
	Tick     int32
	EntityID uint32 // Node identity for node events
	Stage    string // Target stage for stage changes
}

// NewNodeEvent creates an event about a single node.
func NewNodeEvent(t EventType, tick int32, entityID uint32) Event {
	return Event{Type: t, Tick: tick, EntityID: entityID}
}

// NewStageEvent creates a stage change event.
func NewStageEvent(tick int32, stage string) Event {
	return Event{Type: EventStageChanged, Tick: tick, Stage: stage}
}
