// Package input turns pointer and touch events into node edits and game
// actions. Interaction state is held in explicit session values rather than
// globals, so every handler can be driven from tests without a window.
package input

import (
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/config"
)

// Editor is the node editing surface pointer input acts on.
type Editor interface {
	NodeAt(p r2.Vec) (int, *components.Node, bool)
	Entity(i int) (ecs.Entity, bool)
	IndexOf(e ecs.Entity) (int, bool)
	Add(n components.Node) ecs.Entity
	Remove(i int) bool
	MoveByID(e ecs.Entity, p r2.Vec) bool
	Flip(i int) bool
}

// Actions are the game-level commands gestures can trigger.
type Actions interface {
	TogglePause()
	ChangeStage(delta int)
}

// Options holds gesture thresholds.
type Options struct {
	NodeRadius      float64       // Radius of user-created nodes
	LongPress       time.Duration // Hold time before a touch adds or removes
	MoveThreshold   float64       // Travel that cancels a pending long press
	DoubleTapWindow time.Duration // Max gap between touch ends that toggles pause
	DoubleTapRadius float64       // Max distance between touch ends that toggles pause
	SwipeDistance   float64       // Horizontal travel that switches stage
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		NodeRadius:      15,
		LongPress:       500 * time.Millisecond,
		MoveThreshold:   20,
		DoubleTapWindow: time.Second,
		DoubleTapRadius: 20,
		SwipeDistance:   100,
	}
}

// OptionsFromConfig builds Options from config sections.
func OptionsFromConfig(in config.InputConfig, layouts config.LayoutsConfig) Options {
	return Options{
		NodeRadius:      layouts.UserNodeRadius,
		LongPress:       seconds(in.LongPress),
		MoveThreshold:   in.MoveThreshold,
		DoubleTapWindow: seconds(in.DoubleTapWindow),
		DoubleTapRadius: in.DoubleTapRadius,
		SwipeDistance:   in.SwipeDistance,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// userNode is the node created by a secondary click or a long press on empty space.
func (o Options) userNode(p r2.Vec) components.Node {
	return components.Node{Position: p, Polarity: components.Source, Radius: o.NodeRadius}
}
