package input

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/vmath"
)

// Cursor is the pointer shape the window should show.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorPointer        // Hovering a node
	CursorGrabbing       // Dragging a node
)

// Button identifies a mouse button.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// MouseKind identifies a mouse event.
type MouseKind uint8

const (
	MouseDown MouseKind = iota
	MouseUp
	MouseMove
	MouseLeave
)

// MouseEvent is one decoded mouse event in world coordinates.
type MouseEvent struct {
	Kind     MouseKind
	Button   Button
	Position r2.Vec
}

// MouseSession is the in-flight mouse selection. The zero value has nothing selected.
type MouseSession struct {
	Selected bool
	Node     ecs.Entity // Selected node identity
	Offset   r2.Vec     // Grab point minus node center
	Moved    bool
	Cursor   Cursor
}

// HandleMouse applies one event and returns the next session.
//
// Primary down on a node selects it; moving drags it keeping the grab offset;
// releasing without moving flips it. Secondary down removes the node under
// the pointer or adds a source on empty space. Leaving the window drops the
// selection.
func HandleMouse(s MouseSession, ev MouseEvent, ed Editor, opts Options) MouseSession {
	switch ev.Kind {
	case MouseDown:
		return mouseDown(s, ev, ed, opts)

	case MouseUp:
		if s.Selected && !s.Moved {
			if i, ok := ed.IndexOf(s.Node); ok {
				ed.Flip(i)
			}
		}
		return MouseSession{Cursor: hoverCursor(ev.Position, ed)}

	case MouseMove:
		if !s.Selected {
			s.Cursor = hoverCursor(ev.Position, ed)
			return s
		}
		s.Moved = true
		if !ed.MoveByID(s.Node, vmath.Sub(ev.Position, s.Offset)) {
			// Node vanished under the drag
			return MouseSession{Cursor: hoverCursor(ev.Position, ed)}
		}
		return s

	case MouseLeave:
		return MouseSession{}
	}
	return s
}

func mouseDown(s MouseSession, ev MouseEvent, ed Editor, opts Options) MouseSession {
	i, n, hit := ed.NodeAt(ev.Position)

	switch ev.Button {
	case ButtonPrimary:
		if !hit {
			return s
		}
		e, _ := ed.Entity(i)
		return MouseSession{
			Selected: true,
			Node:     e,
			Offset:   vmath.Sub(ev.Position, n.Position),
			Cursor:   CursorGrabbing,
		}

	case ButtonSecondary:
		if hit {
			ed.Remove(i)
			s.Cursor = CursorDefault
		} else {
			ed.Add(opts.userNode(ev.Position))
			s.Cursor = CursorPointer
		}
		// A held primary selection may point at the removed node
		if s.Selected {
			if _, ok := ed.IndexOf(s.Node); !ok {
				s = MouseSession{Cursor: s.Cursor}
			}
		}
		return s
	}
	return s
}

func hoverCursor(p r2.Vec, ed Editor) Cursor {
	if _, _, ok := ed.NodeAt(p); ok {
		return CursorPointer
	}
	return CursorDefault
}
