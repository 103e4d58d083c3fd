package input

import (
	"log/slog"
	"sort"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/vmath"
)

// TouchPoint is one active touch in world coordinates.
type TouchPoint struct {
	ID       int32
	Position r2.Vec
}

type touchKind uint8

const (
	touchScreen   touchKind = iota // Started on empty space
	touchNode                      // Started on a node and drags it
	touchOrphaned                  // Long press already acted; ignored until released
)

type touchState struct {
	kind    touchKind
	initial r2.Vec
	latest  r2.Vec
	node    ecs.Entity
	offset  r2.Vec

	timer Handle
	armed bool // Long press still pending
}

// TouchTracker follows every active touch across frames.
//
// A touch held for LongPress without travelling MoveThreshold adds a source
// (on empty space) or removes the node it started on. A node touch released
// before that flips the node. A screen touch released after a horizontal
// swipe changes stage. A release close in time and space to the previous
// release toggles pause.
type TouchTracker struct {
	opts    Options
	sched   *Scheduler
	ed      Editor
	actions Actions

	touches map[int32]*touchState
	ended   []int32

	lastEnd    time.Duration
	lastEndAt  []r2.Vec
	hasLastEnd bool
}

// NewTouchTracker creates a tracker. Long presses are scheduled on sched.
func NewTouchTracker(opts Options, sched *Scheduler, ed Editor, actions Actions) *TouchTracker {
	return &TouchTracker{
		opts:    opts,
		sched:   sched,
		ed:      ed,
		actions: actions,
		touches: make(map[int32]*touchState),
	}
}

// Active returns the number of tracked touches.
func (t *TouchTracker) Active() int {
	return len(t.touches)
}

// SetEditor switches the node set gestures act on. Touches in progress are
// orphaned so they cannot reach nodes of the previous set.
func (t *TouchTracker) SetEditor(ed Editor) {
	t.ed = ed
	for _, st := range t.touches {
		t.disarm(st)
		st.kind = touchOrphaned
	}
}

// Update consumes the full set of touches active this frame. Touches missing
// from points are treated as released.
func (t *TouchTracker) Update(points []TouchPoint) {
	seen := make(map[int32]struct{}, len(points))
	for _, p := range points {
		seen[p.ID] = struct{}{}
		st, ok := t.touches[p.ID]
		if !ok {
			st = t.begin(p)
			t.touches[p.ID] = st
		}
		t.move(st, p.Position)
	}

	t.ended = t.ended[:0]
	for id := range t.touches {
		if _, ok := seen[id]; !ok {
			t.ended = append(t.ended, id)
		}
	}
	if len(t.ended) == 0 {
		return
	}
	sort.Slice(t.ended, func(i, j int) bool { return t.ended[i] < t.ended[j] })

	now := t.sched.Now()
	togglePause := false
	initials := make([]r2.Vec, 0, len(t.ended))
	for _, id := range t.ended {
		st := t.touches[id]
		if t.release(st, now) {
			togglePause = true
		}
		t.disarm(st)
		initials = append(initials, st.initial)
		delete(t.touches, id)
	}

	// Double tap toggles both ways, not only while paused
	if togglePause {
		t.actions.TogglePause()
	}
	t.lastEnd = now
	t.lastEndAt = initials
	t.hasLastEnd = true
}

func (t *TouchTracker) begin(p TouchPoint) *touchState {
	st := &touchState{kind: touchScreen, initial: p.Position, latest: p.Position}
	if i, n, ok := t.ed.NodeAt(p.Position); ok {
		e, _ := t.ed.Entity(i)
		st.kind = touchNode
		st.node = e
		st.offset = vmath.Sub(p.Position, n.Position)
	}

	id := p.ID
	var h Handle
	h = t.sched.After(t.opts.LongPress, func() { t.longPress(id, h) })
	st.timer = h
	st.armed = true
	return st
}

func (t *TouchTracker) move(st *touchState, p r2.Vec) {
	switch st.kind {
	case touchNode:
		t.ed.MoveByID(st.node, vmath.Sub(p, st.offset))
	case touchScreen:
		st.latest = p
	}
	if st.kind != touchOrphaned && vmath.Distance(p, st.initial) > t.opts.MoveThreshold {
		t.disarm(st)
	}
}

// release applies the end-of-touch gesture and reports whether it counts
// toward a pause toggle.
func (t *TouchTracker) release(st *touchState, now time.Duration) bool {
	switch {
	case st.kind == touchScreen && st.initial.X > st.latest.X+t.opts.SwipeDistance:
		t.actions.ChangeStage(1)
	case st.kind == touchScreen && st.initial.X < st.latest.X-t.opts.SwipeDistance:
		t.actions.ChangeStage(-1)
	case st.kind == touchNode && st.armed:
		if i, ok := t.ed.IndexOf(st.node); ok {
			t.ed.Flip(i)
		}
	default:
		return t.nearLastEnd(st.initial, now)
	}
	return false
}

func (t *TouchTracker) nearLastEnd(p r2.Vec, now time.Duration) bool {
	if !t.hasLastEnd || now-t.lastEnd > t.opts.DoubleTapWindow {
		return false
	}
	for _, prev := range t.lastEndAt {
		if vmath.Distance(prev, p) < t.opts.DoubleTapRadius {
			return true
		}
	}
	return false
}

func (t *TouchTracker) disarm(st *touchState) {
	if st.armed {
		t.sched.Cancel(st.timer)
		st.armed = false
	}
}

// longPress fires from the scheduler. The touch may have ended or been
// re-armed since, so both the id and the handle are checked.
func (t *TouchTracker) longPress(id int32, h Handle) {
	st, ok := t.touches[id]
	if !ok || !st.armed || st.timer != h {
		return
	}
	st.armed = false

	switch st.kind {
	case touchScreen:
		t.ed.Add(t.opts.userNode(st.initial))
	case touchNode:
		if i, ok := t.ed.IndexOf(st.node); ok {
			t.ed.Remove(i)
		} else {
			slog.Debug("input: long press on vanished node", "touch", id)
		}
	}
	st.kind = touchOrphaned
}
