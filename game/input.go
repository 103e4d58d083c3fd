package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flux/input"
	"github.com/pthm-cable/flux/ui"
)

// pointerFrame is one frame of raw mouse state in screen pixels.
type pointerFrame struct {
	X, Y             float32
	Moved            bool
	PrimaryPressed   bool
	PrimaryReleased  bool
	SecondaryPressed bool
	OnScreen         bool
}

// pointerState carries mouse decoding state between frames.
type pointerState struct {
	onScreen bool
	events   []input.MouseEvent
}

// decode turns a frame into mouse events in dispatch order:
// leave, move, presses, release.
func (p *pointerState) decode(f pointerFrame, toWorld func(x, y float32) r2.Vec) []input.MouseEvent {
	p.events = p.events[:0]
	wasOnScreen := p.onScreen
	p.onScreen = f.OnScreen

	if wasOnScreen && !f.OnScreen {
		return append(p.events, input.MouseEvent{Kind: input.MouseLeave})
	}
	if !f.OnScreen {
		return p.events
	}

	pos := toWorld(f.X, f.Y)
	if f.Moved {
		p.events = append(p.events, input.MouseEvent{Kind: input.MouseMove, Position: pos})
	}
	if f.PrimaryPressed {
		p.events = append(p.events, input.MouseEvent{Kind: input.MouseDown, Button: input.ButtonPrimary, Position: pos})
	}
	if f.SecondaryPressed {
		p.events = append(p.events, input.MouseEvent{Kind: input.MouseDown, Button: input.ButtonSecondary, Position: pos})
	}
	if f.PrimaryReleased {
		p.events = append(p.events, input.MouseEvent{Kind: input.MouseUp, Button: input.ButtonPrimary, Position: pos})
	}
	return p.events
}

// handleInput processes window, keyboard and pointer input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	g.handleKeys(rl.IsKeyPressed)
	g.overlays.HandleKeys(rl.IsKeyPressed)
	g.handleCameraInput()
	g.handlePointer()
}

// handleKeys applies the keyboard shortcuts.
func (g *Game) handleKeys(pressed func(key int32) bool) {
	if pressed(rl.KeySpace) {
		g.TogglePause()
	}
	if pressed(rl.KeyC) {
		g.ClearParticles()
	}
	if pressed(rl.KeyRight) {
		g.ChangeStage(1)
	}
	if pressed(rl.KeyLeft) {
		g.ChangeStage(-1)
	}
	if pressed(rl.KeyR) {
		g.Reset()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
}

// handleCameraInput processes zoom controls. Zooming changes the field
// bounds, so layouts and the escape test follow.
func (g *Game) handleCameraInput() {
	before := g.camera.Zoom

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}

	if g.camera.Zoom != before {
		g.applyBounds()
		g.canvas.Clear()
	}
}

// handlePointer feeds mouse or touch input to the editing session.
func (g *Game) handlePointer() {
	if g.touchMode {
		// Taps on the pause popup are not treated as resume clicks: the
		// popup button and double taps resume instead
		g.touches.Update(g.readTouches())
		return
	}

	f := readPointer()
	if g.paused {
		g.pointer.onScreen = f.OnScreen
		sw, sh := int32(g.screenWidth), int32(g.screenHeight)
		if f.PrimaryPressed && !g.popup.ButtonBounds(sw, sh).Contains(f.X, f.Y) {
			// Clicking the backdrop resumes
			g.TogglePause()
		}
		return
	}

	if !g.mouse.Selected && g.overPanel(f.X, f.Y) {
		g.pointer.onScreen = f.OnScreen
		rl.SetMouseCursor(int32(rl.MouseCursorDefault))
		return
	}

	for _, ev := range g.pointer.decode(f, g.camera.ScreenToWorld) {
		g.mouse = input.HandleMouse(g.mouse, ev, g.editor, g.inputOpts)
	}
	rl.SetMouseCursor(cursorShape(g.mouse.Cursor))
}

// overPanel reports whether a screen point lies on an interactive panel.
func (g *Game) overPanel(x, y float32) bool {
	return g.overlays.IsEnabled(ui.OverlayTuning) && g.tuning.Bounds().Contains(x, y)
}

func readPointer() pointerFrame {
	pos := rl.GetMousePosition()
	delta := rl.GetMouseDelta()
	return pointerFrame{
		X:                pos.X,
		Y:                pos.Y,
		Moved:            delta.X != 0 || delta.Y != 0,
		PrimaryPressed:   rl.IsMouseButtonPressed(rl.MouseButtonLeft),
		PrimaryReleased:  rl.IsMouseButtonReleased(rl.MouseButtonLeft),
		SecondaryPressed: rl.IsMouseButtonPressed(rl.MouseButtonRight),
		OnScreen:         rl.IsCursorOnScreen(),
	}
}

func (g *Game) readTouches() []input.TouchPoint {
	n := rl.GetTouchPointCount()
	points := make([]input.TouchPoint, 0, n)
	for i := int32(0); i < n; i++ {
		p := rl.GetTouchPosition(i)
		points = append(points, input.TouchPoint{
			ID:       rl.GetTouchPointId(i),
			Position: g.camera.ScreenToWorld(p.X, p.Y),
		})
	}
	return points
}

// cursorShape maps the session cursor to a raylib cursor.
func cursorShape(c input.Cursor) int32 {
	switch c {
	case input.CursorPointer:
		return int32(rl.MouseCursorPointingHand)
	case input.CursorGrabbing:
		return int32(rl.MouseCursorResizeAll)
	}
	return int32(rl.MouseCursorDefault)
}
