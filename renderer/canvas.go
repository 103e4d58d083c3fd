package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TrailCanvas is an offscreen target that is never cleared between frames.
// Each frame fades it toward the background so moving particles leave trails.
type TrailCanvas struct {
	target      rl.RenderTexture2D
	width       int32
	height      int32
	background  rl.Color
	decay       float64
	initialized bool
	dirty       bool // Needs a full clear before the next frame
}

// NewTrailCanvas creates a canvas. decay is the fraction of the trail left
// after one second.
func NewTrailCanvas(width, height int32, background rl.Color, decay float64) *TrailCanvas {
	return &TrailCanvas{
		width:      width,
		height:     height,
		background: background,
		decay:      decay,
		dirty:      true,
	}
}

// Init allocates the render texture (must be called after the raylib window is created).
func (t *TrailCanvas) Init() {
	if t.initialized {
		return
	}
	t.target = rl.LoadRenderTexture(t.width, t.height)
	rl.SetTextureFilter(t.target.Texture, rl.FilterBilinear)
	t.initialized = true
	t.dirty = true
}

// Begin redirects drawing into the canvas and applies this frame's fade.
func (t *TrailCanvas) Begin(dt float64) {
	if !t.initialized {
		t.Init()
	}
	rl.BeginTextureMode(t.target)
	if t.dirty {
		rl.ClearBackground(t.background)
		t.dirty = false
		return
	}
	fade := t.background
	fade.A = FadeAlpha(t.decay, dt)
	if fade.A > 0 {
		rl.DrawRectangle(0, 0, t.width, t.height, fade)
	}
}

// End stops drawing into the canvas.
func (t *TrailCanvas) End() {
	rl.EndTextureMode()
}

// Draw blits the canvas to the screen.
func (t *TrailCanvas) Draw() {
	if !t.initialized {
		return
	}
	// Render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(t.width), Height: -float32(t.height)}
	rl.DrawTextureRec(t.target.Texture, src, rl.Vector2{}, rl.White)
}

// Clear wipes all trails on the next Begin.
func (t *TrailCanvas) Clear() {
	t.dirty = true
}

// SetDecay changes the per-second trail persistence.
func (t *TrailCanvas) SetDecay(decay float64) {
	t.decay = decay
}

// Resize reallocates the canvas for a new window size. Existing trails are
// dropped.
func (t *TrailCanvas) Resize(width, height int32) {
	if width == t.width && height == t.height {
		return
	}
	t.width = width
	t.height = height
	if t.initialized {
		rl.UnloadRenderTexture(t.target)
		t.initialized = false
	}
	t.dirty = true
}

// Unload frees resources.
func (t *TrailCanvas) Unload() {
	if t.initialized {
		rl.UnloadRenderTexture(t.target)
		t.initialized = false
	}
}

// FadeAlpha returns the background overlay alpha for one frame so that a
// trail keeps decay of its intensity after one second regardless of frame rate.
func FadeAlpha(decay, dt float64) uint8 {
	switch {
	case !(dt > 0):
		return 0
	case math.IsInf(dt, 1), decay <= 0:
		return 255
	case decay >= 1:
		return 0
	}
	a := 1 - math.Pow(decay, dt)
	v := math.Round(a * 255)
	if v < 1 {
		// Never let a trail persist forever at high frame rates
		v = 1
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
