package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/camera"
	"github.com/pthm-cable/flux/components"
	"github.com/pthm-cable/flux/config"
)

// Style holds drawing colors and sizes in world units.
type Style struct {
	Background     rl.Color
	Foreground     rl.Color
	ParticleRadius float32
	TrailWidth     float32
	NodeCoreRadius float32
	RingWidth      float32
}

// StyleFromConfig builds a Style from the render section and its parsed colors.
func StyleFromConfig(c config.RenderConfig, d config.DerivedConfig) Style {
	return Style{
		Background:     Color(d.Background),
		Foreground:     Color(d.Foreground),
		ParticleRadius: float32(c.ParticleRadius),
		TrailWidth:     float32(c.TrailWidth),
		NodeCoreRadius: float32(c.NodeCoreRadius),
		RingWidth:      float32(c.RingWidth),
	}
}

// Color converts a config color to a raylib color.
func Color(c config.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FieldRenderer draws nodes and particles through the camera.
type FieldRenderer struct {
	cam   *camera.Camera
	style Style
}

// NewFieldRenderer creates a field renderer.
func NewFieldRenderer(cam *camera.Camera, style Style) *FieldRenderer {
	return &FieldRenderer{cam: cam, style: style}
}

// Style returns the active style.
func (r *FieldRenderer) Style() Style {
	return r.style
}

// DrawParticles draws each particle as a dot with a stroke back to its
// previous position.
func (r *FieldRenderer) DrawParticles(particles []components.Particle) {
	zoom := r.cam.Zoom
	radius := r.style.ParticleRadius * zoom
	width := r.style.TrailWidth * zoom
	color := r.style.Foreground

	for i := range particles {
		p := &particles[i]
		if !r.cam.IsVisible(p.Position, r.style.ParticleRadius) {
			continue
		}
		x, y := r.cam.WorldToScreen(p.Position)
		px, py := r.cam.WorldToScreen(p.Previous)

		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, color)
		rl.DrawLineEx(rl.Vector2{X: px, Y: py}, rl.Vector2{X: x, Y: y}, width, color)
	}
}

// DrawNodes draws each node as a background disc with a core dot and an
// outline ring at the node radius.
func (r *FieldRenderer) DrawNodes(nodes []components.Node) {
	zoom := r.cam.Zoom
	core := r.style.NodeCoreRadius * zoom
	ring := r.style.RingWidth * zoom
	if ring < 1 {
		ring = 1
	}

	for i := range nodes {
		n := &nodes[i]
		radius := float32(n.Radius)
		if !r.cam.IsVisible(n.Position, radius) {
			continue
		}
		x, y := r.cam.WorldToScreen(n.Position)
		center := rl.Vector2{X: x, Y: y}
		outer := radius * zoom

		rl.DrawCircleV(center, outer, r.style.Background)
		rl.DrawCircleV(center, core, r.style.Foreground)
		rl.DrawRing(center, outer-ring, outer, 0, 360, 48, r.style.Foreground)
	}
}
