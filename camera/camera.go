// Package camera maps between screen pixels and field coordinates.
// The field origin sits at the viewport center and +Y points down the screen.
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera controls the viewport into the field.
type Camera struct {
	// Zoom level (1.0 = one world unit per screen pixel)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera with 1:1 zoom for the given viewport.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.25,
		MaxZoom:   4.0,
	}
}

// WorldToScreen converts field coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	sx = c.ViewportW/2 + float32(p.X)*c.Zoom
	sy = c.ViewportH/2 + float32(p.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to field coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	return r2.Vec{
		X: float64((sx - c.ViewportW/2) / c.Zoom),
		Y: float64((sy - c.ViewportH/2) / c.Zoom),
	}
}

// Bounds returns the field extent covered by the viewport. The engine's
// escape test and the layout generators are sized from it.
func (c *Camera) Bounds() r2.Vec {
	return r2.Vec{X: float64(c.ViewportW / c.Zoom), Y: float64(c.ViewportH / c.Zoom)}
}

// IsVisible returns true if a circle at p with the given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(float32(p.X)) <= halfW && absf(float32(p.Y)) <= halfH
}

// Resize updates viewport dimensions. It reports whether anything changed.
func (c *Camera) Resize(viewportW, viewportH float32) bool {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return false
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	return true
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to 1:1 zoom.
func (c *Camera) Reset() {
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the field-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return -halfW, -halfH, halfW, halfH
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
