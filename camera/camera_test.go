package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720)

	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if b := cam.Bounds(); b.X != 1280 || b.Y != 720 {
		t.Errorf("expected bounds (1280, 720), got %v", b)
	}
}

func TestOriginAtViewportCenter(t *testing.T) {
	cam := New(1280, 720)

	sx, sy := cam.WorldToScreen(r2.Vec{})
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}

	p := cam.ScreenToWorld(0, 0)
	if p.X != -640 || p.Y != -360 {
		t.Errorf("top-left corner maps to %v, want (-640, -360)", p)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720)
	cam.SetZoom(1.5)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		p := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(p)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, p, sx, sy)
		}
	}
}

func TestZoomClampAndBounds(t *testing.T) {
	cam := New(1280, 720)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.25 {
		t.Errorf("expected zoom clamped to 0.25, got %f", cam.Zoom)
	}
	if b := cam.Bounds(); b.X != 5120 || b.Y != 2880 {
		t.Errorf("bounds at min zoom = %v, want (5120, 2880)", b)
	}

	cam.SetZoom(10.0) // Above max
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}

	cam.Reset()
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0 after reset, got %f", cam.Zoom)
	}
}

func TestResize(t *testing.T) {
	cam := New(1280, 720)

	if cam.Resize(1280, 720) {
		t.Error("same size reported as a change")
	}
	if !cam.Resize(800, 600) {
		t.Fatal("new size not reported as a change")
	}
	if b := cam.Bounds(); b.X != 800 || b.Y != 600 {
		t.Errorf("bounds after resize = %v", b)
	}
	sx, sy := cam.WorldToScreen(r2.Vec{})
	if sx != 400 || sy != 300 {
		t.Errorf("origin after resize at (%f, %f), want (400, 300)", sx, sy)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720)

	if !cam.IsVisible(r2.Vec{}, 10) {
		t.Error("origin should be visible")
	}
	if cam.IsVisible(r2.Vec{X: 1000, Y: 600}, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(r2.Vec{X: -700}, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(1000, 800)
	cam.SetZoom(2)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX != -250 || minY != -200 || maxX != 250 || maxY != 200 {
		t.Errorf("visible bounds = (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}
