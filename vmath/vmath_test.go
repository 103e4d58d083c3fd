package vmath

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestBasicOps(t *testing.T) {
	a := r2.Vec{X: 3, Y: 4}
	b := r2.Vec{X: 1, Y: -2}

	if got := Add(a, b); got != (r2.Vec{X: 4, Y: 2}) {
		t.Errorf("Add = %v, want {4 2}", got)
	}
	if got := Sub(a, b); got != (r2.Vec{X: 2, Y: 6}) {
		t.Errorf("Sub = %v, want {2 6}", got)
	}
	if got := Scale(a, 2); got != (r2.Vec{X: 6, Y: 8}) {
		t.Errorf("Scale = %v, want {6 8}", got)
	}
	if got := Magnitude(a); got != 5 {
		t.Errorf("Magnitude = %v, want 5", got)
	}
	if got := Distance(a, r2.Vec{}); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestUnit(t *testing.T) {
	tests := []struct {
		name string
		in   r2.Vec
		want r2.Vec
	}{
		{"zero vector", r2.Vec{}, r2.Vec{}},
		{"x axis", r2.Vec{X: 10}, r2.Vec{X: 1}},
		{"3-4-5", r2.Vec{X: 3, Y: 4}, r2.Vec{X: 0.6, Y: 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unit(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("Unit(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if !IsFinite(got) {
				t.Errorf("Unit(%v) produced non-finite %v", tt.in, got)
			}
		})
	}
}

func TestRandomVectorMagnitude(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := RandomVector(rng, 12.5)
		if math.Abs(Magnitude(v)-12.5) > 1e-9 {
			t.Fatalf("RandomVector magnitude = %v, want 12.5", Magnitude(v))
		}
	}
}

func TestRandomVectorDeterministic(t *testing.T) {
	a := RandomVector(rand.New(rand.NewSource(42)), 3)
	b := RandomVector(rand.New(rand.NewSource(42)), 3)
	if a != b {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(r2.Vec{X: math.NaN()}) {
		t.Error("NaN reported finite")
	}
	if IsFinite(r2.Vec{Y: math.Inf(-1)}) {
		t.Error("-Inf reported finite")
	}
	if !IsFinite(r2.Vec{X: 1e300, Y: -1e300}) {
		t.Error("large finite values reported non-finite")
	}
}
