// Package vmath provides the 2D vector operations used by the field simulation.
// Vectors are gonum r2.Vec values; every function is pure.
package vmath

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Zero is the zero vector.
var Zero = r2.Vec{}

// Add returns a + b.
func Add(a, b r2.Vec) r2.Vec {
	return r2.Add(a, b)
}

// Sub returns a - b.
func Sub(a, b r2.Vec) r2.Vec {
	return r2.Sub(a, b)
}

// Scale returns v scaled by r.
func Scale(v r2.Vec, r float64) r2.Vec {
	return r2.Scale(r, v)
}

// Magnitude returns the Euclidean length of v.
func Magnitude(v r2.Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Unit returns v normalized to length 1.
// The zero vector maps to the zero vector so callers never see NaN.
func Unit(v r2.Vec) r2.Vec {
	m := Magnitude(v)
	if m == 0 {
		return Zero
	}
	return r2.Vec{X: v.X / m, Y: v.Y / m}
}

// Distance returns |a - b|.
func Distance(a, b r2.Vec) float64 {
	return Magnitude(Sub(a, b))
}

// RandomVector returns a vector of the given magnitude pointing in a uniformly
// random direction. The angle is measured from the +Y axis: (sin θ, cos θ).
func RandomVector(rng *rand.Rand, magnitude float64) r2.Vec {
	theta := rng.Float64() * 2 * math.Pi
	return r2.Vec{
		X: magnitude * math.Sin(theta),
		Y: magnitude * math.Cos(theta),
	}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
