package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	BaseWidth  = 800
	BaseHeight = 800

	// DefaultMoveSpeed is how far the player travels per tick when a scene
	// does not set its own speed.
	DefaultMoveSpeed = 10.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpVector interpolates each component of a toward b.
func LerpVector(a, b cp.Vector, t float64) cp.Vector {
	return cp.Vector{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v
// has no direction.
func NormalizeOrZero(v cp.Vector) cp.Vector {
	l := math.Hypot(v.X, v.Y)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return cp.Vector{}
	}
	return cp.Vector{X: v.X / l, Y: v.Y / l}
}
