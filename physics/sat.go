package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Overlap runs the separating axis test between c1 placed at p1 and c2
// placed at p2. When the shapes overlap it returns the minimum translation
// vector that, added to p1, pushes c1 out of c2.
//
// A trigger c2 never resists, so Overlap reports no overlap for it. The
// caller decides what to do when c1 is a trigger.
func Overlap(p1 cp.Vector, c1 Polygon, p2 cp.Vector, c2 Polygon) (cp.Vector, bool) {
	if c2.trigger {
		return cp.Vector{}, false
	}
	return separate(p1, c1, p2, c2)
}

// separate is Overlap without the trigger short-circuit.
func separate(p1 cp.Vector, c1 Polygon, p2 cp.Vector, c2 Polygon) (cp.Vector, bool) {
	var (
		mtv   cp.Vector
		depth float64
		found bool
	)

	for _, axes := range [2][]cp.Vector{c1.normals, c2.normals} {
		for _, axis := range axes {
			min1, max1 := project(c1.verts, p1, axis)
			min2, max2 := project(c2.verts, p2, axis)

			// one separating axis is enough
			if max1 <= min2 || min1 >= max2 {
				return cp.Vector{}, false
			}

			d := penetration(min1, max1, min2, max2)
			if !found || math.Abs(d) < math.Abs(depth) {
				mtv = axis.Mult(d)
				depth = d
				found = true
			}
		}
	}

	if !found {
		panic("physics: overlap detected but no translation vector was produced")
	}
	return mtv, true
}

func project(verts []cp.Vector, pos, axis cp.Vector) (lo, hi float64) {
	lo = verts[0].Add(pos).Dot(axis)
	hi = lo
	for _, v := range verts[1:] {
		p := v.Add(pos).Dot(axis)
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return lo, hi
}

// penetration returns the signed 1D displacement of smallest magnitude that
// moves interval 1 off interval 2. The intervals must already overlap.
func penetration(min1, max1, min2, max2 float64) float64 {
	down := min2 - max1
	up := max2 - min1

	switch {
	case min1 >= min2 && max1 <= max2:
		// 1 inside 2: mn2 mn1 mx1 mx2
		return smaller(down, up)
	case min2 >= min1 && max2 <= max1:
		// 2 inside 1: mn1 mn2 mx2 mx1
		return smaller(down, up)
	case max1 >= min2 && max1 <= max2:
		// only max1 inside 2: mn1 mn2 mx1 mx2
		return down
	case min1 >= min2 && min1 <= max2:
		// only min1 inside 2: mn2 mn1 mx2 mx1
		return up
	default:
		panic(fmt.Sprintf("physics: projections [%v,%v] and [%v,%v] overlap in no known configuration", min1, max1, min2, max2))
	}
}

// smaller picks the value of least magnitude, preferring a on ties.
func smaller(a, b float64) float64 {
	if math.Abs(a) <= math.Abs(b) {
		return a
	}
	return b
}
