package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var (
	ErrTooFewVertices = errors.New("polygon must consist of at least 3 vertices")
	ErrDegenerateEdge = errors.New("polygon edge has zero length")
	ErrDegenerateLine = errors.New("line start and end are the same point")
)

// Polygon is a convex collider shape in entity-local space. It is immutable
// once built; WithTrigger returns a modified copy.
type Polygon struct {
	verts   []cp.Vector
	normals []cp.Vector
	trigger bool
}

// NewPolygon builds a polygon from ordered vertices and precomputes one unit
// normal per edge, including the wrap-around edge from the last vertex back
// to the first.
func NewPolygon(verts ...cp.Vector) (Polygon, error) {
	if len(verts) < 3 {
		return Polygon{}, fmt.Errorf("physics: new polygon with %d vertices: %w", len(verts), ErrTooFewVertices)
	}

	owned := make([]cp.Vector, len(verts))
	copy(owned, verts)

	// flip so normals face outward whatever the input winding
	sign := 1.0
	if signedArea(owned) < 0 {
		sign = -1.0
	}

	normals := make([]cp.Vector, len(owned))
	for i := range owned {
		a := owned[i]
		b := owned[(i+1)%len(owned)]
		edge := a.Sub(b)
		length := edge.Length()
		if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
			return Polygon{}, fmt.Errorf("physics: new polygon edge %d (%v -> %v): %w", i, a, b, ErrDegenerateEdge)
		}
		normals[i] = cp.Vector{X: -edge.Y / length * sign, Y: edge.X / length * sign}
	}

	return Polygon{verts: owned, normals: normals}, nil
}

// MustPolygon is NewPolygon for hard-coded shapes; it panics on error.
func MustPolygon(verts ...cp.Vector) Polygon {
	p, err := NewPolygon(verts...)
	if err != nil {
		panic(err)
	}
	return p
}

// NewLine builds a thin rectangle around the segment start->end. Every corner
// sits thickness away from its endpoint both along and across the segment.
func NewLine(start, end cp.Vector, thickness float64) (Polygon, error) {
	d := end.Sub(start)
	length := d.Length()
	if length == 0 {
		return Polygon{}, fmt.Errorf("physics: new line %v -> %v: %w", start, end, ErrDegenerateLine)
	}
	dir := d.Mult(1 / length)
	left := cp.Vector{X: -dir.Y, Y: dir.X}
	right := cp.Vector{X: dir.Y, Y: -dir.X}

	p1 := dir.Neg().Add(left).Mult(thickness).Add(start)
	p2 := dir.Neg().Add(right).Mult(thickness).Add(start)
	p3 := dir.Add(right).Mult(thickness).Add(end)
	p4 := dir.Add(left).Mult(thickness).Add(end)

	return NewPolygon(p1, p2, p3, p4)
}

// MustLine is NewLine for hard-coded walls; it panics on error.
func MustLine(start, end cp.Vector, thickness float64) Polygon {
	p, err := NewLine(start, end, thickness)
	if err != nil {
		panic(err)
	}
	return p
}

// NewBox returns a width x height rectangle centered on the local origin.
func NewBox(width, height float64) (Polygon, error) {
	hw, hh := width/2, height/2
	return NewPolygon(
		cp.Vector{X: -hw, Y: -hh},
		cp.Vector{X: hw, Y: -hh},
		cp.Vector{X: hw, Y: hh},
		cp.Vector{X: -hw, Y: hh},
	)
}

// MustBox is NewBox for hard-coded shapes; it panics on error.
func MustBox(width, height float64) Polygon {
	p, err := NewBox(width, height)
	if err != nil {
		panic(err)
	}
	return p
}

// WithTrigger returns a copy of p with the trigger flag replaced.
func (p Polygon) WithTrigger(trigger bool) Polygon {
	return Polygon{verts: p.verts, normals: p.normals, trigger: trigger}
}

// IsTrigger reports whether the polygon only reports overlap and never blocks.
func (p Polygon) IsTrigger() bool {
	return p.trigger
}

// Len returns the vertex count.
func (p Polygon) Len() int {
	return len(p.verts)
}

// Vertices returns a copy of the local-space vertices.
func (p Polygon) Vertices() []cp.Vector {
	out := make([]cp.Vector, len(p.verts))
	copy(out, p.verts)
	return out
}

// Normals returns a copy of the edge normals. Normals()[i] belongs to the
// edge from Vertices()[i] to Vertices()[(i+1)%n].
func (p Polygon) Normals() []cp.Vector {
	out := make([]cp.Vector, len(p.normals))
	copy(out, p.normals)
	return out
}

// WorldVertices returns the vertices translated to pos.
func (p Polygon) WorldVertices(pos cp.Vector) []cp.Vector {
	out := make([]cp.Vector, len(p.verts))
	for i, v := range p.verts {
		out[i] = v.Add(pos)
	}
	return out
}

// Bounds returns the world-space bounding box of the polygon placed at pos.
func (p Polygon) Bounds(pos cp.Vector) cp.BB {
	if len(p.verts) == 0 {
		return cp.BB{L: pos.X, B: pos.Y, R: pos.X, T: pos.Y}
	}
	first := p.verts[0].Add(pos)
	bb := cp.BB{L: first.X, B: first.Y, R: first.X, T: first.Y}
	for _, v := range p.verts[1:] {
		w := v.Add(pos)
		bb.L = math.Min(bb.L, w.X)
		bb.R = math.Max(bb.R, w.X)
		bb.B = math.Min(bb.B, w.Y)
		bb.T = math.Max(bb.T, w.Y)
	}
	return bb
}

// Convex reports whether every turn along the outline goes the same way.
// Collinear vertices are allowed.
func (p Polygon) Convex() bool {
	n := len(p.verts)
	if n < 3 {
		return false
	}
	var pos, neg bool
	for i := range p.verts {
		a := p.verts[i]
		b := p.verts[(i+1)%n]
		c := p.verts[(i+2)%n]
		ab, bc := b.Sub(a), c.Sub(b)
		cross := ab.X*bc.Y - ab.Y*bc.X
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

func signedArea(verts []cp.Vector) float64 {
	var area float64
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}
