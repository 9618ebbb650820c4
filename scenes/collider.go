package scenes

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/physics"
)

// Collider builds the entity's polygon, flagged as a trigger when the entity
// is marked as one.
func (e EntitySpec) Collider() (physics.Polygon, error) {
	kinds := 0
	if len(e.Shape.Vertices) > 0 {
		kinds++
	}
	if e.Shape.Box != nil {
		kinds++
	}
	if e.Shape.Line != nil {
		kinds++
	}
	switch kinds {
	case 0:
		return physics.Polygon{}, errors.New("shape needs one of vertices, box or line")
	case 1:
	default:
		return physics.Polygon{}, errors.New("shape must set only one of vertices, box or line")
	}

	if err := e.Shape.checkFinite(); err != nil {
		return physics.Polygon{}, err
	}

	var (
		poly physics.Polygon
		err  error
	)
	switch {
	case e.Shape.Box != nil:
		if e.Shape.Box.Width <= 0 || e.Shape.Box.Height <= 0 {
			return physics.Polygon{}, fmt.Errorf("box %vx%v must have a positive size", e.Shape.Box.Width, e.Shape.Box.Height)
		}
		poly, err = physics.NewBox(e.Shape.Box.Width, e.Shape.Box.Height)
	case e.Shape.Line != nil:
		if e.Shape.Line.Thickness <= 0 {
			return physics.Polygon{}, fmt.Errorf("line thickness %v must be positive", e.Shape.Line.Thickness)
		}
		poly, err = physics.NewLine(e.Shape.Line.Start.Vector(), e.Shape.Line.End.Vector(), e.Shape.Line.Thickness)
	default:
		verts := make([]cp.Vector, len(e.Shape.Vertices))
		for i, v := range e.Shape.Vertices {
			verts[i] = v.Vector()
		}
		poly, err = physics.NewPolygon(verts...)
	}
	if err != nil {
		return physics.Polygon{}, err
	}
	return poly.WithTrigger(e.Trigger), nil
}

func (s ShapeSpec) checkFinite() error {
	for i, v := range s.Vertices {
		if !v.Finite() {
			return fmt.Errorf("vertex %d %v is not finite", i, v)
		}
	}
	if b := s.Box; b != nil && (!isFinite(b.Width) || !isFinite(b.Height)) {
		return fmt.Errorf("box %vx%v is not finite", b.Width, b.Height)
	}
	if l := s.Line; l != nil {
		if !l.Start.Finite() || !l.End.Finite() || !isFinite(l.Thickness) {
			return fmt.Errorf("line %v -> %v thickness %v is not finite", l.Start, l.End, l.Thickness)
		}
	}
	return nil
}
