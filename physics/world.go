package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

// MaxResolveIterations bounds the number of full scans a single move may
// spend pushing the mover out of solids before the move is dropped.
const MaxResolveIterations = 5

// EntityID is the dense insertion index of an entity in a World.
type EntityID int

// World owns entity positions and colliders in two index-aligned slices.
// Every query tests all pairs; there is no broadphase.
type World struct {
	positions []cp.Vector
	colliders []Polygon

	logger *zap.Logger
}

// Option configures a World.
type Option func(*World)

// WithLogger routes the world's debug output to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	w := &World{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewEntity registers a collider at pos and returns its id.
func (w *World) NewEntity(pos cp.Vector, collider Polygon) EntityID {
	id := EntityID(len(w.positions))
	w.positions = append(w.positions, pos)
	w.colliders = append(w.colliders, collider)
	return id
}

// Len returns the number of entities.
func (w *World) Len() int {
	return len(w.positions)
}

// Position returns the entity's current position.
func (w *World) Position(id EntityID) cp.Vector {
	w.mustExist(id)
	return w.positions[id]
}

// Collider returns the entity's collider.
func (w *World) Collider(id EntityID) Polygon {
	w.mustExist(id)
	return w.colliders[id]
}

// Positions returns a copy of every position in id order.
func (w *World) Positions() []cp.Vector {
	out := make([]cp.Vector, len(w.positions))
	copy(out, w.positions)
	return out
}

// MoveBy moves the entity by delta, resolving against every solid collider.
func (w *World) MoveBy(id EntityID, delta cp.Vector) {
	w.mustExist(id)
	w.MoveTo(id, w.positions[id].Add(delta))
}

// MoveTo moves the entity toward target, pushing it out of every solid
// collider it would overlap. A trigger mover always lands on target. If the
// move does not settle within MaxResolveIterations scans it is dropped and
// the entity stays where it was.
func (w *World) MoveTo(id EntityID, target cp.Vector) {
	w.mustExist(id)
	if !finite(target) {
		panic(fmt.Sprintf("physics: entity %d target %v is not finite", id, target))
	}

	if w.colliders[id].trigger {
		w.positions[id] = target
		return
	}

	resolved, ok := w.resolve(id, target)
	if !ok {
		w.logger.Debug("move rejected",
			zap.Int("entity", int(id)),
			zap.Float64("target_x", target.X),
			zap.Float64("target_y", target.Y),
			zap.Int("iterations", MaxResolveIterations),
		)
		return
	}
	w.positions[id] = resolved
}

// resolve scans every other collider, applying the first MTV found and
// restarting the scan, because one correction may create or remove overlap
// with any other collider.
func (w *World) resolve(id EntityID, target cp.Vector) (cp.Vector, bool) {
	p1 := target
	c1 := w.colliders[id]

	for iter := 0; iter < MaxResolveIterations; iter++ {
		hit := false
		for n, c2 := range w.colliders {
			if EntityID(n) == id || c2.trigger {
				continue
			}
			if mtv, ok := Overlap(p1, c1, w.positions[n], c2); ok {
				p1 = p1.Add(mtv)
				hit = true
				break
			}
		}
		if !hit {
			return p1, true
		}
	}
	return target, false
}

// OverlappingTriggers returns, in ascending id order, every trigger whose
// collider overlaps the entity at the current positions.
func (w *World) OverlappingTriggers(id EntityID) []EntityID {
	w.mustExist(id)

	var out []EntityID
	p1 := w.positions[id]
	c1 := w.colliders[id]
	for n, c2 := range w.colliders {
		if EntityID(n) == id || !c2.trigger {
			continue
		}
		if _, ok := separate(p1, c1, w.positions[n], c2); ok {
			out = append(out, EntityID(n))
		}
	}
	return out
}

func (w *World) mustExist(id EntityID) {
	if id < 0 || int(id) >= len(w.positions) {
		panic(fmt.Sprintf("physics: entity %d out of range [0,%d)", id, len(w.positions)))
	}
}

func finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
