package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/physics"
)

// mirrorSpace copies every collider into a chipmunk space as a static shape
// in world coordinates, with triggers as sensors, so cp.DrawSpace can draw
// them alongside their bounding boxes.
func mirrorSpace(w *physics.World) *cp.Space {
	space := cp.NewSpace()
	for i := 0; i < w.Len(); i++ {
		id := physics.EntityID(i)
		c := w.Collider(id)
		verts := c.WorldVertices(w.Position(id))
		shape := cp.NewPolyShapeRaw(space.StaticBody, len(verts), verts, 0)
		shape.SetSensor(c.IsTrigger())
		space.AddShape(shape)
	}
	return space
}

// DebugDraw renders the chipmunk mirror of the world plus each entity's
// normals and id.
func (g *Game) DebugDraw(screen *ebiten.Image) {
	if g == nil || g.sim == nil || screen == nil {
		return
	}
	w := g.sim.World()
	cp.DrawSpace(mirrorSpace(w), &chipmunkDrawer{screen: screen, camera: g.camera})

	normalColor := color.RGBA{R: 0x40, G: 0xff, B: 0xff, A: 0xff}
	for i := 0; i < w.Len(); i++ {
		id := physics.EntityID(i)
		c := w.Collider(id)
		pos := w.Position(id)
		verts := c.WorldVertices(pos)
		for n, normal := range c.Normals() {
			a := verts[n]
			b := verts[(n+1)%len(verts)]
			mid := a.Add(b).Mult(0.5)
			x0, y0 := g.camera.ToScreen(mid)
			x1, y1 := g.camera.ToScreen(mid.Add(normal.Mult(8)))
			ebitenutil.DrawLine(screen, float64(x0), float64(y0), float64(x1), float64(y1), normalColor)
		}
		x, y := g.camera.ToScreen(pos)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", id), int(x), int(y))
	}
}

type chipmunkDrawer struct {
	screen *ebiten.Image
	camera *Camera
}

func (d *chipmunkDrawer) line(a, b cp.Vector, c color.Color) {
	x0, y0 := d.camera.ToScreen(a)
	x1, y1 := d.camera.ToScreen(b)
	ebitenutil.DrawLine(d.screen, float64(x0), float64(y0), float64(x1), float64(y1), c)
}

func (d *chipmunkDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if d.screen == nil {
		return
	}
	c := fcolorToRGBA(outline)
	steps := 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
}

func (d *chipmunkDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	if d.screen == nil {
		return
	}
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *chipmunkDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if d.screen == nil {
		return
	}
	d.line(a, b, fcolorToRGBA(outline))
}

func (d *chipmunkDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if d.screen == nil || count == 0 {
		return
	}
	c := fcolorToRGBA(outline)
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
		bb = cp.BB{
			L: math.Min(bb.L, verts[i].X),
			B: math.Min(bb.B, verts[i].Y),
			R: math.Max(bb.R, verts[i].X),
			T: math.Max(bb.T, verts[i].Y),
		}
	}

	// bounding box, dimmed
	dim := fcolorToRGBA(cp.FColor{R: outline.R, G: outline.G, B: outline.B, A: 0.35})
	corners := []cp.Vector{{X: bb.L, Y: bb.B}, {X: bb.R, Y: bb.B}, {X: bb.R, Y: bb.T}, {X: bb.L, Y: bb.T}}
	for i := range corners {
		d.line(corners[i], corners[(i+1)%4], dim)
	}
}

func (d *chipmunkDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if d.screen == nil {
		return
	}
	c := fcolorToRGBA(fill)
	l := size / 2
	d.line(cp.Vector{X: pos.X - l, Y: pos.Y}, cp.Vector{X: pos.X + l, Y: pos.Y}, c)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - l}, cp.Vector{X: pos.X, Y: pos.Y + l}, c)
}

func (d *chipmunkDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *chipmunkDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *chipmunkDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if shape.Sensor() {
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	}
	return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
}

func (d *chipmunkDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *chipmunkDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *chipmunkDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
