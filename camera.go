package main

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/common"
)

// Camera keeps a world point at the center of the screen.
type Camera struct {
	pos cp.Vector

	screenW float64
	screenH float64

	// smoothing factor (0..1). higher -> faster follow
	smooth float64
}

func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		pos:     cp.Vector{X: float64(screenW) / 2, Y: float64(screenH) / 2},
		screenW: float64(screenW),
		screenH: float64(screenH),
		smooth:  0.2,
	}
}

func (c *Camera) SetSmooth(f float64) {
	c.smooth = math.Max(0, math.Min(1, f))
}

// Update moves the camera toward target.
func (c *Camera) Update(target cp.Vector) {
	if c.smooth <= 0 {
		c.SnapTo(target)
		return
	}
	c.pos = common.LerpVector(c.pos, target, c.smooth)
	c.pos = cp.Vector{X: math.Round(c.pos.X), Y: math.Round(c.pos.Y)}
}

// SnapTo centers the camera on target immediately, e.g. after a reload.
func (c *Camera) SnapTo(target cp.Vector) {
	c.pos = cp.Vector{X: math.Round(target.X), Y: math.Round(target.Y)}
}

// ViewTopLeft returns the world-space top-left of the current view.
func (c *Camera) ViewTopLeft() cp.Vector {
	return cp.Vector{X: c.pos.X - c.screenW/2, Y: c.pos.Y - c.screenH/2}
}

// ToScreen maps a world point to screen pixels.
func (c *Camera) ToScreen(p cp.Vector) (float32, float32) {
	tl := c.ViewTopLeft()
	return float32(p.X - tl.X), float32(p.Y - tl.Y)
}
