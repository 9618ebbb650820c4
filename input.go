package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
)

// Input holds the per-frame key state the viewer reacts to.
type Input struct {
	// Move is the raw direction from WASD, arrows or the left stick. It is
	// not normalized; the simulation does that.
	Move cp.Vector

	PausePressed  bool
	DebugPressed  bool
	CopyPressed   bool
	ReloadPressed bool
	QuitPressed   bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls the keyboard and the first gamepad.
func (i *Input) Update() {
	var move cp.Vector
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		move.X -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		move.X += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		move.Y -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		move.Y += 1
	}

	var gpPause bool
	if ids := ebiten.GamepadIDs(); len(ids) > 0 {
		gid := ids[0]
		sx := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		sy := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
		if sx*sx+sy*sy > 0.09 {
			move = cp.Vector{X: sx, Y: sy}
		}
		gpPause = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
	}

	i.Move = move
	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || gpPause
	i.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF1)
	i.CopyPressed = inpututil.IsKeyJustPressed(ebiten.KeyC)
	i.ReloadPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.QuitPressed = inpututil.IsKeyJustPressed(ebiten.KeyF12)
}
