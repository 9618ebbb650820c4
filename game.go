package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/common"
	"github.com/milk9111/satworld/physics"
	"github.com/milk9111/satworld/scenes"
	"github.com/milk9111/satworld/sim"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const maxLogLines = 8

type Game struct {
	frames int

	sceneName string
	sim       *sim.Sim
	logger    *zap.Logger

	input  *Input
	camera *Camera

	debug   bool
	paused  bool
	pauseUI *ebitenui.UI

	watcher      *scenes.Watcher
	clipboardOK  bool
	lines        []string
	reloadQueued bool
}

type GameOptions struct {
	Scene  string
	Debug  bool
	Watch  bool
	Logger *zap.Logger
}

func NewGame(opts GameOptions) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Game{
		sceneName: opts.Scene,
		logger:    logger,
		input:     NewInput(),
		camera:    NewCamera(common.BaseWidth, common.BaseHeight),
		debug:     opts.Debug,
	}
	if err := g.load(); err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
	} else {
		g.clipboardOK = true
	}

	if opts.Watch {
		w, err := scenes.NewWatcher("scenes")
		if err != nil {
			logger.Warn("scene watcher disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// load builds a fresh simulation from the scene. The previous one is kept if
// the scene fails to load.
func (g *Game) load() error {
	spec, err := scenes.LoadScene(g.sceneName)
	if err != nil {
		return err
	}
	s, err := sim.New(spec, g.logger)
	if err != nil {
		return err
	}
	g.sim = s
	if player, ok := s.Player(); ok {
		g.camera.SnapTo(playerCenter(s.World(), player))
	} else {
		g.camera.SnapTo(cp.Vector{X: common.BaseWidth / 2, Y: common.BaseHeight / 2})
	}
	g.logLine(fmt.Sprintf("loaded %s", spec.Name))
	return nil
}

func (g *Game) reload() {
	if err := g.load(); err != nil {
		g.logger.Warn("reload failed", zap.String("scene", g.sceneName), zap.Error(err))
		g.logLine(fmt.Sprintf("reload failed: %v", err))
		return
	}
	g.logger.Info("scene reloaded", zap.String("scene", g.sceneName))
}

func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

func (g *Game) Update() error {
	g.frames++

	g.pollWatcher()
	if g.reloadQueued {
		g.reloadQueued = false
		g.reload()
	}

	g.input.Update()
	if g.input.QuitPressed {
		return ebiten.Termination
	}

	if g.input.PausePressed {
		g.setPaused(!g.paused)
	}
	if g.paused {
		if g.pauseUI != nil {
			g.pauseUI.Update()
		}
		return nil
	}

	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.input.ReloadPressed {
		g.reload()
	}
	if g.input.CopyPressed {
		g.copyPositions()
	}

	g.sim.Step(g.input.Move)
	for _, evt := range g.sim.Events() {
		g.logLine(evt.String())
	}

	if player, ok := g.sim.Player(); ok {
		g.camera.Update(playerCenter(g.sim.World(), player))
	}
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Debug("scene file changed", zap.String("path", change.Path), zap.Stringer("kind", change.Kind))
			g.reloadQueued = true
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("scene watcher", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) setPaused(paused bool) {
	g.paused = paused
	if paused {
		g.pauseUI = NewPauseUI(g)
	} else {
		g.pauseUI = nil
	}
}

// copyPositions puts the current scene, with live positions, on the
// clipboard as YAML.
func (g *Game) copyPositions() {
	data, err := g.sim.Snapshot().Marshal()
	if err != nil {
		g.logger.Warn("copy positions", zap.Error(err))
		return
	}
	if !g.clipboardOK {
		g.logLine("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.logLine(fmt.Sprintf("copied %d entities", g.sim.World().Len()))
}

func (g *Game) logLine(line string) {
	g.lines = append(g.lines, line)
	if len(g.lines) > maxLogLines {
		g.lines = g.lines[len(g.lines)-maxLogLines:]
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	if g.debug {
		g.DebugDraw(screen)
	} else {
		g.drawWorld(screen)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  tick: %d  FPS: %.2f", g.sceneName, g.sim.Tick(), ebiten.ActualFPS()))
	if player, ok := g.sim.Player(); ok {
		pos := g.sim.World().Position(player)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("player: (%.1f, %.1f)", pos.X, pos.Y), 0, 16)
	}
	ebitenutil.DebugPrintAt(screen, strings.Join(g.lines, "\n"), 0, common.BaseHeight-16*maxLogLines)

	if g.paused && g.pauseUI != nil {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	w := g.sim.World()
	player, hasPlayer := g.sim.Player()
	spec := g.sim.Scene()

	for i := 0; i < w.Len(); i++ {
		id := physics.EntityID(i)
		c := w.Collider(id)

		var clr color.Color = colornames.Grey
		switch {
		case hasPlayer && id == player:
			clr = colornames.Red
		case c.IsTrigger():
			clr = colornames.Orange
		}
		if col := spec.Entities[i].Color; col != nil && col.Color != nil {
			clr = col.Color
		}

		verts := c.WorldVertices(w.Position(id))
		for n := range verts {
			x0, y0 := g.camera.ToScreen(verts[n])
			x1, y1 := g.camera.ToScreen(verts[(n+1)%len(verts)])
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, clr, true)
		}
	}
}

func playerCenter(w *physics.World, id physics.EntityID) cp.Vector {
	bb := w.Collider(id).Bounds(w.Position(id))
	return cp.Vector{X: (bb.L + bb.R) / 2, Y: (bb.B + bb.T) / 2}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
