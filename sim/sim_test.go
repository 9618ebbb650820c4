package sim

import (
	"fmt"
	"math"
	"testing"

	"github.com/d5/tengo/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/physics"
	"github.com/milk9111/satworld/scenes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func parseScene(t *testing.T, doc string) *scenes.SceneSpec {
	t.Helper()
	spec, err := scenes.Parse([]byte(doc))
	require.NoError(t, err)
	return spec
}

func scripts(m map[string]string) Option {
	return WithScriptLoader(func(name string) ([]byte, error) {
		src, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("no script %s", name)
		}
		return []byte(src), nil
	})
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

const corridor = `
name: corridor
player: hero
speed: 10
entities:
  - name: zone
    position: [100, 0]
    trigger: true
    shape: {box: {width: 20, height: 20}}
  - name: hero
    position: [0, 0]
    shape: {box: {width: 20, height: 20}}
`

func TestNewRoomScene(t *testing.T) {
	spec, err := scenes.LoadScene("room")
	require.NoError(t, err)

	s, err := New(spec, nil)
	require.NoError(t, err)

	require.Equal(t, 8, s.World().Len())
	player, ok := s.Player()
	require.True(t, ok)
	assert.Equal(t, physics.EntityID(7), player)
	assert.Equal(t, "player", s.Name(player))
	assert.Equal(t, "#99", s.Name(99))

	id, ok := s.ID("block_a")
	require.True(t, ok)
	assert.Equal(t, physics.EntityID(0), id)
	_, ok = s.ID("missing")
	assert.False(t, ok)

	assert.Empty(t, s.Triggers())
	assert.Equal(t, 0, s.Tick())
}

func TestStepMovesPlayer(t *testing.T) {
	spec, err := scenes.LoadScene("room")
	require.NoError(t, err)

	t.Run("idle", func(t *testing.T) {
		s, err := New(spec, nil)
		require.NoError(t, err)
		s.Step(cp.Vector{})
		player, _ := s.Player()
		assert.Equal(t, cp.Vector{X: 100, Y: 100}, s.World().Position(player))
		assert.Equal(t, 1, s.Tick())
	})

	t.Run("right", func(t *testing.T) {
		s, err := New(spec, nil)
		require.NoError(t, err)
		s.Step(cp.Vector{X: 1})
		player, _ := s.Player()
		assert.Equal(t, cp.Vector{X: 110, Y: 100}, s.World().Position(player))
	})

	t.Run("diagonal_is_normalized", func(t *testing.T) {
		s, err := New(spec, nil)
		require.NoError(t, err)
		s.Step(cp.Vector{X: 1, Y: 1})
		player, _ := s.Player()
		pos := s.World().Position(player)
		assert.InDelta(t, 100+10/1.4142135623730951, pos.X, 1e-9)
		assert.InDelta(t, 100+10/1.4142135623730951, pos.Y, 1e-9)
	})

	t.Run("blocked_by_wall", func(t *testing.T) {
		s, err := New(spec, nil)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			s.Step(cp.Vector{X: -1})
		}
		player, _ := s.Player()
		// wall_left covers x up to 8
		assert.Equal(t, cp.Vector{X: 8, Y: 100}, s.World().Position(player))
	})
}

func TestDefaultSpeed(t *testing.T) {
	spec := parseScene(t, `
name: t
player: hero
entities:
  - name: hero
    shape: {box: {width: 2, height: 2}}
`)
	s, err := New(spec, nil)
	require.NoError(t, err)
	s.Step(cp.Vector{X: 0, Y: 3})
	assert.Equal(t, cp.Vector{X: 0, Y: 10}, s.World().Position(0))
}

func TestTriggerEvents(t *testing.T) {
	logger, logs := observed()
	s, err := New(parseScene(t, corridor), logger)
	require.NoError(t, err)

	zone, _ := s.ID("zone")
	hero, _ := s.ID("hero")
	assert.Equal(t, []physics.EntityID{zone}, s.Triggers())

	var events []Event
	for i := 0; i < 12; i++ {
		s.Step(cp.Vector{X: 1})
		events = append(events, s.Events()...)
		if i == 9 {
			assert.Equal(t, []physics.EntityID{hero}, s.Occupants(zone))
		}
	}

	require.Len(t, events, 2)
	assert.Equal(t, Event{
		TriggerEvent: physics.TriggerEvent{Kind: physics.TriggerEnter, Trigger: zone, Entity: hero},
		Tick:         8,
		TriggerName:  "zone",
		EntityName:   "hero",
	}, events[0])
	assert.Equal(t, physics.TriggerExit, events[1].Kind)
	assert.Equal(t, 11, events[1].Tick)
	assert.Equal(t, "tick 11: hero exit zone", events[1].String())

	assert.Empty(t, s.Occupants(zone))
	assert.Nil(t, s.Events())
	assert.Equal(t, 2, logs.FilterMessage("trigger").Len())
	assert.Equal(t, 1, logs.FilterMessage("scene built").Len())
}

const botScene = `
name: bots
entities:
  - name: zone
    position: [5, 0]
    trigger: true
    shape: {box: {width: 4, height: 4}}
  - name: bot
    position: [0, 0]
    script: walker
    shape: {box: {width: 2, height: 2}}
`

func TestScriptedMover(t *testing.T) {
	s, err := New(parseScene(t, botScene), nil, scripts(map[string]string{
		"walker": `
update := func(engine, state) {
	if state.n == undefined {
		state.n = 0
	}
	state.n = state.n + 1
	state.tick = engine.tick()
	state.inside = len(engine.triggers())
	engine.move(2, 0)
}
`,
	}))
	require.NoError(t, err)

	bot, _ := s.ID("bot")
	zone, _ := s.ID("zone")
	for i := 0; i < 3; i++ {
		s.Step(cp.Vector{})
	}

	assert.Equal(t, cp.Vector{X: 6, Y: 0}, s.World().Position(bot))

	state := s.movers[0].rt.stateData.Value
	assert.Equal(t, int64(3), state["n"].(*tengo.Int).Value)
	assert.Equal(t, int64(2), state["tick"].(*tengo.Int).Value)
	// at x=4 the bot (3..5) overlaps the zone (3..7)
	assert.Equal(t, int64(1), state["inside"].(*tengo.Int).Value)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, physics.TriggerEnter, events[0].Kind)
	assert.Equal(t, zone, events[0].Trigger)
	assert.Equal(t, bot, events[0].Entity)
	assert.Equal(t, 1, events[0].Tick)
}

func TestScriptErrors(t *testing.T) {
	spec := parseScene(t, botScene)

	t.Run("missing_update", func(t *testing.T) {
		_, err := New(spec, nil, scripts(map[string]string{"walker": `x := 1`}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "walker")
	})

	t.Run("missing_script", func(t *testing.T) {
		_, err := New(spec, nil, scripts(map[string]string{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no script walker")
	})

	nonFinite := []struct {
		name string
		src  string
	}{
		{"inf_move", `update := func(engine, state) { engine.move(1.0 / float(engine.tick()), 0) }`},
		{"nan_move", `update := func(engine, state) {
	z := float(engine.tick())
	engine.move(0, z / z)
}`},
	}
	for _, c := range nonFinite {
		t.Run(c.name, func(t *testing.T) {
			logger, logs := observed()
			s, err := New(spec, logger, scripts(map[string]string{"walker": c.src}))
			require.NoError(t, err)

			require.NotPanics(t, func() {
				s.Step(cp.Vector{})
				s.Step(cp.Vector{})
			})

			bot, _ := s.ID("bot")
			assert.Equal(t, cp.Vector{}, s.World().Position(bot))
			assert.Equal(t, 1, logs.FilterMessage("script disabled").Len())
		})
	}

	t.Run("runtime_error_disables", func(t *testing.T) {
		logger, logs := observed()
		s, err := New(spec, logger, scripts(map[string]string{
			"walker": `update := func(engine, state) { engine.move(1) }`,
		}))
		require.NoError(t, err)

		s.Step(cp.Vector{})
		s.Step(cp.Vector{})

		bot, _ := s.ID("bot")
		assert.Equal(t, cp.Vector{}, s.World().Position(bot))
		assert.Equal(t, 1, logs.FilterMessage("script disabled").Len())
		assert.Equal(t, 2, s.Tick())
	})
}

func TestNonConvexColliderWarns(t *testing.T) {
	logger, logs := observed()
	_, err := New(parseScene(t, `
name: t
entities:
  - name: dent
    shape: {vertices: [[0, 0], [10, 0], [5, 2], [10, 10], [0, 10]]}
`), logger)
	require.NoError(t, err)

	warned := logs.FilterMessage("collider is not convex").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "dent", warned[0].ContextMap()["entity"])
}

func TestZonesScene(t *testing.T) {
	spec, err := scenes.LoadScene("zones")
	require.NoError(t, err)

	logger, logs := observed()
	s, err := New(spec, logger)
	require.NoError(t, err)

	var events []Event
	for i := 0; i < 120; i++ {
		s.Step(cp.Vector{})
		events = append(events, s.Events()...)
	}
	assert.Zero(t, logs.FilterMessage("script disabled").Len())

	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "tick 66: patrol enter gate", events[0].String())
	assert.Equal(t, "tick 83: patrol exit gate", events[1].String())

	player, _ := s.Player()
	assert.Equal(t, cp.Vector{X: 100, Y: 100}, s.World().Position(player))
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	_, err = New(&scenes.SceneSpec{Name: "bad", Speed: -1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")

	box := scenes.ShapeSpec{Box: &scenes.BoxSpec{Width: 32, Height: 32}}
	_, err = New(&scenes.SceneSpec{
		Name:     "nan",
		Player:   "hero",
		Entities: []scenes.EntitySpec{{Name: "hero", Position: scenes.Vec{X: math.NaN()}, Shape: box}},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not finite")

	_, err = New(&scenes.SceneSpec{
		Name:     "inf",
		Player:   "hero",
		Speed:    math.Inf(1),
		Entities: []scenes.EntitySpec{{Name: "hero", Shape: box}},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speed")
}

func TestIdlePlayerIsPushedOut(t *testing.T) {
	s, err := New(parseScene(t, `
name: t
player: hero
entities:
  - name: wall
    position: [0, 0]
    shape: {box: {width: 64, height: 64}}
  - name: hero
    position: [35, 0]
    shape: {box: {width: 20, height: 20}}
`), nil)
	require.NoError(t, err)

	s.Step(cp.Vector{})
	hero, _ := s.ID("hero")
	assert.Equal(t, cp.Vector{X: 42, Y: 0}, s.World().Position(hero))
}

func TestSnapshot(t *testing.T) {
	spec := parseScene(t, corridor)
	s, err := New(spec, nil)
	require.NoError(t, err)

	s.Step(cp.Vector{X: 1})
	snap := s.Snapshot()

	hero, ok := snap.Entity("hero")
	require.True(t, ok)
	assert.Equal(t, scenes.Vec{X: 10, Y: 0}, hero.Position)

	orig, _ := spec.Entity("hero")
	assert.Equal(t, scenes.Vec{}, orig.Position)

	data, err := snap.Marshal()
	require.NoError(t, err)
	again, err := scenes.Parse(data)
	require.NoError(t, err)
	moved, _ := again.Entity("hero")
	assert.Equal(t, scenes.Vec{X: 10, Y: 0}, moved.Position)
}
