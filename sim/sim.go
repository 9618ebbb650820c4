package sim

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/common"
	"github.com/milk9111/satworld/physics"
	"github.com/milk9111/satworld/scenes"
	"go.uber.org/zap"
)

// Event is a trigger edge stamped with the tick that produced it.
type Event struct {
	physics.TriggerEvent
	Tick        int
	TriggerName string
	EntityName  string
}

func (e Event) String() string {
	return fmt.Sprintf("tick %d: %s %s %s", e.Tick, e.EntityName, e.Kind, e.TriggerName)
}

// ScriptLoader returns the source of a mover script by name.
type ScriptLoader func(name string) ([]byte, error)

type Option func(*Sim)

// WithScriptLoader replaces scenes.LoadScript as the source of mover scripts.
func WithScriptLoader(load ScriptLoader) Option {
	return func(s *Sim) {
		if load != nil {
			s.loadScript = load
		}
	}
}

type mover struct {
	id     physics.EntityID
	script string
	rt     *scriptRuntime
}

// Sim drives one World built from a scene: host input for the player,
// scripted movers and per-tick trigger bookkeeping.
type Sim struct {
	spec    *scenes.SceneSpec
	world   *physics.World
	tracker *physics.Tracker
	queue   physics.EventQueue
	pending []Event
	logger  *zap.Logger

	loadScript ScriptLoader

	names     []string
	ids       map[string]physics.EntityID
	triggers  []physics.EntityID
	player    physics.EntityID
	hasPlayer bool
	speed     float64
	movers    []*mover
	tracked   []physics.EntityID
	tick      int
}

// New builds a simulation from spec. Entities are created in scene order so
// their ids match their index in spec.Entities.
func New(spec *scenes.SceneSpec, logger *zap.Logger, opts ...Option) (*Sim, error) {
	if spec == nil {
		return nil, fmt.Errorf("sim: new: nil scene")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("sim: new %s: %w", spec.Name, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scene", spec.Name))

	s := &Sim{
		spec:       spec,
		world:      physics.NewWorld(physics.WithLogger(logger)),
		tracker:    physics.NewTracker(),
		logger:     logger,
		loadScript: scenes.LoadScript,
		ids:        make(map[string]physics.EntityID, len(spec.Entities)),
		speed:      spec.Speed,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.speed == 0 {
		s.speed = common.DefaultMoveSpeed
	}

	for _, e := range spec.Entities {
		poly, err := e.Collider()
		if err != nil {
			return nil, fmt.Errorf("sim: entity %q: %w", e.Name, err)
		}
		if !poly.Convex() {
			logger.Warn("collider is not convex", zap.String("entity", e.Name))
		}

		id := s.world.NewEntity(e.Position.Vector(), poly)
		s.names = append(s.names, e.Name)
		s.ids[e.Name] = id

		if e.Trigger {
			s.triggers = append(s.triggers, id)
			s.tracker.Register(id, physics.NewZone(id, s.queue.Push))
		}
		if e.Name == spec.Player {
			s.player = id
			s.hasPlayer = true
			s.tracked = append(s.tracked, id)
		}
		if e.Script != "" {
			rt, err := s.newScriptRuntime(e.Script)
			if err != nil {
				return nil, fmt.Errorf("sim: entity %q script %s: %w", e.Name, e.Script, err)
			}
			s.movers = append(s.movers, &mover{id: id, script: e.Script, rt: rt})
			if e.Name != spec.Player {
				s.tracked = append(s.tracked, id)
			}
		}
	}

	logger.Info("scene built",
		zap.Int("entities", s.world.Len()),
		zap.Int("triggers", len(s.triggers)),
		zap.Int("movers", len(s.movers)),
	)
	return s, nil
}

// Step advances one tick: the player moves by the normalized input times the
// scene speed, each scripted mover runs in entity order, then trigger
// overlap is re-evaluated for the player and every mover.
func (s *Sim) Step(input cp.Vector) {
	if s == nil {
		return
	}

	// an idle player still resolves, so it gets pushed out of anything that
	// moved into it
	if s.hasPlayer {
		s.world.MoveBy(s.player, common.NormalizeOrZero(input).Mult(s.speed))
	}

	for _, m := range s.movers {
		if m.rt == nil {
			continue
		}
		if err := m.rt.update(s, m.id); err != nil {
			s.logger.Warn("script disabled",
				zap.String("entity", s.Name(m.id)),
				zap.String("script", m.script),
				zap.Int("tick", s.tick),
				zap.Error(err),
			)
			m.rt = nil
		}
	}

	s.tracker.Update(s.world, s.tracked...)
	for _, evt := range s.queue.Drain() {
		e := Event{
			TriggerEvent: evt,
			Tick:         s.tick,
			TriggerName:  s.Name(evt.Trigger),
			EntityName:   s.Name(evt.Entity),
		}
		s.logger.Debug("trigger",
			zap.String("kind", string(evt.Kind)),
			zap.String("trigger", e.TriggerName),
			zap.String("entity", e.EntityName),
			zap.Int("tick", s.tick),
		)
		s.pending = append(s.pending, e)
	}

	s.tick++
}

// Events returns the trigger events produced since the last call.
func (s *Sim) Events() []Event {
	if s == nil || len(s.pending) == 0 {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}

func (s *Sim) World() *physics.World {
	return s.world
}

func (s *Sim) Scene() *scenes.SceneSpec {
	return s.spec
}

// Player returns the id of the input-driven entity, if the scene names one.
func (s *Sim) Player() (physics.EntityID, bool) {
	return s.player, s.hasPlayer
}

func (s *Sim) ID(name string) (physics.EntityID, bool) {
	id, ok := s.ids[name]
	return id, ok
}

func (s *Sim) Name(id physics.EntityID) string {
	if id < 0 || int(id) >= len(s.names) {
		return fmt.Sprintf("#%d", id)
	}
	return s.names[id]
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int {
	return s.tick
}

// Triggers returns every trigger id in scene order.
func (s *Sim) Triggers() []physics.EntityID {
	out := make([]physics.EntityID, len(s.triggers))
	copy(out, s.triggers)
	return out
}

// Occupants returns the tracked entities currently inside trigger id.
func (s *Sim) Occupants(id physics.EntityID) []physics.EntityID {
	trig, ok := s.tracker.Trigger(id)
	if !ok {
		return nil
	}
	return trig.Overlapping()
}

// Snapshot returns a copy of the scene with every entity moved to its
// current position.
func (s *Sim) Snapshot() *scenes.SceneSpec {
	out := *s.spec
	out.Entities = make([]scenes.EntitySpec, len(s.spec.Entities))
	copy(out.Entities, s.spec.Entities)
	for i := range out.Entities {
		out.Entities[i].Position = scenes.VecOf(s.world.Position(physics.EntityID(i)))
	}
	return &out
}
