package sim

import (
	"fmt"
	"math"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/physics"
)

// scriptModules are the stdlib modules a mover may import. rand and times
// are left out so replays stay deterministic.
var scriptModules = []string{"math"}

const moverDispatchScript = `
update(__engine, __state)
`

type scriptRuntime struct {
	compiled  *tengo.Compiled
	stateData *tengo.Map
}

func (s *Sim) newScriptRuntime(name string) (*scriptRuntime, error) {
	src, err := s.loadScript(name)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + moverDispatchScript))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	return &scriptRuntime{
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (rt *scriptRuntime) update(s *Sim, id physics.EntityID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__engine", buildMoverEngine(s, id)); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildMoverEngine(s *Sim, id physics.EntityID) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		dx, ok := objectAsFloat(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "dx", Expected: "finite number", Found: args[0].TypeName()}
		}
		dy, ok := objectAsFloat(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "dy", Expected: "finite number", Found: args[1].TypeName()}
		}
		s.world.MoveBy(id, cp.Vector{X: dx, Y: dy})
		return positionObject(s.world.Position(id)), nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return positionObject(s.world.Position(id)), nil
	}}

	values["tick"] = &tengo.UserFunction{Name: "tick", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(s.tick)}, nil
	}}

	values["triggers"] = &tengo.UserFunction{Name: "triggers", Value: func(args ...tengo.Object) (tengo.Object, error) {
		ids := s.world.OverlappingTriggers(id)
		out := make([]tengo.Object, 0, len(ids))
		for _, t := range ids {
			out = append(out, &tengo.String{Value: s.Name(t)})
		}
		return &tengo.Array{Value: out}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func positionObject(p cp.Vector) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: p.X}, &tengo.Float{Value: p.Y}}}
}

// objectAsFloat accepts finite ints and floats.
func objectAsFloat(obj tengo.Object) (float64, bool) {
	var f float64
	switch v := obj.(type) {
	case *tengo.Float:
		f = v.Value
	case *tengo.Int:
		f = float64(v.Value)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
