package sim

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
)

var patterns = map[string]InputFunc{
	"idle": func(int) cp.Vector { return cp.Vector{} },
	"right": func(int) cp.Vector {
		return cp.Vector{X: 1}
	},
	// walks a lopsided loop, switching direction every 25 ticks
	"square": func(tick int) cp.Vector {
		switch (tick / 25) % 4 {
		case 0:
			return cp.Vector{X: 1}
		case 1:
			return cp.Vector{Y: 1}
		case 2:
			return cp.Vector{X: -1, Y: -0.5}
		default:
			return cp.Vector{X: 0.3, Y: -1}
		}
	},
	"zigzag": func(tick int) cp.Vector {
		if (tick/10)%2 == 0 {
			return cp.Vector{X: 1, Y: 1}
		}
		return cp.Vector{X: 1, Y: -1}
	},
}

// Pattern returns a named scripted input for headless replays.
func Pattern(name string) (InputFunc, error) {
	in, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("sim: unknown input pattern %q (have %v)", name, PatternNames())
	}
	return in, nil
}

func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
