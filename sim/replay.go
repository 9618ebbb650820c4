package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/satworld/scenes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrDiverged = errors.New("replays diverged")

// InputFunc returns the host input for a tick. It is called from several
// goroutines by VerifyDeterminism and must not keep state between calls.
type InputFunc func(tick int) cp.Vector

// Trace records one replay.
type Trace struct {
	RunID        string
	Initial      uint64
	Fingerprints []uint64
	Events       []Event
}

// Final returns the fingerprint after the last tick.
func (t Trace) Final() uint64 {
	if len(t.Fingerprints) == 0 {
		return t.Initial
	}
	return t.Fingerprints[len(t.Fingerprints)-1]
}

// Replay builds a fresh simulation from the scene and steps it ticks times,
// fingerprinting the world after every tick. Logging goes through zap.L().
func Replay(ctx context.Context, spec *scenes.SceneSpec, ticks int, input InputFunc) (Trace, error) {
	if ticks < 0 {
		return Trace{}, fmt.Errorf("sim: replay: negative tick count %d", ticks)
	}

	runID := uuid.NewString()
	logger := zap.L().With(zap.String("run_id", runID))

	s, err := New(spec, logger)
	if err != nil {
		return Trace{}, err
	}

	trace := Trace{
		RunID:        runID,
		Initial:      Fingerprint(s.World()),
		Fingerprints: make([]uint64, 0, ticks),
	}

	start := time.Now()
	for tick := 0; tick < ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return trace, fmt.Errorf("sim: replay %s tick %d: %w", runID, tick, err)
		}
		var in cp.Vector
		if input != nil {
			in = input(tick)
		}
		s.Step(in)
		trace.Fingerprints = append(trace.Fingerprints, Fingerprint(s.World()))
		trace.Events = append(trace.Events, s.Events()...)
	}

	logger.Debug("replay finished",
		zap.Int("ticks", ticks),
		zap.Int("events", len(trace.Events)),
		zap.Uint64("fingerprint", trace.Final()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return trace, nil
}

// VerifyDeterminism replays the scene runs times concurrently, each run owning
// its own World, and fails if any run differs from the first on any tick.
func VerifyDeterminism(ctx context.Context, spec *scenes.SceneSpec, ticks, runs int, input InputFunc) (Trace, error) {
	if runs < 1 {
		return Trace{}, fmt.Errorf("sim: verify: need at least one run, got %d", runs)
	}

	traces := make([]Trace, runs)
	g, gctx := errgroup.WithContext(ctx)
	for i := range traces {
		i := i
		g.Go(func() error {
			t, err := Replay(gctx, spec, ticks, input)
			if err != nil {
				return err
			}
			traces[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Trace{}, err
	}

	want := traces[0]
	for i, got := range traces[1:] {
		if tick, equal := compareTraces(want, got); !equal {
			return want, fmt.Errorf("sim: verify: run %d (%s) differs from run 0 (%s) at tick %d: %w",
				i+1, got.RunID, want.RunID, tick, ErrDiverged)
		}
	}
	return want, nil
}

// compareTraces reports whether a and b match and, if not, the first tick at
// which they differ. Tick -1 stands for the initial state.
func compareTraces(a, b Trace) (int, bool) {
	if a.Initial != b.Initial {
		return -1, false
	}
	n := min(len(a.Fingerprints), len(b.Fingerprints))
	for i := 0; i < n; i++ {
		if a.Fingerprints[i] != b.Fingerprints[i] {
			return i, false
		}
	}
	if len(a.Fingerprints) != len(b.Fingerprints) {
		return n, false
	}
	if len(a.Events) != len(b.Events) {
		return len(a.Fingerprints), false
	}
	for i := range a.Events {
		if a.Events[i] != b.Events[i] {
			return a.Events[i].Tick, false
		}
	}
	return 0, true
}
