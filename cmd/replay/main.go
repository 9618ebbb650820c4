package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/milk9111/satworld/logging"
	"github.com/milk9111/satworld/scenes"
	"github.com/milk9111/satworld/sim"
	"go.uber.org/zap"
)

func main() {
	sceneName := flag.String("scene", "zones", "scene name in scenes/ (basename, .yaml optional)")
	ticks := flag.Int("ticks", 600, "ticks to simulate per run")
	runs := flag.Int("runs", 4, "concurrent runs that must agree")
	input := flag.String("input", "square", "scripted player input: "+strings.Join(sim.PatternNames(), ", "))
	level := flag.String("log", "warn", "log level (debug, info, warn, error)")
	dev := flag.Bool("dev", false, "human readable log output")
	events := flag.Bool("events", false, "print trigger events of the first run")
	flag.Parse()

	logger, err := logging.New(*level, *dev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	in, err := sim.Pattern(*input)
	if err != nil {
		logger.Fatal("input", zap.Error(err))
	}

	spec, err := scenes.LoadScene(*sceneName)
	if err != nil {
		logger.Fatal("load scene", zap.String("scene", *sceneName), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trace, err := sim.VerifyDeterminism(ctx, spec, *ticks, *runs, in)
	if err != nil {
		if errors.Is(err, sim.ErrDiverged) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", spec.Name, err)
			os.Exit(2)
		}
		logger.Fatal("replay", zap.String("scene", spec.Name), zap.Error(err))
	}

	if *events {
		for _, evt := range trace.Events {
			fmt.Println(evt)
		}
	}
	fmt.Printf("%s: %d runs x %d ticks agree, fingerprint %016x, %d trigger events\n",
		spec.Name, *runs, *ticks, trace.Final(), len(trace.Events))
}
