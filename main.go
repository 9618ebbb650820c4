package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/satworld/common"
	"github.com/milk9111/satworld/logging"
	"go.uber.org/zap"
)

func main() {
	sceneName := flag.String("scene", "room", "scene name in scenes/ (basename, .yaml optional)")
	debug := flag.Bool("debug", false, "start with the collider debug overlay")
	level := flag.String("log", "info", "log level (debug, info, warn, error)")
	dev := flag.Bool("dev", false, "human readable log output")
	watch := flag.Bool("watch", false, "reload the scene when files under scenes/ change")
	flag.Parse()

	logger, err := logging.New(*level, *dev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("satworld")

	game, err := NewGame(GameOptions{
		Scene:  *sceneName,
		Debug:  *debug,
		Watch:  *watch,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("load scene", zap.String("scene", *sceneName), zap.Error(err))
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("run", zap.Error(err))
	}
}
