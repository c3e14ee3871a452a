package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/crashthatcar/feed"
	"github.com/milk9111/crashthatcar/logger"
	"github.com/milk9111/crashthatcar/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging and overlay")
	overrides := flag.String("overrides", "prefabs", "directory whose yaml and scripts override the embedded ones (empty disables)")
	watch := flag.Bool("watch", false, "hot reload tuning and camera scripts from the override directory")
	variant := flag.String("variant", "", "control scheme: classic or controls (overrides race.yaml)")
	feedAddr := flag.String("feed", "", "serve the spectator event feed on this address, e.g. :9003")
	mute := flag.Bool("mute", false, "disable sound cues")
	flag.Parse()

	log := logger.New("crashthatcar", *debug)
	defer func() { _ = log.Sync() }()

	prefabs.SetDiskDir(*overrides)
	tuning, err := prefabs.LoadTuning()
	if err != nil {
		log.Errorw("load tuning", "error", err)
		os.Exit(1)
	}
	if *variant != "" {
		tuning.Variant = prefabs.Variant(*variant)
		if err := tuning.Validate(); err != nil {
			log.Errorw("variant flag", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hub *feed.Hub
	if *feedAddr != "" {
		hub = feed.New(log.Named("feed"))
		go func() {
			if err := hub.ListenAndServe(ctx, *feedAddr); err != nil {
				log.Errorw("event feed stopped", "error", err)
			}
		}()
	}

	game, err := NewGame(GameOptions{
		Tuning: tuning,
		Log:    log,
		Hub:    hub,
		Watch:  *watch,
		Debug:  *debug,
		Mute:   *mute,
	})
	if err != nil {
		log.Errorw("start game", "error", err)
		os.Exit(1)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("Crash That Car")

	if err := ebiten.RunGame(game); err != nil {
		log.Errorw("run game", "error", err)
		os.Exit(1)
	}
}
