// PocketChess - capture-the-king chess built with Ebitengine
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"

	"github.com/hailam/pocketchess/internal/config"
	"github.com/hailam/pocketchess/internal/storage"
	"github.com/hailam/pocketchess/internal/ui"
)

func main() {
	log.SetPrefix("[pocketchess] ")

	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if cfg.CPUProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook).Stop()
	}

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Printf("[STORAGE] running without saved data: %v", err)
		store = nil
	}

	game := ui.NewGame(cfg, store)

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("PocketChess")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	runErr := ebiten.RunGame(game)
	game.Close()
	if store != nil {
		if err := store.Close(); err != nil {
			log.Printf("[STORAGE] close: %v", err)
		}
	}
	if runErr != nil {
		log.Printf("run: %v", runErr)
	}
}
