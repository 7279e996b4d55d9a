// Command pocketchess-uci runs the engine behind a text protocol on stdin and
// stdout, for scripting and for debugging the move generator.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/profile"

	"github.com/hailam/pocketchess/internal/config"
	"github.com/hailam/pocketchess/internal/engine"
	"github.com/hailam/pocketchess/internal/uci"
)

func main() {
	log.SetPrefix("[pocketchess-uci] ")
	log.SetOutput(os.Stderr)

	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if cfg.CPUProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng := engine.NewEngine(cfg.HashMB)
	protocol := uci.New(eng, os.Stdin, os.Stdout)
	protocol.SetDebug(cfg.Debug)
	if err := protocol.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("input: %v", err)
	}
}
