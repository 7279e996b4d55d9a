// Package config reads process configuration from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrInvalidConfig wraps values that parse but cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// MaxTimerMinutes bounds the per-player clock.
const MaxTimerMinutes = 180

// Config holds application configuration.
type Config struct {
	// DataDir holds the badger database. Empty means the platform default.
	DataDir      string `env:"POCKETCHESS_DATA_DIR"`
	LanAddr      string `env:"POCKETCHESS_LAN_ADDR"      envDefault:":5555"`
	Debug        bool   `env:"POCKETCHESS_DEBUG"`
	TimerMinutes int    `env:"POCKETCHESS_TIMER_MINUTES" envDefault:"-1"`
	HashMB       int    `env:"POCKETCHESS_HASH_MB"       envDefault:"16"`
	CPUProfile   bool   `env:"POCKETCHESS_CPU_PROFILE"`
	ProfileDir   string `env:"POCKETCHESS_PROFILE_DIR"   envDefault:"."`
}

// ParseConfig parses environment and flags into a Config. Flags win.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for saved preferences and games")
	fs.StringVar(&cfg.LanAddr, "lan-addr", cfg.LanAddr, "address to listen on when hosting a LAN game")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log positions and destination sets on every move")
	fs.IntVar(&cfg.TimerMinutes, "timer", cfg.TimerMinutes, "minutes per player (0 = untimed, -1 = use saved preference)")
	fs.IntVar(&cfg.HashMB, "hash", cfg.HashMB, "transposition table size in MB")
	fs.BoolVar(&cfg.CPUProfile, "cpuprofile", cfg.CPUProfile, "write a CPU profile")
	fs.StringVar(&cfg.ProfileDir, "profile-dir", cfg.ProfileDir, "directory for profile output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges that env and flag parsing cannot.
func (c Config) Validate() error {
	if c.TimerMinutes < -1 || c.TimerMinutes > MaxTimerMinutes {
		return fmt.Errorf("%w: timer %d minutes out of range [-1, %d]", ErrInvalidConfig, c.TimerMinutes, MaxTimerMinutes)
	}
	if c.HashMB < 1 {
		return fmt.Errorf("%w: hash size %d MB", ErrInvalidConfig, c.HashMB)
	}
	if c.LanAddr == "" {
		return fmt.Errorf("%w: empty LAN address", ErrInvalidConfig)
	}
	return nil
}

// TimerOverride reports the timer minutes given on the command line or in
// the environment, if any.
func (c Config) TimerOverride() (int, bool) {
	return c.TimerMinutes, c.TimerMinutes >= 0
}
