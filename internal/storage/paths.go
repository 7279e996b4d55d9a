// Package storage persists preferences, statistics and the suspended game.
package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "pocketchess"

// baseDir is where per-user application data lives: the user config
// directory on macOS and Windows, $XDG_DATA_HOME (or ~/.local/share)
// elsewhere.
func baseDir() (string, error) {
	switch runtime.GOOS {
	case "darwin", "windows":
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// GetDataDir returns the application's data directory, creating it.
func GetDataDir() (string, error) {
	base, err := baseDir()
	if err != nil {
		return "", fmt.Errorf("locate data directory: %w", err)
	}
	return mkdir(filepath.Join(base, appName))
}

// DatabaseDir returns the badger directory under dataDir, creating it.
// An empty dataDir means GetDataDir.
func DatabaseDir(dataDir string) (string, error) {
	if dataDir == "" {
		var err error
		if dataDir, err = GetDataDir(); err != nil {
			return "", err
		}
	}
	dbDir, err := mkdir(filepath.Join(dataDir, "db"))
	if err != nil {
		return "", err
	}
	log.Printf("[STORAGE] database directory: %s", dbDir)
	return dbDir, nil
}

func mkdir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
