package params

import (
	"os"
	"path/filepath"
)

// Store and logging defaults for the command line host.
const (
	DefaultBackend   = "leveldb"
	DefaultCache     = 16 // MiB of block cache
	DefaultHandles   = 16
	DefaultVerbosity = 3 // info
)

// DefaultDataDir is the default data directory to use for the databases.
func DefaultDataDir() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".gsigner")
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}
