// Package config loads server configuration from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
)

// Config holds everything the daemon needs at startup. Per-library
// settings live in the database; this covers only process-level knobs.
type Config struct {
	Port       int
	DataDir    string
	FFmpegPath string

	// RescanCron is the schedule for automatic full rescans. Empty
	// disables the scheduler.
	RescanCron string

	// WatchDebounce is how long, in seconds, the filesystem watcher
	// waits for a burst of changes to settle before rescanning.
	WatchDebounce int
}

// Load reads configuration from environment variables, applying
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Port:          cast.ToInt(getEnv("MEDIADB_PORT", "8085")),
		DataDir:       getEnv("MEDIADB_DATA_DIR", defaultDataDir()),
		FFmpegPath:    getEnv("MEDIADB_FFMPEG", "ffmpeg"),
		RescanCron:    getEnv("MEDIADB_RESCAN_CRON", ""),
		WatchDebounce: cast.ToInt(getEnv("MEDIADB_WATCH_DEBOUNCE", "5")),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mediadb"
	}
	return filepath.Join(home, ".mediadb")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
