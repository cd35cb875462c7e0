// Package config centralizes the environment-variable knobs nabang's
// Writer and Reader façades and CLI front-ends read at startup, following
// a DefaultConfig-plus-overrides shape.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/DavidKo3/nabang/internal/nabang/codec"
	"github.com/DavidKo3/nabang/internal/nabang/logging"
)

// Config holds every environment-derived setting nabang consults.
type Config struct {
	// LogPath is the backing file path for the circular log.
	LogPath string
	// ValidDir is the directory Await/Answer exchange response files in.
	ValidDir string
	// LogLevel is the ambient slog verbosity.
	LogLevel logging.Level
	// FileSize is the fixed size of the backing file, in bytes.
	FileSize int
}

// Default returns nabang's built-in defaults, before any environment
// overrides are applied.
func Default() Config {
	return Config{
		LogPath:  "nabang.blog",
		ValidDir: filepath.Join(os.TempDir(), "nabang-valid"),
		LogLevel: logging.LevelInfo,
		FileSize: codec.FileSize,
	}
}

// FromEnv starts from Default and overrides fields from NABANG_LOG_PATH,
// NABANG_VALID_DIR, NABANG_LOG_LEVEL and NABANG_FILE_SIZE when set. Unrecognized or malformed
// values are ignored in favor of the default, since a façade constructor
// has no good way to report a configuration error to its caller.
func FromEnv() Config {
	c := Default()
	if v := os.Getenv("NABANG_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("NABANG_VALID_DIR"); v != "" {
		c.ValidDir = v
	}
	if v := os.Getenv("NABANG_LOG_LEVEL"); v != "" {
		if lvl, ok := parseLevel(v); ok {
			c.LogLevel = lvl
		}
	}
	if v := os.Getenv("NABANG_FILE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.FileSize = n
		}
	}
	return c
}

func parseLevel(s string) (logging.Level, bool) {
	switch s {
	case "debug":
		return logging.LevelDebug, true
	case "info":
		return logging.LevelInfo, true
	case "warn":
		return logging.LevelWarn, true
	case "error":
		return logging.LevelError, true
	default:
		return 0, false
	}
}
