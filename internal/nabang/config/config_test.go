package config

import (
	"os"
	"testing"

	"github.com/DavidKo3/nabang/internal/nabang/logging"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NABANG_LOG_PATH", "NABANG_VALID_DIR", "NABANG_LOG_LEVEL", "NABANG_FILE_SIZE"} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestFromEnvDefaultsWithoutOverrides(t *testing.T) {
	clearEnv(t)
	c := FromEnv()
	if c != Default() {
		t.Fatalf("FromEnv() = %+v, want Default() = %+v", c, Default())
	}
}

func TestFromEnvAppliesOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("NABANG_LOG_PATH", "/var/run/app.blog")
	os.Setenv("NABANG_VALID_DIR", "/var/run/valid")
	os.Setenv("NABANG_LOG_LEVEL", "debug")
	os.Setenv("NABANG_FILE_SIZE", "4096")

	c := FromEnv()
	if c.LogPath != "/var/run/app.blog" {
		t.Errorf("LogPath = %q", c.LogPath)
	}
	if c.ValidDir != "/var/run/valid" {
		t.Errorf("ValidDir = %q", c.ValidDir)
	}
	if c.LogLevel != logging.LevelDebug {
		t.Errorf("LogLevel = %v, want LevelDebug", c.LogLevel)
	}
	if c.FileSize != 4096 {
		t.Errorf("FileSize = %d, want 4096", c.FileSize)
	}
}

func TestFromEnvIgnoresMalformedLevel(t *testing.T) {
	clearEnv(t)
	os.Setenv("NABANG_LOG_LEVEL", "verbose")
	c := FromEnv()
	if c.LogLevel != Default().LogLevel {
		t.Fatalf("LogLevel = %v, want default %v", c.LogLevel, Default().LogLevel)
	}
}
