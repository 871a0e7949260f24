package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds the host settings. Zero values are replaced by Defaults.
type Config struct {
	Dir       string        // Script directory holding init.lua / init.js
	TickRate  time.Duration // Real time between simulation steps
	StartTime float64       // Game time at boot, in seconds since the epoch
	Level     int           // Initial time acceleration level
	Scripts   []string      // Scripts named on the command line
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Dir:      Dir(),
		TickRate: 50 * time.Millisecond,
		Level:    1,
	}
}

// Dir returns the stardate configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "stardate")
}

// InitScripts returns the init script paths in dir, Lua first.
// The files need not exist.
func InitScripts(dir string) []string {
	return []string{
		filepath.Join(dir, "init.lua"),
		filepath.Join(dir, "init.js"),
	}
}
