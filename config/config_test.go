package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestDirHonoursXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not consulted on windows")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got, want := Dir(), filepath.Join("/tmp/xdg", "stardate"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestInitScripts(t *testing.T) {
	got := InitScripts("/cfg")
	if len(got) != 2 || filepath.Base(got[0]) != "init.lua" || filepath.Base(got[1]) != "init.js" {
		t.Errorf("unexpected init scripts %q", got)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.TickRate <= 0 {
		t.Errorf("tick rate must be positive, got %v", cfg.TickRate)
	}
	if cfg.Level != 1 {
		t.Errorf("expected 1x start, got level %d", cfg.Level)
	}
}
