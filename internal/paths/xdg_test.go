package paths

import (
	"path/filepath"
	"testing"
)

func TestConfigFileUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := ConfigFile(), filepath.Join("/tmp/xdg", "omnidim", "config.toml"); got != want {
		t.Fatalf("ConfigFile() = %q, want %q", got, want)
	}
}

func TestConfigDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/ada")
	if got, want := ConfigDir(), filepath.Join("/home/ada", ".config", "omnidim"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}
