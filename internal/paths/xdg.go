package paths

import (
	"os"
	"path/filepath"
)

const appName = "omnidim"

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

// ConfigDir returns the CLI config directory ($XDG_CONFIG_HOME/omnidim).
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(homeDir(), ".config", appName)
}

// ConfigFile returns the path to config.toml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// EnvFile returns the .env path consulted in the working directory.
func EnvFile() string {
	return ".env"
}
