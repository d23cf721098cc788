package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "docchat"

// Paths holds the per-user locations docchat reads and writes
type Paths struct {
	ConfigDir string // holds config.yaml
	DataDir   string // holds the sqlite store and log files
}

// DetectPaths resolves Paths for the current OS, honouring XDG overrides
func DetectPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var configDir, dataDir string
	switch runtime.GOOS {
	case "darwin":
		base := filepath.Join(home, "Library/Application Support", appName)
		configDir, dataDir = base, base
	case "linux", "freebsd", "openbsd":
		configDir = xdgDir("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
		dataDir = xdgDir("XDG_DATA_HOME", filepath.Join(home, ".local/share"))
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		configDir, dataDir = filepath.Join(base, appName), filepath.Join(base, appName)
	default:
		return Paths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return Paths{ConfigDir: configDir, DataDir: dataDir}, nil
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" && filepath.IsAbs(dir) {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(fallback, appName)
}

// ConfigFile returns the default config file path
func (p Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabasePath returns the default sqlite store path
func (p Paths) DatabasePath() string {
	return filepath.Join(p.DataDir, appName+".db")
}

// ConfigExists reports whether the default config file exists
func (p Paths) ConfigExists() bool {
	_, err := os.Stat(p.ConfigFile())
	return err == nil
}
