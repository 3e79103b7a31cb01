// Package paths resolves the configuration and data directories used by
// the larder CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under platform locations.
const AppName = "larder"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "LARDER_CONFIG_DIR"
	EnvDataDir   = "LARDER_DATA_DIR"
)

// DiagnosticsFileName is the default diagnostic log inside the data dir.
const DiagnosticsFileName = "diagnostics.log"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $env/larder, falling back to ~/<fallback...>/larder.
func xdgDir(env string, fallback ...string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/larder (fallback ~/.config/larder)
// macOS:   ~/Library/Application Support/larder
// Windows: %APPDATA%/larder
func DefaultConfigDir() (string, error) {
	if platformDir.goos == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/larder (fallback ~/.local/share/larder)
// macOS:   ~/Library/Application Support/larder/data
// Windows: %APPDATA%/larder/data
func DefaultDataDir() (string, error) {
	if platformDir.goos == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "data"), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > LARDER_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > LARDER_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultDataDir()
}

// ResolveLogFile returns the diagnostic log path: the configured value made
// absolute, or diagnostics.log inside dataDir.
func ResolveLogFile(configValue, dataDir string) (string, error) {
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	return filepath.Join(dataDir, DiagnosticsFileName), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
