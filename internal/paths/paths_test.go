package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withPlatform overrides platform detection for the duration of a test.
func withPlatform(t *testing.T, goos, home, configDir string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })

	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return configDir, nil }
}

func TestDefaultConfigDir(t *testing.T) {
	t.Run("linux uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ana", "")
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/larder", got)
	})

	t.Run("linux falls back to ~/.config", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ana", "")
		t.Setenv("XDG_CONFIG_HOME", "")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/ana/.config/larder", got)
	})

	t.Run("darwin uses user config dir", func(t *testing.T) {
		withPlatform(t, "darwin", "/Users/ana", "/Users/ana/Library/Application Support")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/Users/ana/Library/Application Support/larder", got)
	})

	t.Run("home lookup failure", func(t *testing.T) {
		withPlatform(t, "linux", "", "")
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
		t.Setenv("XDG_CONFIG_HOME", "")
		_, err := DefaultConfigDir()
		assert.Error(t, err)
	})
}

func TestDefaultDataDir(t *testing.T) {
	t.Run("linux uses XDG_DATA_HOME when set", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ana", "")
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/larder", got)
	})

	t.Run("linux falls back to ~/.local/share", func(t *testing.T) {
		withPlatform(t, "linux", "/home/ana", "")
		t.Setenv("XDG_DATA_HOME", "")
		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/ana/.local/share/larder", got)
	})

	t.Run("windows keeps data under the config dir", func(t *testing.T) {
		withPlatform(t, "windows", `C:\Users\ana`, "/appdata")
		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/appdata", "larder", "data"), got)
	})
}

func TestResolveConfigDir(t *testing.T) {
	withPlatform(t, "linux", "/home/ana", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", want: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", want: "/env/config"},
		{name: "platform default when both empty", want: "/home/ana/.config/larder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	withPlatform(t, "linux", "/home/ana", "")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string
	}{
		{name: "flag wins over all", flag: "/flag/data", configValue: "/config/data", envVal: "/env/data", want: "/flag/data"},
		{name: "config.yaml wins over env", configValue: "/config/data", envVal: "/env/data", want: "/config/data"},
		{name: "env wins when flag and config empty", envVal: "/env/data", want: "/env/data"},
		{name: "platform default when all empty", want: "/home/ana/.local/share/larder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RelativePathsBecomeAbsolute(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	t.Run("config flag", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		got, err := ResolveConfigDir("relative/path")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "relative/path"), got)
	})

	t.Run("config env", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "relative/env")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})

	t.Run("data config value", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		got, err := ResolveDataDir("", "relative/config")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "relative/config"), got)
	})
}

func TestResolveLogFile(t *testing.T) {
	got, err := ResolveLogFile("", "/data")
	require.NoError(t, err)
	assert.Equal(t, "/data/diagnostics.log", got)

	got, err = ResolveLogFile("/var/log/larder.log", "/data")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/larder.log", got)
}
