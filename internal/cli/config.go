package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	log "github.com/go-pkgz/lgr"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/internal/diag"
	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/store"
	"github.com/mesh-intelligence/larder/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend = "backend"
	cfgKeyDataDir = "data_dir"
	cfgKeyScope   = "scope"
	cfgKeyQuota   = "quota"
	cfgKeyLogFile = "log_file"

	defaultBackend = types.BackendJSONL
	defaultQuota   = "5MiB"

	// logMaxSizeMB rotates the diagnostic log.
	logMaxSizeMB = 10
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir,omitempty"`
	Scope   string `yaml:"scope,omitempty"`
	Quota   string `yaml:"quota"`
	LogFile string `yaml:"log_file,omitempty"`
}

// settings is the fully resolved configuration of one invocation.
type settings struct {
	configDir string
	store     types.Config
	logFile   string
}

// loadConfig reads config.yaml from configDir using Viper.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyQuota, defaultQuota)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolveSettings merges flags, config.yaml, environment and defaults.
func resolveSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	quota, err := parseQuota(v.GetString(cfgKeyQuota))
	if err != nil {
		return settings{}, err
	}
	logFile, err := paths.ResolveLogFile(v.GetString(cfgKeyLogFile), dataDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve log file: %w", err)
	}

	cfg := types.Config{
		Backend: firstNonEmpty(flags.backend, v.GetString(cfgKeyBackend)),
		DataDir: dataDir,
		Scope:   firstNonEmpty(flags.scope, v.GetString(cfgKeyScope)),
		Quota:   quota,
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return settings{configDir: configDir, store: cfg, logFile: logFile}, nil
}

// parseQuota accepts human sizes such as "5MiB", "512kB" or "0" (unlimited).
func parseQuota(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quota %q: %w", s, err)
	}
	return int64(n), nil
}

// openLarder resolves settings and opens the configured store. Failures are
// reported to the rotating diagnostic log, and also to stderr with --debug.
// The returned cleanup closes both the store and the log.
func openLarder(errOut io.Writer) (*larder.Larder, settings, func(), error) {
	st, err := resolveSettings()
	if err != nil {
		return nil, st, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(st.logFile), 0o755); err != nil {
		return nil, st, nil, fmt.Errorf("create log dir: %w", err)
	}

	fileLog, logCloser := diag.NewFileLogger(st.logFile, logMaxSizeMB)
	sinks := diag.Multi{diag.NewLogger(fileLog)}
	if flags.debug {
		sinks = append(sinks, diag.NewLogger(log.New(log.Out(errOut), log.Err(io.Discard), log.Msec)))
	}

	l, err := larder.Open(st.store, store.WithDiagnostics(sinks))
	if err != nil {
		logCloser.Close()
		return nil, st, nil, fmt.Errorf("open %s store: %w", st.store.Backend, err)
	}
	log.Printf("[DEBUG] opened %s store in %s, scope %s", st.store.Backend, st.store.DataDir, st.store.GetScope())

	cleanup := func() {
		if err := l.Close(); err != nil {
			log.Printf("[WARN] close store: %v", err)
		}
		logCloser.Close()
	}
	return l, st, cleanup, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# larder configuration\n")
	return true, os.WriteFile(path, append(header, data...), 0o644)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
