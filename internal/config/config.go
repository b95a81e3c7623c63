// Package config loads diskcache CLI configuration from JSONC files and
// command-line overrides.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// Config holds all configuration options.
type Config struct {
	// From config files
	CachePath  string
	CleanEvery time.Duration

	// Resolved paths (computed)
	EffectiveCwd string // Absolute working directory (from -C flag or os.Getwd)
	CachePathAbs string // Absolute path to the cache root

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// fileConfig is the on-disk shape. Pointer fields tell "absent" from
// "explicitly set".
type fileConfig struct {
	CachePath  *string          `json:"cache_path"`
	CleanEvery *json.RawMessage `json:"clean_every"`
}

// ConfigFileName is the project config file name.
const ConfigFileName = ".diskcache.json"

// DefaultCachePath is the cache root used when no config sets one,
// relative to the working directory.
const DefaultCachePath = ".diskcache"

// Default returns the default configuration.
func Default() Config {
	return Config{
		CachePath:  DefaultCachePath,
		CleanEvery: diskcache.DefaultCleanEvery,
	}
}

// globalConfigPath returns $XDG_CONFIG_HOME/diskcache/config.json if set,
// otherwise ~/.config/diskcache/config.json. Empty if neither is known.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "diskcache", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "diskcache", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride    string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath         string            // -c/--config flag value
	CachePathOverride  string            // --cache-path flag value; empty means no override
	CleanEveryOverride *time.Duration    // --clean-every flag value; nil means no override
	Env                map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/diskcache/config.json or $XDG_CONFIG_HOME/diskcache/config.json)
// 3. Project config file (.diskcache.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty, replaces 3)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	globalPath := globalConfigPath(input.Env)
	if globalPath != "" {
		loaded, err := loadFile(globalPath, false, &cfg)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
		}
	}

	projectPath, mustExist := filepath.Join(workDir, ConfigFileName), false

	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		_, statErr := os.Stat(projectPath)
		if statErr != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}
	}

	loaded, err := loadFile(projectPath, mustExist, &cfg)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	if input.CachePathOverride != "" {
		cfg.CachePath = input.CachePathOverride
	}

	if input.CleanEveryOverride != nil {
		if *input.CleanEveryOverride < 0 {
			return Config{}, fmt.Errorf("%w: %v", ErrCleanEveryInvalid, *input.CleanEveryOverride)
		}

		cfg.CleanEvery = *input.CleanEveryOverride
	}

	if cfg.CachePath == "" {
		return Config{}, ErrCachePathEmpty
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.CachePath) {
		cfg.CachePathAbs = filepath.Clean(cfg.CachePath)
	} else {
		cfg.CachePathAbs = filepath.Join(workDir, cfg.CachePath)
	}

	return cfg, nil
}

// Options converts cfg to store options. logger may be nil.
func (c Config) Options(logger *slog.Logger) diskcache.Options {
	return diskcache.Options{
		CachePath:  c.CachePathAbs,
		CleanEvery: c.CleanEvery,
		Logger:     logger,
	}
}

// loadFile merges the config file at path into cfg. A missing file is
// skipped unless mustExist. Reports whether the file was loaded.
func loadFile(path string, mustExist bool, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
		}

		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	fc, err := parse(data)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	err = merge(cfg, fc)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return true, nil
}

func parse(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var fc fileConfig

	err = dec.Decode(&fc)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return fc, nil
}

func merge(cfg *Config, fc fileConfig) error {
	if fc.CachePath != nil {
		if *fc.CachePath == "" {
			return ErrCachePathEmpty
		}

		cfg.CachePath = *fc.CachePath
	}

	if fc.CleanEvery != nil {
		every, err := parseCleanEvery(*fc.CleanEvery)
		if err != nil {
			return err
		}

		cfg.CleanEvery = every
	}

	return nil
}

// parseCleanEvery accepts a JSON integer of milliseconds, zero or more.
func parseCleanEvery(raw json.RawMessage) (time.Duration, error) {
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%w: %s", ErrCleanEveryInvalid, raw)
	}

	if ms > int64(time.Duration(1<<63-1)/time.Millisecond) {
		return 0, fmt.Errorf("%w: %s overflows", ErrCleanEveryInvalid, raw)
	}

	return time.Duration(ms) * time.Millisecond, nil
}

// Format renders cfg as key=value lines for print-config.
func Format(cfg Config) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "effective_cwd=%s\n", cfg.EffectiveCwd)
	fmt.Fprintf(&buf, "cache_path=%s\n", cfg.CachePathAbs)
	fmt.Fprintf(&buf, "clean_every=%d\n", cfg.CleanEvery.Milliseconds())

	return buf.String()
}
