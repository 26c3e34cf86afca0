// Package config loads daylex configuration. Precedence, highest first:
// command-line flags, DAYLEX_* environment variables, the YAML config
// file, hardcoded defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds everything the CLI needs to assemble the engine.
type Config struct {
	// DBPath is the sqlite file backing the resilient store.
	DBPath string `koanf:"db_path" validate:"required"`

	// ListenAddr is where `daylex serve` binds its JSON API.
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`

	// BackupRepo is the local git repository that `daylex backup`
	// commits snapshots into.
	BackupRepo string `koanf:"backup_repo" validate:"required"`
}

var validate = validator.New()

// DefaultConfigPath returns ~/.config/daylex/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "daylex", "config.yaml"), nil
}

// Load builds the configuration from file, environment and the given
// flag set (which may be nil). configPath may be empty, in which case
// the default path is used; a missing file is not an error.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DAYLEX_DB_PATH -> db_path, DAYLEX_LISTEN_ADDR -> listen_addr, ...
	if err := k.Load(env.Provider("DAYLEX_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DAYLEX_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in anything still unset after all providers.
func applyDefaults(cfg *Config) {
	dataDir := defaultDataDir()
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, "daylex.db")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8787"
	}
	if cfg.BackupRepo == "" {
		cfg.BackupRepo = filepath.Join(dataDir, "backups")
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "daylex")
}
