package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "tday"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tday.db"
	DefaultBusyTimeoutMS  = 1000
	DefaultLogLevel       = "error"
)

type Config struct {
	// DBPath is resolved against the config file's directory when relative.
	DBPath        string `toml:"db_path"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
	LogFile       string `toml:"log_file,omitempty"`
	LogLevel      string `toml:"log_level"`
}

func (c Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// ResolveConfigPath returns <user config dir>/tday/config.toml, falling back to
// the working directory when the user config dir is unknown.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.BusyTimeoutMS <= 0 {
		cfg.BusyTimeoutMS = DefaultBusyTimeoutMS
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg.resolve(path), nil
}

func (c Config) resolve(configPath string) Config {
	base := filepath.Dir(configPath)
	if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(base, c.DBPath)
	}
	if c.LogFile != "" && !filepath.IsAbs(c.LogFile) {
		c.LogFile = filepath.Join(base, c.LogFile)
	}
	return c
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBName,
		BusyTimeoutMS: DefaultBusyTimeoutMS,
		LogLevel:      DefaultLogLevel,
	}
}
