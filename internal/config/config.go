// Package config loads the unitsctl configuration file and the small state
// file that remembers the operator's last selections.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvServer overrides the configured backend address.
const EnvServer = "UNITSCTL_SERVER"

const (
	DefaultServer     = "127.0.0.1:8080"
	DefaultListen     = "127.0.0.1:8090"
	DefaultTimeout    = 10 * time.Second
	DefaultPalette    = "default"
	DefaultUnitDomain = "myunits"
)

// ErrUnknownKey is returned by Set for keys the file does not define.
var ErrUnknownKey = errors.New("config: unknown key")

// Config is the on-disk configuration.
type Config struct {
	Server     string        `yaml:"server"`
	Timeout    time.Duration `yaml:"timeout"`
	Palette    string        `yaml:"palette"`
	Listen     string        `yaml:"listen"`
	UnitDomain string        `yaml:"unit_domain"`
	LogLevel   int8          `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:     DefaultServer,
		Timeout:    DefaultTimeout,
		Palette:    DefaultPalette,
		Listen:     DefaultListen,
		UnitDomain: DefaultUnitDomain,
	}
}

// Dir returns the directory holding config.yaml and state.yaml.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "unitsctl"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path over the defaults. A missing file is not an error. The
// UNITSCTL_SERVER environment variable wins over the file.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if server := strings.TrimSpace(os.Getenv(EnvServer)); server != "" {
		cfg.Server = server
	}
	return cfg, nil
}

// LoadFile is Load without the environment override, for rewriting the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Server == "" {
		c.Server = d.Server
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Palette == "" {
		c.Palette = d.Palette
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.UnitDomain == "" {
		c.UnitDomain = d.UnitDomain
	}
}

// Set assigns a single key from its string form, as used by
// `unitsctl config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server":
		c.Server = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	case "palette":
		c.Palette = value
	case "listen":
		c.Listen = value
	case "unit_domain":
		c.UnitDomain = value
	case "log_level":
		var lvl int8
		if _, err := fmt.Sscan(value, &lvl); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
		c.LogLevel = lvl
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Save writes c to path, creating parent directories.
func Save(path string, c Config) error {
	return writeYAML(path, c)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
