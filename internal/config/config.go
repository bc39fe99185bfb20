// Package config resolves odflow client settings from defaults, a YAML file,
// a .env file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL    = "https://od-automation.onrender.com"
	DefaultPollInterval = 20 * time.Second
	DefaultTimeout      = 30 * time.Second

	dirName = ".odflow"
)

// ClientConfig holds configuration for the odflow client.
type ClientConfig struct {
	ServerURL    string        // Backend base URL, without trailing slash
	DBPath       string        // SQLite session database (default ~/.odflow/session.db)
	PollInterval time.Duration // List view refresh interval
	Timeout      time.Duration // Per-request HTTP timeout
	LogLevel     string        // debug, info, warn, error
	LogFormat    string        // text, json
}

// DefaultClientConfig returns the settings used when nothing overrides them.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:    DefaultServerURL,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// fileConfig mirrors config.yaml. Durations are strings ("20s") so the file
// stays readable.
type fileConfig struct {
	Server       string `yaml:"server"`
	DB           string `yaml:"db"`
	PollInterval string `yaml:"poll_interval"`
	Timeout      string `yaml:"timeout"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

// Dir returns ~/.odflow.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// DefaultConfigPath returns ~/.odflow/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultDBPath returns ~/.odflow/session.db.
func DefaultDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

// Load resolves the configuration using path (empty for the default
// location), ./.env and the process environment.
func Load(path string) (ClientConfig, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err == nil {
			path = p
		}
	}
	return LoadFrom(path, ".env", os.Getenv)
}

// LoadFrom is Load with explicit sources. Missing files are skipped; a
// present but malformed file is an error. Invalid values are reported
// together.
func LoadFrom(path, envFile string, getenv func(string) string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	var invalid []string

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return ClientConfig{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return ClientConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			invalid = append(invalid, apply(&cfg, map[string]string{
				"server":        fc.Server,
				"db":            fc.DB,
				"poll_interval": fc.PollInterval,
				"timeout":       fc.Timeout,
				"log_level":     fc.LogLevel,
				"log_format":    fc.LogFormat,
			})...)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return ClientConfig{}, fmt.Errorf("read %s: %w", envFile, err)
		default:
			dotenv = m
		}
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[key])
	}
	invalid = append(invalid, apply(&cfg, map[string]string{
		"server":        lookup("ODFLOW_SERVER"),
		"db":            lookup("ODFLOW_DB"),
		"poll_interval": lookup("ODFLOW_POLL_INTERVAL"),
		"timeout":       lookup("ODFLOW_TIMEOUT"),
		"log_level":     lookup("ODFLOW_LOG_LEVEL"),
		"log_format":    lookup("ODFLOW_LOG_FORMAT"),
	})...)

	if len(invalid) > 0 {
		return ClientConfig{}, fmt.Errorf("invalid config values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// apply overlays non-empty values onto cfg and returns the keys that failed
// to parse.
func apply(cfg *ClientConfig, values map[string]string) []string {
	var invalid []string
	if v := values["server"]; v != "" {
		cfg.ServerURL = strings.TrimRight(v, "/")
	}
	if v := values["db"]; v != "" {
		cfg.DBPath = v
	}
	if v := values["poll_interval"]; v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		} else {
			invalid = append(invalid, "poll_interval")
		}
	}
	if v := values["timeout"]; v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			invalid = append(invalid, "timeout")
		}
	}
	if v := values["log_level"]; v != "" {
		cfg.LogLevel = v
	}
	if v := values["log_format"]; v != "" {
		switch strings.ToLower(v) {
		case "text", "json":
			cfg.LogFormat = strings.ToLower(v)
		default:
			invalid = append(invalid, "log_format")
		}
	}
	return invalid
}

// ResolveDBPath returns cfg.DBPath, or the default location with its
// directory created.
func (c ClientConfig) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	p, err := DefaultDBPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return p, nil
}
