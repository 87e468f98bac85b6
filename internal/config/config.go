// Package config loads the server configuration: built-in defaults, an
// optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/anvilmcp/anvil/pkg/version"
)

type ServerConfig struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	ProtocolVersion string `yaml:"protocol_version"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TransportConfig struct {
	Stdio     bool   `yaml:"stdio"`
	Socket    string `yaml:"socket"`
	HTTP      string `yaml:"http"`
	HTTPToken string `yaml:"http_token"`
}

type ToolsConfig struct {
	Root           string `yaml:"root"`
	Scratch        bool   `yaml:"scratch"`
	WatchTimeoutMS int    `yaml:"watch_timeout_ms"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Tools     ToolsConfig     `yaml:"tools"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            "anvil",
			Version:         version.Version,
			ProtocolVersion: version.ProtocolVersion,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Transport: TransportConfig{
			Stdio: true,
		},
		Tools: ToolsConfig{
			Scratch:        true,
			WatchTimeoutMS: 5000,
		},
	}
}

// DefaultPath is the config file location used when neither the -config
// flag nor ANVIL_CONFIG is set.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".anvil", "config.yaml")
}

// Load builds the effective configuration. A missing file at the default
// path is fine; an explicitly requested file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("ANVIL_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Defaults only.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ANVIL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ANVIL_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("ANVIL_SOCKET"); v != "" {
		c.Transport.Socket = v
	}
	if v := os.Getenv("ANVIL_HTTP_ADDR"); v != "" {
		c.Transport.HTTP = v
	}
	if v := os.Getenv("ANVIL_HTTP_TOKEN"); v != "" {
		c.Transport.HTTPToken = v
	}
	if v := os.Getenv("ANVIL_TOOLS_ROOT"); v != "" {
		c.Tools.Root = v
	}
	if os.Getenv("ANVIL_NO_SCRATCH") != "" {
		c.Tools.Scratch = false
	}
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "auto", "text", "json", "":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if c.Transport.HTTPToken != "" && c.Transport.HTTP == "" {
		return fmt.Errorf("http_token set but no http listen address configured")
	}

	if c.Tools.Root != "" && !filepath.IsAbs(c.Tools.Root) {
		return fmt.Errorf("tools root %q must be an absolute path", c.Tools.Root)
	}

	if c.Tools.WatchTimeoutMS < 0 {
		return fmt.Errorf("watch_timeout_ms must not be negative")
	}

	return nil
}
