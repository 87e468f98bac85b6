package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  name: forge
  protocol_version: "2024-11-05"
log:
  level: debug
  format: json
transport:
  stdio: true
  http: 127.0.0.1:8700
  http_token: sekrit
tools:
  scratch: false
  watch_timeout_ms: 250
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Name != "forge" {
		t.Errorf("server.name = %q", cfg.Server.Name)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Transport.HTTP != "127.0.0.1:8700" || cfg.Transport.HTTPToken != "sekrit" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Tools.Scratch {
		t.Error("tools.scratch not overridden")
	}
	if cfg.Tools.WatchTimeoutMS != 250 {
		t.Errorf("watch_timeout_ms = %d", cfg.Tools.WatchTimeoutMS)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
`)
	t.Setenv("ANVIL_LOG_LEVEL", "error")
	t.Setenv("ANVIL_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ANVIL_HTTP_TOKEN", "tok")
	t.Setenv("ANVIL_NO_SCRATCH", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log.level = %q, want env override", cfg.Log.Level)
	}
	if cfg.Transport.HTTP != "127.0.0.1:9000" || cfg.Transport.HTTPToken != "tok" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Tools.Scratch {
		t.Error("ANVIL_NO_SCRATCH did not disable scratch tools")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"token without addr", func(c *Config) { c.Transport.HTTPToken = "tok" }},
		{"relative root", func(c *Config) { c.Tools.Root = "relative/dir" }},
		{"negative watch timeout", func(c *Config) { c.Tools.WatchTimeoutMS = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
