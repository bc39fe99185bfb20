package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFrom_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, ".env"), noEnv)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg != DefaultClientConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if cfg.PollInterval != 20*time.Second {
		t.Errorf("PollInterval = %v, want 20s", cfg.PollInterval)
	}
}

func TestLoadFrom_Precedence(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "config.yaml", "server: http://file.example/\npoll_interval: 5s\nlog_format: json\n")
	envPath := writeFile(t, dir, ".env", "ODFLOW_SERVER=http://dotenv.example\nODFLOW_TIMEOUT=3s\n")
	env := map[string]string{"ODFLOW_TIMEOUT": "7s"}

	cfg, err := LoadFrom(yamlPath, envPath, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.ServerURL != "http://dotenv.example" {
		t.Errorf("ServerURL = %q, want .env to override the file", cfg.ServerURL)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v, want environment to override .env", cfg.Timeout)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s from file", cfg.PollInterval)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoadFrom_InvalidValuesReportedTogether(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "config.yaml", "poll_interval: soon\nlog_format: xml\n")
	_, err := LoadFrom(yamlPath, "", noEnv)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"poll_interval", "log_format"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "config.yaml", "server: [unterminated\n")
	if _, err := LoadFrom(yamlPath, "", noEnv); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveDBPath_Explicit(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.DBPath = "/tmp/odflow-test.db"
	got, err := cfg.ResolveDBPath()
	if err != nil {
		t.Fatalf("ResolveDBPath: %v", err)
	}
	if got != cfg.DBPath {
		t.Errorf("ResolveDBPath = %q, want %q", got, cfg.DBPath)
	}
}
