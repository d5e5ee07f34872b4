package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
client:
  api_key: key-1
  api_secret: secret-1
  demo: true
  timeout: 5s
  headers:
    X-Desk: otc
database:
  in_memory: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Client.APIKey != "key-1" || cfg.Client.APISecret != "secret-1" {
		t.Errorf("credentials not loaded: %+v", cfg.Client)
	}
	if !cfg.Client.Demo {
		t.Errorf("expected demo=true")
	}
	if cfg.Client.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Client.Timeout)
	}
	if cfg.Client.Protocol != "https" {
		t.Errorf("expected default protocol https, got %s", cfg.Client.Protocol)
	}
	if cfg.Client.Headers["x-desk"] != "otc" && cfg.Client.Headers["X-Desk"] != "otc" {
		t.Errorf("expected extra header, got %v", cfg.Client.Headers)
	}
	if cfg.Logging.Level != "info" || len(cfg.Logging.OutputPaths) == 0 {
		t.Errorf("logging defaults missing: %+v", cfg.Logging)
	}
	if !cfg.Journal.Enabled {
		t.Errorf("journal should be enabled by default")
	}
}

func TestLoad_EnvOverridesWithoutFile(t *testing.T) {
	t.Setenv("TRADEBLOCK_CLIENT_API_KEY", "env-key")
	t.Setenv("TRADEBLOCK_CLIENT_API_SECRET", "env-secret")
	t.Setenv("TRADEBLOCK_CLIENT_HOST", "custom.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Client.APIKey != "env-key" || cfg.Client.APISecret != "env-secret" {
		t.Errorf("env credentials not applied: %+v", cfg.Client)
	}
	if cfg.Client.Host != "custom.example" {
		t.Errorf("env host not applied: %s", cfg.Client.Host)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "未找到配置文件") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	path := writeConfig(t, `
client:
  protocol: ftp
journal:
  port: 70000
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"client.api_key", "client.api_secret", "client.protocol", "journal.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}
