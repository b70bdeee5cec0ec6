package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: veda\n")

	cfg := LoadConfig(path)
	if cfg.App.Workspace != "./workspace" {
		t.Errorf("Expected default workspace, got %q", cfg.App.Workspace)
	}
	if cfg.Memory.TopK != 5 {
		t.Errorf("Expected default top_k 5, got %d", cfg.Memory.TopK)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Errorf("Expected default poll interval 2s, got %v", cfg.PollInterval())
	}
	if cfg.ConfirmTTL() != 15*time.Minute {
		t.Errorf("Expected default confirm TTL 15m, got %v", cfg.ConfirmTTL())
	}
}

func TestLoadConfig_Values(t *testing.T) {
	path := writeConfig(t, `
app:
  name: veda
  workspace: /tmp/ws
runtime:
  poll_interval_sec: 0.5
confirm:
  ttl_minutes: 5
providers:
  openai:
    model: gpt-4o-mini
    api_key: test-key
    enabled: true
gateways:
  telegram:
    token: tg-token
    enabled: true
`)

	cfg := LoadConfig(path)
	if cfg.App.Workspace != "/tmp/ws" {
		t.Errorf("Unexpected workspace: %q", cfg.App.Workspace)
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("Expected 500ms poll interval, got %v", cfg.PollInterval())
	}
	if cfg.ConfirmTTL() != 5*time.Minute {
		t.Errorf("Expected 5m TTL, got %v", cfg.ConfirmTTL())
	}

	name, provider := cfg.GetDefaultProvider()
	if name != "openai" || provider.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected default provider: %s %+v", name, provider)
	}

	tg, ok := cfg.GetTelegramConfig()
	if !ok || tg.Token != "tg-token" {
		t.Errorf("Expected enabled telegram config, got ok=%v %+v", ok, tg)
	}
}

func TestLoadConfig_EnvOverridesEmptySecrets(t *testing.T) {
	path := writeConfig(t, `
providers:
  openai:
    model: gpt-4o-mini
    enabled: true
gateways:
  telegram:
    enabled: true
`)

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg := LoadConfig(path)
	if cfg.Providers["openai"].APIKey != "env-key" {
		t.Errorf("Expected env api key, got %q", cfg.Providers["openai"].APIKey)
	}
	if cfg.Gateways["telegram"].Token != "env-token" {
		t.Errorf("Expected env telegram token, got %q", cfg.Gateways["telegram"].Token)
	}
}

func TestGetTelegramConfig_DisabledOrMissingToken(t *testing.T) {
	path := writeConfig(t, `
gateways:
  telegram:
    token: tg-token
    enabled: false
`)

	cfg := LoadConfig(path)
	if _, ok := cfg.GetTelegramConfig(); ok {
		t.Error("Disabled gateway must not be returned")
	}
}
