package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Gateways  map[string]GatewayConfig  `yaml:"gateways"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
	Runtime   RuntimeConfig             `yaml:"runtime"`
	Confirm   ConfirmConfig             `yaml:"confirm"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	Workspace string `yaml:"workspace"`
	DataDir   string `yaml:"data_dir"`
	LogDir    string `yaml:"log_dir"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type MemoryConfig struct {
	Path string `yaml:"path"`
	TopK int    `yaml:"top_k"`
}

type RuntimeConfig struct {
	InboxDir        string  `yaml:"inbox_dir"`
	ProcessedDir    string  `yaml:"processed_dir"`
	PollIntervalSec float64 `yaml:"poll_interval_sec"`
}

type ConfirmConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

func LoadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}
	cfg.applyDefaults()

	// Environment overrides for secrets so tokens can stay out of the file.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if p, ok := cfg.Providers["openai"]; ok && p.APIKey == "" {
			p.APIKey = v
			cfg.Providers["openai"] = p
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		if g, ok := cfg.Gateways["telegram"]; ok && g.Token == "" {
			g.Token = v
			cfg.Gateways["telegram"] = g
		}
	}

	return &cfg
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "veda"
	}
	if c.App.Workspace == "" {
		c.App.Workspace = "./workspace"
	}
	if c.App.DataDir == "" {
		c.App.DataDir = "./data"
	}
	if c.App.LogDir == "" {
		c.App.LogDir = "./data/logs"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "./data/state.db"
	}
	if c.Memory.TopK <= 0 {
		c.Memory.TopK = 5
	}
	if c.Runtime.InboxDir == "" {
		c.Runtime.InboxDir = "./data/inbox"
	}
	if c.Runtime.ProcessedDir == "" {
		c.Runtime.ProcessedDir = "./data/processed"
	}
	if c.Runtime.PollIntervalSec <= 0 {
		c.Runtime.PollIntervalSec = 2.0
	}
	if c.Confirm.TTLMinutes <= 0 {
		c.Confirm.TTLMinutes = 15
	}
}

// PollInterval returns the runtime poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Runtime.PollIntervalSec * float64(time.Second))
}

// ConfirmTTL returns how long a pending confirmation stays valid.
func (c *Config) ConfirmTTL() time.Duration {
	return time.Duration(c.Confirm.TTLMinutes) * time.Minute
}

// GetDefaultProvider returns the first enabled provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled.
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
