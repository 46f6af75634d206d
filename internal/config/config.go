// Package config loads the client and dev-service configuration from YAML.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zenobia-pay/client/internal/track"
)

type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	Statusd StatusdConfig `yaml:"statusd"`
}

// TrackerConfig selects the status service and the reconnect policy.
type TrackerConfig struct {
	StatusHost     string        `yaml:"status_host"`
	Secure         bool          `yaml:"secure"`
	CreateEndpoint string        `yaml:"create_endpoint"`
	BackoffBase    time.Duration `yaml:"backoff_base"`
	BackoffCap     time.Duration `yaml:"backoff_cap"`
	MaxAttempts    int           `yaml:"max_attempts"`
}

// StatusdConfig configures the dev status-push service.
type StatusdConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	MerchantID   string        `yaml:"merchant_id"`
	FeedInterval time.Duration `yaml:"feed_interval"`
	PingInterval time.Duration `yaml:"ping_interval"`
	Statuses     []string      `yaml:"statuses"`
	// DropAfter abnormally drops each stream after N status frames.
	// Zero disables the fault injection.
	DropAfter int `yaml:"drop_after"`
}

func defaultConfig() *Config {
	return &Config{
		Tracker: TrackerConfig{
			StatusHost:     track.DefaultStatusHost,
			Secure:         true,
			CreateEndpoint: "https://api.zenobiapay.com/create-transfer",
			BackoffBase:    time.Second,
			BackoffCap:     30 * time.Second,
			MaxAttempts:    6,
		},
		Statusd: StatusdConfig{
			Host:         "127.0.0.1",
			Port:         8090,
			MerchantID:   "dev-merchant",
			FeedInterval: 2 * time.Second,
			PingInterval: 15 * time.Second,
			Statuses:     []string{"created", "pending", "processing", "completed"},
		},
	}
}

// Load reads the config at path, applying defaults for unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// TrackConfig maps the tracker section onto a session config.
func (c *TrackerConfig) TrackConfig() track.Config {
	return track.Config{
		StatusHost:  c.StatusHost,
		Secure:      c.Secure,
		BackoffBase: c.BackoffBase,
		BackoffCap:  c.BackoffCap,
		MaxAttempts: c.MaxAttempts,
	}
}
