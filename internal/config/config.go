package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Routing RoutingConfig `yaml:"routing"`
	Refresh RefreshConfig `yaml:"refresh"`
	Hub     HubConfig     `yaml:"hub"`
	Client  ClientConfig  `yaml:"client"`
}

type ServerConfig struct {
	WSAddr   string `yaml:"ws_addr"`
	HTTPAddr string `yaml:"http_addr"`
}

type StoreConfig struct {
	OrdersFile  string `yaml:"orders_file"`
	DriversFile string `yaml:"drivers_file"`
}

type RoutingConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	OriginAddress  string `yaml:"origin_address"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RefreshConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
}

type HubConfig struct {
	PingIntervalSeconds int `yaml:"ping_interval_seconds"`
}

type ClientConfig struct {
	ServerURL             string `yaml:"server_url"`
	MaxReconnectAttempts  int    `yaml:"max_reconnect_attempts"`
	BackoffBaseSeconds    int    `yaml:"backoff_base_seconds"`
	BackoffCapSeconds     int    `yaml:"backoff_cap_seconds"`
	OverrideCacheFile     string `yaml:"override_cache_file"`
}

// Load reads the YAML config at path, falling back to defaults for any
// missing file or field.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the development configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.WSAddr == "" {
		c.Server.WSAddr = ":3002"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":3001"
	}
	if c.Store.OrdersFile == "" {
		c.Store.OrdersFile = "orders.json"
	}
	if c.Store.DriversFile == "" {
		c.Store.DriversFile = "drivers.json"
	}
	if c.Routing.Endpoint == "" {
		c.Routing.Endpoint = "https://maps.googleapis.com/maps/api/distancematrix/json"
	}
	if c.Routing.OriginAddress == "" {
		c.Routing.OriginAddress = "562 richmond road grey lynn"
	}
	if c.Routing.TimeoutSeconds <= 0 {
		c.Routing.TimeoutSeconds = 10
	}
	if c.Refresh.IntervalMinutes <= 0 {
		c.Refresh.IntervalMinutes = 60
	}
	if c.Hub.PingIntervalSeconds <= 0 {
		c.Hub.PingIntervalSeconds = 30
	}
	if c.Client.ServerURL == "" {
		c.Client.ServerURL = "ws://localhost:3002"
	}
	if c.Client.MaxReconnectAttempts <= 0 {
		c.Client.MaxReconnectAttempts = 5
	}
	if c.Client.BackoffBaseSeconds <= 0 {
		c.Client.BackoffBaseSeconds = 3
	}
	if c.Client.BackoffCapSeconds <= 0 {
		c.Client.BackoffCapSeconds = 30
	}
	if c.Client.OverrideCacheFile == "" {
		c.Client.OverrideCacheFile = "manual-travel-times.json"
	}
}

func (c *RoutingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *HubConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSeconds) * time.Second
}

func (c *ClientConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseSeconds) * time.Second
}

func (c *ClientConfig) BackoffCap() time.Duration {
	return time.Duration(c.BackoffCapSeconds) * time.Second
}
