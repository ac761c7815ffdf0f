package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // redis or sqlite
	} `yaml:"storage"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		LeadTimeMinutes         int `yaml:"lead_time_minutes"`
		CancellationWindowHours int `yaml:"cancellation_window_hours"`
	} `yaml:"booking"`

	API struct {
		RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
		RateLimitBurst     int     `yaml:"rate_limit_burst"`
		AdminToken         string  `yaml:"admin_token"`
	} `yaml:"api"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	switch cfg.Storage.Driver {
	case "", "redis", "sqlite":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "data/turnero.db"
	}
	if cfg.Storage.Driver == "sqlite" {
		if err = os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	if c.Server.Address == "" {
		return ":8080"
	}
	return c.Server.Address
}

func (c *Config) StorageDriver() string {
	if c.Storage.Driver == "" {
		return "redis"
	}
	return c.Storage.Driver
}

func (c *Config) LeadTime() time.Duration {
	if c.Booking.LeadTimeMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.Booking.LeadTimeMinutes) * time.Minute
}

func (c *Config) CancellationWindow() time.Duration {
	if c.Booking.CancellationWindowHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Booking.CancellationWindowHours) * time.Hour
}

func (c *Config) RateLimit() (perSecond float64, burst int) {
	perSecond = c.API.RateLimitPerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	burst = c.API.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}
	return perSecond, burst
}
