// Package config loads the application configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store modes.
const (
	StoreMemory = "memory"
	StoreRest   = "rest"
)

// Config is the full application configuration.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	StoreMode   string `yaml:"store_mode"`
	UpstreamURL string `yaml:"upstream_url"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	RateLimitPerSecond int `yaml:"rate_limit_per_second"`
	RateLimitBurst     int `yaml:"rate_limit_burst"`

	PointValue        float64       `yaml:"point_value"`
	EarnRate          float64       `yaml:"earn_rate"`
	LowStockThreshold int           `yaml:"low_stock_threshold"`
	StepTimeout       time.Duration `yaml:"step_timeout"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:         ":8080",
		AllowedOrigins:     []string{"*"},
		StoreMode:          StoreMemory,
		TokenTTL:           12 * time.Hour,
		RateLimitPerSecond: 50,
		RateLimitBurst:     100,
		PointValue:         0.50,
		EarnRate:           10,
		LowStockThreshold:  5,
		StepTimeout:        10 * time.Second,
		ReconcileInterval:  30 * time.Second,
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOREFLOW_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("STOREFLOW_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("STOREFLOW_STORE_MODE"); v != "" {
		c.StoreMode = v
	}
	if v := os.Getenv("STOREFLOW_UPSTREAM_URL"); v != "" {
		c.UpstreamURL = v
	}
	if v := os.Getenv("STOREFLOW_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("STOREFLOW_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
	if v := os.Getenv("STOREFLOW_RATE_LIMIT_PER_SECOND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitPerSecond = n
		}
	}
	if v := os.Getenv("STOREFLOW_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}
	if v := os.Getenv("STOREFLOW_LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LowStockThreshold = n
		}
	}
	if v := os.Getenv("STOREFLOW_STEP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StepTimeout = d
		}
	}
	if v := os.Getenv("STOREFLOW_RECONCILE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ReconcileInterval = d
		}
	}
}

// Validate rejects configurations that cannot serve.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	switch c.StoreMode {
	case StoreMemory:
	case StoreRest:
		if c.UpstreamURL == "" {
			return fmt.Errorf("upstream_url is required when store_mode is %q", StoreRest)
		}
	default:
		return fmt.Errorf("unknown store_mode %q", c.StoreMode)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.PointValue <= 0 || c.EarnRate <= 0 {
		return fmt.Errorf("point_value and earn_rate must be positive")
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("step_timeout must be positive")
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("reconcile_interval must be positive")
	}
	return nil
}
