package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"TelescopeStatus/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8050"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Archive struct {
		BaseURL      string        `yaml:"base_url" default:"https://mast.stsci.edu/api/v0/invoke"`
		AuthURL      string        `yaml:"auth_url" default:"https://auth.mast.stsci.edu"`
		Token        string        `yaml:"token"`
		Timeout      time.Duration `yaml:"timeout" default:"10m"`
		PageSize     int           `yaml:"page_size" default:"50000"`
		PollInterval time.Duration `yaml:"poll_interval" default:"2s"`
		MaxPolls     int           `yaml:"max_polls" default:"30"`
		MissionTTL   time.Duration `yaml:"mission_ttl" default:"1h"`
	} `yaml:"archive"`
	Cache struct {
		Dir           string        `yaml:"dir" default:"data"`
		Format        string        `yaml:"format" default:"binary"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"1000"`
		FigureTTL     time.Duration `yaml:"figure_ttl" default:"15m"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"telescopestatus"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Dashboard struct {
		Telescopes   []string      `yaml:"telescopes" default:"[\"JWST\",\"HST\",\"TESS\"]"`
		MaxResults   int           `yaml:"max_results"`
		PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
		RateLimit    struct {
			Capacity     float64 `yaml:"capacity" default:"10"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"1"`
		} `yaml:"rate_limit"`
	} `yaml:"dashboard"`
}

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("MAST_TOKEN"); v != "" {
		c.Archive.Token = v
	}
	if v := os.Getenv("TELESCOPES"); v != "" {
		c.Dashboard.Telescopes = util.SplitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Archive.BaseURL == "" {
		return fmt.Errorf("archive.base_url is required")
	}
	if c.Archive.Timeout <= 0 {
		return fmt.Errorf("archive.timeout must be positive")
	}
	switch c.Cache.Format {
	case "csv", "binary":
	default:
		return fmt.Errorf("cache.format must be 'csv' or 'binary', got '%s'", c.Cache.Format)
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	if c.Dashboard.MaxResults < 0 {
		return fmt.Errorf("dashboard.max_results cannot be negative")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	return nil
}
