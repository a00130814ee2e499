package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Limits   LimitsConfig   `yaml:"limits"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	RequestTimeout  int    `yaml:"request_timeout_seconds"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// JWTConfig holds JWT authentication settings.
// Authentication is disabled when Secret is empty.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	KeyPrefix       string `yaml:"key_prefix"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
	TTLMinutes      int    `yaml:"ttl_minutes"`
}

// CacheConfig holds in-process cache settings
type CacheConfig struct {
	Size int `yaml:"size"` // entries; 0 disables the memory cache
}

// LimitsConfig bounds the work a single request may ask for
type LimitsConfig struct {
	MaxRing  uint64 `yaml:"max_ring"`
	MaxBatch int    `yaml:"max_batch"`
}

// DatabaseConfig holds the spiral table location
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "hexspiral:"
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "hexspiral:blacklist:"
	}
	if cfg.Redis.TTLMinutes == 0 {
		cfg.Redis.TTLMinutes = 60
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 4096
	}
	if cfg.Limits.MaxRing == 0 {
		cfg.Limits.MaxRing = 100000
	}
	if cfg.Limits.MaxBatch == 0 {
		cfg.Limits.MaxBatch = 1000
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/spiral.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TTL returns the cache entry lifetime in Redis.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLMinutes) * time.Minute
}
