package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures every environment-sourced setting so main stays lean.
type Config struct {
	// HostName is the single origin allowed by CORS for the API routes.
	HostName string `envconfig:"HOST_NAME" default:"http://localhost:8000"`
	HTTPPort uint16 `envconfig:"HTTP_PORT" default:"8000"`

	// StaticPath is the directory served for non-API routes (the SPA build).
	StaticPath    string `envconfig:"STATIC_PATH" default:"./static"`
	CountriesPath string `envconfig:"COUNTRIES_PATH" default:"./countries.json"`

	HcaptchaSecret string `envconfig:"HCAPTCHA_SECRET"`

	Redis     RedisConfig
	RateLimit RateLimitConfig

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// RedisConfig holds connection settings for the backing store.
type RedisConfig struct {
	HostName     string        `envconfig:"REDIS_HOST_NAME" default:"localhost"`
	Port         uint16        `envconfig:"REDIS_PORT" default:"6379"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Addr returns the host:port pair for the Redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.HostName, c.Port)
}

// RateLimitConfig tunes the per-IP token bucket on the pledge write path.
type RateLimitConfig struct {
	PledgesPerSecond float64 `envconfig:"PLEDGE_RATE_LIMIT_RPS" default:"1"`
	Burst            int     `envconfig:"PLEDGE_RATE_LIMIT_BURST" default:"5"`
}

// FromEnv builds the Config from environment variables, applying defaults for
// anything unset.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
