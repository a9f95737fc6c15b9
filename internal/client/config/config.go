package config

import (
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
)

// Config holds runtime settings for the SocietyHub CLI and dev server.
type Config struct {
	APIBaseURL string

	Backend       string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string

	LogLevel  string
	LogFormat string

	SearchDebounce time.Duration
	// RateLimit is requests per second; zero disables the limit.
	RateLimit float64
	RateBurst int
	// MetricsAddr, when set, exposes client metrics on /metrics.
	MetricsAddr string

	DevServerAddr   string
	DevServerSecret string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.Backend = kv.BackendSQLite
	c.DSN = "societyhub.db"
	c.RedisAddr = "localhost:6379"
	c.Namespace = "societyhub"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.SearchDebounce = 500 * time.Millisecond
	c.RateBurst = 1
	c.DevServerAddr = "localhost:8000"
	c.DevServerSecret = "dev-secret"
}

// LoadConfig builds a Config from defaults, then .env and SOCIETYHUB_*
// variables, then an optional JSON file, then flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Storage returns the kv options described by c.
func (c *Config) Storage() kv.Options {
	return kv.Options{
		Backend:       c.Backend,
		DSN:           c.DSN,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		Namespace:     c.Namespace,
	}
}
