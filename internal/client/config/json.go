package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/societyhub/internal/flagx"
	"github.com/dmitrijs2005/societyhub/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from a zero value so a partial file only
// overrides what it names. Durations accept "500ms" or integer nanoseconds.
type JSONConfig struct {
	APIBaseURL      *string         `json:"api_base_url"`
	Backend         *string         `json:"storage"`
	DSN             *string         `json:"dsn"`
	RedisAddr       *string         `json:"redis_addr"`
	RedisPassword   *string         `json:"redis_password"`
	RedisDB         *int            `json:"redis_db"`
	Namespace       *string         `json:"namespace"`
	LogLevel        *string         `json:"log_level"`
	LogFormat       *string         `json:"log_format"`
	SearchDebounce  *timex.Duration `json:"search_debounce"`
	RateLimit       *float64        `json:"rate_limit"`
	RateBurst       *int            `json:"rate_burst"`
	MetricsAddr     *string         `json:"metrics_addr"`
	DevServerAddr   *string         `json:"devserver_addr"`
	DevServerSecret *string         `json:"devserver_secret"`
}

// parseJSON overlays cfg with the file named by -c or -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.Backend, jc.Backend)
	set(&cfg.DSN, jc.DSN)
	set(&cfg.RedisAddr, jc.RedisAddr)
	set(&cfg.RedisPassword, jc.RedisPassword)
	set(&cfg.RedisDB, jc.RedisDB)
	set(&cfg.Namespace, jc.Namespace)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.RateLimit, jc.RateLimit)
	set(&cfg.RateBurst, jc.RateBurst)
	set(&cfg.MetricsAddr, jc.MetricsAddr)
	set(&cfg.DevServerAddr, jc.DevServerAddr)
	set(&cfg.DevServerSecret, jc.DevServerSecret)
	if jc.SearchDebounce != nil {
		cfg.SearchDebounce = jc.SearchDebounce.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
