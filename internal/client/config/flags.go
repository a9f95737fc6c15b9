package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/societyhub/internal/flagx"
)

var knownFlags = []string{
	"-a", "-s", "-d", "-redis", "-ns", "-l", "-log-format",
	"-debounce", "-rate", "-burst", "-metrics", "-listen", "-secret",
}

// parseFlags overlays cfg with command-line flags. Only the flags above are
// considered; flagx.FilterArgs drops everything else so other loaders can
// share the command line.
//
//	-a string          API base URL
//	-s string          storage backend: sqlite, postgres, redis or memory
//	-d string          SQLite path or PostgreSQL DSN
//	-redis string      Redis address
//	-ns string         Redis key namespace
//	-l string          log level
//	-log-format string text or json
//	-debounce duration search debounce delay
//	-rate float        request rate limit per second, 0 for none
//	-burst int         request burst
//	-metrics string    address to expose /metrics on
//	-listen string     dev server listen address
//	-secret string     dev server JWT secret
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("societyhub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.Backend, "s", cfg.Backend, "storage backend")
	fs.StringVar(&cfg.DSN, "d", cfg.DSN, "storage DSN")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.Namespace, "ns", cfg.Namespace, "redis key namespace")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.DurationVar(&cfg.SearchDebounce, "debounce", cfg.SearchDebounce, "search debounce delay")
	fs.Float64Var(&cfg.RateLimit, "rate", cfg.RateLimit, "request rate limit per second")
	fs.IntVar(&cfg.RateBurst, "burst", cfg.RateBurst, "request burst")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.DevServerAddr, "listen", cfg.DevServerAddr, "dev server listen address")
	fs.StringVar(&cfg.DevServerSecret, "secret", cfg.DevServerSecret, "dev server JWT secret")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
