package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "SOCIETYHUB_"

const defaultEnvFile = ".env"

// parseEnv overlays cfg with variables from a dotenv file and the process
// environment. The file is the one named by -env-file, or ./.env when that
// exists. Process variables take precedence over the file.
func parseEnv(cfg *Config, args []string) error {
	vars := map[string]string{}

	path := flagx.EnvFile(args)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	fileVars, err := godotenv.Read(path)
	switch {
	case err == nil:
		vars = fileVars
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}

	return applyEnv(cfg, vars)
}

func applyEnv(cfg *Config, vars map[string]string) error {
	str := func(name string, dst *string) {
		if v, ok := vars[EnvPrefix+name]; ok {
			*dst = v
		}
	}

	str("API_URL", &cfg.APIBaseURL)
	str("STORAGE", &cfg.Backend)
	str("DSN", &cfg.DSN)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("NAMESPACE", &cfg.Namespace)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	str("DEVSERVER_ADDR", &cfg.DevServerAddr)
	str("DEVSERVER_SECRET", &cfg.DevServerSecret)

	if v, ok := vars[EnvPrefix+"REDIS_DB"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		cfg.RedisDB = n
	}
	if v, ok := vars[EnvPrefix+"SEARCH_DEBOUNCE"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSEARCH_DEBOUNCE: %w", EnvPrefix, err)
		}
		cfg.SearchDebounce = d
	}
	if v, ok := vars[EnvPrefix+"RATE_LIMIT"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		cfg.RateLimit = f
	}
	if v, ok := vars[EnvPrefix+"RATE_BURST"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_BURST: %w", EnvPrefix, err)
		}
		cfg.RateBurst = n
	}
	return nil
}
