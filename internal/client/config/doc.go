// Package config loads runtime configuration for the SocietyHub CLI and the
// development server.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-env-file, or ./.env when present) and SOCIETYHUB_*
//     environment variables; the process environment wins over the file.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags (see parseFlags).
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "500ms" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "storage": "sqlite",
//	  "dsn": "societyhub.db",
//	  "search_debounce": "500ms",
//	  "rate_limit": 5
//	}
package config
