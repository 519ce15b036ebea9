// Package config loads runtime configuration for the LinkSphere CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment, optionally seeded from a .env file (see parseEnv).
//  3. Optional JSON or YAML file selected via -c or -config (see parseFile).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-u string   API base URL, e.g. http://localhost:8080/api
//	-i int      session liveness check interval (seconds)
//	-d string   path of the local SQLite state file
//	-l string   log level (debug, info, warn, error)
//
// Environment
//
//	LINKSPHERE_API_URL, LINKSPHERE_LIVENESS_INTERVAL, LINKSPHERE_DB_PATH,
//	LINKSPHERE_LOG_FORMAT, LINKSPHERE_LOG_LEVEL
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "60s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080/api",
//	  "liveness_check_interval": "60s",
//	  "resend_cooldown": "30s",
//	  "request_timeout": "10s",
//	  "page_size": 10,
//	  "database_path": "linksphere.db",
//	  "log_format": "text",
//	  "log_level": "info",
//	  "theme_watch_interval": "5s"
//	}
//
// Files ending in .yaml or .yml are decoded with the same keys.
package config
