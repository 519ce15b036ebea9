package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with LINKSPHERE_* variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment are not overwritten by it.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("LINKSPHERE_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("LINKSPHERE_LIVENESS_INTERVAL"); v != "" {
		if d, ok := parseSecondsOrDuration(v); ok {
			cfg.LivenessCheckInterval = d
		}
	}
	if v := os.Getenv("LINKSPHERE_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LINKSPHERE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("LINKSPHERE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// parseSecondsOrDuration accepts "90" (seconds) as well as "1m30s". Zero and
// negative values are rejected.
func parseSecondsOrDuration(v string) (time.Duration, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, n > 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, d > 0
}
