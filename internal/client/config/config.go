package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the LinkSphere CLI.
type Config struct {
	APIBaseURL            string
	LivenessCheckInterval time.Duration
	ResendCooldown        time.Duration
	RequestTimeout        time.Duration
	PageSize              int
	DatabasePath          string
	LogFormat             string
	LogLevel              string
	ThemeWatchInterval    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api"
	c.LivenessCheckInterval = 60 * time.Second
	c.ResendCooldown = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.PageSize = 10
	c.DatabasePath = "linksphere.db"
	c.LogFormat = "text"
	c.LogLevel = "info"
	c.ThemeWatchInterval = 5 * time.Second
}

// LoadConfig constructs a Config from defaults, environment, an optional
// config file and flags, in that order. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
