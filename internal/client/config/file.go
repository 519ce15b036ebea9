package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/linksphere/internal/flagx"
	"github.com/dmitrijs2005/linksphere/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used only for decoding config files. Zero values mean
// "not set" and leave the corresponding Config field untouched.
type FileConfig struct {
	APIBaseURL            string         `json:"api_base_url" yaml:"api_base_url"`
	LivenessCheckInterval timex.Duration `json:"liveness_check_interval" yaml:"liveness_check_interval"`
	ResendCooldown        timex.Duration `json:"resend_cooldown" yaml:"resend_cooldown"`
	RequestTimeout        timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	PageSize              int            `json:"page_size" yaml:"page_size"`
	DatabasePath          string         `json:"database_path" yaml:"database_path"`
	LogFormat             string         `json:"log_format" yaml:"log_format"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
	ThemeWatchInterval    timex.Duration `json:"theme_watch_interval" yaml:"theme_watch_interval"`
}

// parseFile overlays Config with the file named by -c/-config in args.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// Panics on read or decode errors, like the flag parser.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.LivenessCheckInterval.Duration > 0 {
		cfg.LivenessCheckInterval = fc.LivenessCheckInterval.Duration
	}
	if fc.ResendCooldown.Duration > 0 {
		cfg.ResendCooldown = fc.ResendCooldown.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.PageSize > 0 {
		cfg.PageSize = fc.PageSize
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.ThemeWatchInterval.Duration > 0 {
		cfg.ThemeWatchInterval = fc.ThemeWatchInterval.Duration
	}
}
