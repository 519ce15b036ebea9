package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-u string   API base URL
//	-i int      liveness check interval (in seconds)
//	-d string   local state database path
//	-l string   log level
//
// Only the flags above are considered, so -c/-config and anything else on
// the command line do not break parsing.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-u", "-i", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "API base URL")
	interval := fs.Int("i", int(cfg.LivenessCheckInterval.Seconds()), "session liveness check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local state database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *interval > 0 {
		cfg.LivenessCheckInterval = time.Duration(*interval) * time.Second
	}
}
