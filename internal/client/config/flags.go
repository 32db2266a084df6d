package config

import (
	"flag"
	"io"

	"github.com/ReloopAI/vibecut-frontend-2/internal/flagx"
)

var configFlags = []string{
	"-a", "-api", "--api",
	"-d", "-data-dir", "--data-dir",
	"-store", "--store",
	"-redis-addr", "--redis-addr",
	"-timeout", "--timeout",
	"-log-format", "--log-format",
	"-log-level", "--log-level",
}

// parseFlags overlays cfg with the flags it knows about. args is filtered
// first so that flags owned by other components do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, configFlags)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "local data directory")
	fs.StringVar(&cfg.Store.Driver, "store", cfg.Store.Driver, "local store driver (sqlite|redis)")
	fs.StringVar(&cfg.Store.RedisAddr, "redis-addr", cfg.Store.RedisAddr, "redis address")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format (text|json|zap)")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")

	return fs.Parse(filtered)
}
