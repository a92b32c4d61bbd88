// Package config reads the storefront's runtime settings from flags, with
// environment variables as defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// Config holds the process settings.
type Config struct {
	AppEnv       string
	GRPCPort     int
	HTTPPort     int
	CatalogPath  string
	MaxSessions  int
	HistoryLimit int
	Dev          bool
}

// Load parses args (without the program name). Flags win over the
// environment; the environment wins over built-in defaults.
func Load(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	fs.StringVar(&cfg.AppEnv, "env", getEnv("APP_ENV", "dev"), "deployment environment name")
	fs.IntVar(&cfg.GRPCPort, "port", getEnvInt("PORT", 50051), "gRPC listen port")
	fs.IntVar(&cfg.HTTPPort, "http-port", getEnvInt("HTTP_PORT", 8080), "HTTP listen port, 0 disables the JSON API")
	fs.StringVar(&cfg.CatalogPath, "catalog", getEnv("CATALOG_PATH", ""), "YAML catalog file; the built-in catalog is used when empty")
	fs.IntVar(&cfg.MaxSessions, "max-sessions", getEnvInt("MAX_SESSIONS", 10000), "maximum sessions kept in memory")
	fs.IntVar(&cfg.HistoryLimit, "history-limit", getEnvInt("HISTORY_LIMIT", 500), "event pages kept per session before compaction, 0 keeps all")
	fs.BoolVar(&cfg.Dev, "dev", false, "human-readable development logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port %d", c.GRPCPort)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTPPort)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative, got %d", c.HistoryLimit)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
