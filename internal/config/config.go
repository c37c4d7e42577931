package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	Port               int
	NatsURL            string
	NatsToken          string
	DatabaseURL        string
	LogLevel           string
	APIToken           string
	KeywordsFile       string
	SessionIdleTimeout time.Duration
	ReapInterval       time.Duration
	ResetOnReject      bool
}

func Load() Config {
	return Config{
		Port:               envInt("INTAKE_PORT", 8760),
		NatsURL:            envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:          envStr("NATS_TOKEN", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		APIToken:           envStr("INTAKE_API_TOKEN", ""),
		KeywordsFile:       envStr("INTAKE_KEYWORDS_FILE", ""),
		SessionIdleTimeout: envDuration("INTAKE_SESSION_IDLE_TIMEOUT", 15*time.Minute),
		ReapInterval:       envDuration("INTAKE_REAP_INTERVAL", time.Minute),
		ResetOnReject:      envBool("INTAKE_RESET_ON_REJECT", false),
	}
}

// RegisterFlags binds command-line overrides to cfg. Values already loaded
// from the environment become the flag defaults.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.KeywordsFile, "keywords", c.KeywordsFile, "YAML file with classification keyword sets")
	fs.DurationVar(&c.SessionIdleTimeout, "idle-timeout", c.SessionIdleTimeout, "evict call sessions idle for longer than this")
	fs.BoolVar(&c.ResetOnReject, "reset-on-reject", c.ResetOnReject, "clear collected service details when the caller rejects them")
}

// Validate rejects values the environment helpers would have refused but a
// command-line flag can still set.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %s", c.SessionIdleTimeout)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("reap interval must be positive, got %s", c.ReapInterval)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
