// Package config loads application configuration from environment
// variables.  Required variables halt startup when missing; tunables
// fall back to sensible defaults so a bare `go run` against fixtures
// works without a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable.
type Config struct {
	Env  string // application environment (dev/test/prod)
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	// UseFixtures switches the server to the bundled in-memory seed
	// data instead of MySQL.  Intended for local runs and demos.
	UseFixtures bool

	MaxWaitlist   int           // live waitlist entries per inventory key
	PaymentWindow time.Duration // how long a pending payment may stay unpaid
	SweepInterval time.Duration // pending-payment sweep tick
}

// Load reads configuration from the environment.  Database variables
// are required unless APP_USE_FIXTURES is set; everything else has a
// default.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8080"),
		UseFixtures:   envBool("APP_USE_FIXTURES", false),
		MaxWaitlist:   envInt("WAITLIST_MAX", 100),
		PaymentWindow: envDur("PAYMENT_WINDOW", 15*time.Minute),
		SweepInterval: envDur("PAYMENT_SWEEP_INTERVAL", time.Minute),
	}
	if !cfg.UseFixtures {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	if cfg.MaxWaitlist < 0 {
		cfg.MaxWaitlist = 0
	}
	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = 15 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return cfg
}

// must retrieves a required environment variable.  If the variable is
// unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
