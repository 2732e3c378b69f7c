package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const devSessionSecret = "dev_fallback_secret"

// Config is the console's runtime configuration.
type Config struct {
	Env           string
	Port          string
	APIBaseURL    string
	APIToken      string // deployment-time service credential sent to the catalog API
	APITimeout    time.Duration
	SessionSecret string
	DBDSN         string // optional; enables the catalog snapshot mirror
	LogFile       string
	WorkspaceIdle time.Duration
}

// Load reads .env files (current, parent and repo root, so cmd/server works too)
// and then the process environment.
func Load() *Config {
	_ = godotenv.Overload(".env", "../.env", "../../.env")
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("APP_PORT", "8080"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:5000/api/v1"),
		APIToken:      os.Getenv("API_TOKEN"),
		APITimeout:    getDuration("API_TIMEOUT", 10*time.Second),
		SessionSecret: getEnv("SESSION_SECRET", devSessionSecret),
		DBDSN:         os.Getenv("DB_DSN"),
		LogFile:       os.Getenv("LOG_FILE"),
		WorkspaceIdle: getDuration("WORKSPACE_IDLE", 30*time.Minute),
	}
	if cfg.SessionSecret == devSessionSecret {
		log.Println("WARN: SESSION_SECRET is empty, using development fallback")
	}
	return cfg
}

// Production reports whether the console runs with APP_ENV=production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("90s") and bare integers as seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := cast.ToDurationE(v)
	if secs, serr := cast.ToInt64E(v); serr == nil {
		d, err = time.Duration(secs)*time.Second, nil
	}
	if err != nil || d <= 0 {
		log.Printf("WARN: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
