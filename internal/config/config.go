package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Feed      FeedConfig
	Graph     GraphConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
	AllowCredentials  bool
}

// FeedConfig locates the transaction records loaded at startup. Source is a
// URL (http, https, file, postgres, neo4j, bolt) or a plain file path.
type FeedConfig struct {
	Source       string
	FetchTimeout time.Duration
}

// GraphConfig describes connectivity to the graph database (Neo4j/Neptune).
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// RedisConfig points at the Redis instance backing the rate limiter.
// An empty Addr selects the in-process limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig bounds requests per client IP in a fixed window.
// Requests <= 0 disables limiting.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 3000
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultFeedSource       = "https://cdn.seen.com/challenge/transactions-v2.json"
	defaultFeedTimeout      = 30 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultRateLimit        = 120
	defaultRateWindow       = time.Minute
)

// Load reads configuration from the environment, applying defaults. Values from
// a .env file in the working directory are loaded first without overriding
// variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			MetricsEnabled:    parseBoolWithDefault("SERVER_METRICS_ENABLED", true),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
			AllowCredentials:  parseBoolWithDefault("SERVER_ALLOW_CREDENTIALS", false),
		},
		Feed: FeedConfig{
			Source: valueOrDefault("FEED_SOURCE", defaultFeedSource),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			Colored:       parseBoolWithDefault("LOG_COLOR", false),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseIntWithDefault("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Requests: parseIntWithDefault("API_RATE_LIMIT", defaultRateLimit),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"FEED_FETCH_TIMEOUT", defaultFeedTimeout, &cfg.Feed.FetchTimeout},
		{"API_RATE_WINDOW", defaultRateWindow, &cfg.RateLimit.Window},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Feed.FetchTimeout <= 0 {
		return fmt.Errorf("FEED_FETCH_TIMEOUT must be positive, got %s", c.Feed.FetchTimeout)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window < time.Second {
		return fmt.Errorf("API_RATE_WINDOW must be at least 1s when rate limiting is enabled, got %s", c.RateLimit.Window)
	}
	if c.HTTP.AllowCredentials && allowsAnyOrigin(c.HTTP.AllowedOriginsCSV) {
		return errors.New("SERVER_ALLOW_CREDENTIALS cannot be combined with SERVER_ALLOWED_ORIGINS=*")
	}
	return nil
}

func allowsAnyOrigin(csv string) bool {
	for _, origin := range strings.Split(csv, ",") {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
