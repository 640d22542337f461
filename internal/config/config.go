package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	AuthURL       string
	AuthAPIKey    string
	EventCooldown time.Duration
	CacheTTL      time.Duration
	ClampStats    bool
	StartAge      int
}

type WorkerConfig struct {
	DatabaseURL      string
	RedisURL         string
	DailyRotateEvery time.Duration
	DailyActiveCount int
}

type CatalogConfig struct {
	DatabaseURL string
	RedisURL    string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := strings.TrimSpace(os.Getenv("PORT"))
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("LIFEPATH_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:          addr,
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:      envDefault("REDIS_URL", "redis://localhost:6379/0"),
		AuthURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("AUTH_URL")), "/"),
		AuthAPIKey:    strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
		EventCooldown: envDurationDefault("LIFEPATH_EVENT_COOLDOWN", 5*time.Second),
		CacheTTL:      envDurationDefault("LIFEPATH_CACHE_TTL", 5*time.Minute),
		ClampStats:    envBoolDefault("LIFEPATH_CLAMP_STATS", false),
		StartAge:      envIntDefault("LIFEPATH_START_AGE", 18),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthURL == "" {
		return cfg, fmt.Errorf("AUTH_URL is required")
	}
	if cfg.AuthAPIKey == "" {
		return cfg, fmt.Errorf("AUTH_API_KEY is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:         envDefault("REDIS_URL", "redis://localhost:6379/0"),
		DailyRotateEvery: envDurationDefault("LIFEPATH_DAILY_ROTATE_EVERY", 24*time.Hour),
		DailyActiveCount: envIntDefault("LIFEPATH_DAILY_ACTIVE", 3),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCatalogFromEnv() (CatalogConfig, error) {
	cfg := CatalogConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
