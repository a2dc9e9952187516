package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"statuswatch/app/internal/models"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string

	// Store
	StoreBackend string // sqlite, redis or memory
	DBPath       string
	RedisAddr    string
	RedisDB      int

	// Polling
	EnablePoller bool
	PollInterval time.Duration
	CheckTimeout time.Duration

	// History
	RetentionDays int

	// Presenter
	DegradedMs int
	CacheTTL   time.Duration

	// Services (loaded from env)
	Services []models.MonitoredService
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "4555"),
		StoreBackend:  strings.ToLower(getenv("STORE_BACKEND", "sqlite")),
		DBPath:        getenv("DB_PATH", "./statuswatch.db"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisDB:       envInt("REDIS_DB", 0),
		EnablePoller:  envBool("ENABLE_POLLER", true),
		PollInterval:  envDurSecs("POLL_SECONDS", 60),
		CheckTimeout:  time.Duration(envInt("CHECK_TIMEOUT_MS", 5000)) * time.Millisecond,
		RetentionDays: envInt("RETENTION_DAYS", 30),
		DegradedMs:    envInt("DEGRADED_MS", 200),
		CacheTTL:      envDurSecs("STATUS_CACHE_SECONDS", 10),
	}
	if cfg.RetentionDays < 1 {
		cfg.RetentionDays = 1
	}

	services, err := ParseServices(getenv("SERVICES", ""))
	if err != nil {
		return nil, err
	}
	cfg.Services = services

	return cfg, nil
}

// ParseServices builds the monitored service list from a comma-separated
// list of name=baseURL pairs. The health path defaults to /health and can be
// overridden per service with <NAME>_HEALTH_PATH (name uppercased, dashes
// replaced with underscores).
func ParseServices(raw string) ([]models.MonitoredService, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var services []models.MonitoredService
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url, found := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !found || name == "" || url == "" {
			return nil, fmt.Errorf("config: malformed SERVICES entry %q (want name=baseURL)", entry)
		}
		if seen[name] {
			return nil, fmt.Errorf("config: duplicate service name %q", name)
		}
		seen[name] = true

		services = append(services, models.MonitoredService{
			Name:       name,
			BaseURL:    url,
			HealthPath: healthPathFor(name),
		})
	}
	return services, nil
}

func healthPathFor(name string) string {
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_HEALTH_PATH"
	path := getenv(key, "/health")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Helper functions
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(getenv(k, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func envDurSecs(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Second
}
