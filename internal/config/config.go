package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gemora/internal/models"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string
	RedisURL string // optional; enables the Redis-backed quota store

	// Upstream text-generation provider (OpenAI-compatible)
	UpstreamBaseURL string
	UpstreamAPIKey  string
	UpstreamModel   string
	UpstreamTimeout time.Duration

	// Advisor gateway limits
	HourlyQuota     int           // sliding-window requests per identity per hour
	MinInterval     time.Duration // session gate cooldown between requests
	CacheTTL        time.Duration // response cache entry lifetime
	CacheSweepBound int           // cache size that triggers an expiry sweep
	MaxMessageLen   int           // longest accepted query text

	// Optional advisor.yaml policy file (deny-list and vocabulary overrides)
	PolicyFile string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3001"),
		MongoURI: getEnv("MONGODB_URI", ""),
		RedisURL: getEnv("REDIS_URL", ""),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://api.openai.com/v1"),
		UpstreamAPIKey:  getEnv("UPSTREAM_API_KEY", ""),
		UpstreamModel:   getEnv("UPSTREAM_MODEL", "gpt-4o-mini"),
		UpstreamTimeout: getDurationEnv("UPSTREAM_TIMEOUT", 20*time.Second),

		HourlyQuota:     getIntEnv("ADVISOR_HOURLY_QUOTA", 15),
		MinInterval:     getDurationEnv("ADVISOR_MIN_INTERVAL", 10*time.Second),
		CacheTTL:        getDurationEnv("ADVISOR_CACHE_TTL", 10*time.Minute),
		CacheSweepBound: getIntEnv("ADVISOR_CACHE_SWEEP_BOUND", 100),
		MaxMessageLen:   getIntEnv("ADVISOR_MAX_MESSAGE_LEN", 100),

		PolicyFile: getEnv("ADVISOR_POLICY_FILE", ""),
	}
}

// LoadPolicy loads advisor policy overrides from a YAML file
func LoadPolicy(filePath string) (*models.AdvisorPolicy, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var policy models.AdvisorPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	return &policy, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
