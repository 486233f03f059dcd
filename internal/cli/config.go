package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the CLI configuration, read from FIELDOPS_* variables.
type Config struct {
	BaseURL        string
	Store          string // file, redis, memory or miniredis
	TokenFile      string
	RedisAddr      string
	RedisPrefix    string
	RedisTTL       time.Duration
	Timeout        time.Duration
	RefreshTimeout time.Duration
	LogLevel       string
	LogFormat      string
	Audit          bool
	Metrics        bool
}

// LoadConfig reads .env when present and then the environment. Variables
// already set in the environment win over .env.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		BaseURL:        getEnvOrDefault("FIELDOPS_BASE_URL", "http://localhost:8000"),
		Store:          getEnvOrDefault("FIELDOPS_STORE", "file"),
		TokenFile:      getEnvOrDefault("FIELDOPS_TOKEN_FILE", defaultTokenFile()),
		RedisAddr:      getEnvOrDefault("FIELDOPS_REDIS_ADDR", "localhost:6379"),
		RedisPrefix:    getEnvOrDefault("FIELDOPS_REDIS_PREFIX", "fieldops"),
		RedisTTL:       getEnvOrDefaultDuration("FIELDOPS_REDIS_TTL", 0),
		Timeout:        getEnvOrDefaultDuration("FIELDOPS_TIMEOUT", 30*time.Second),
		RefreshTimeout: getEnvOrDefaultDuration("FIELDOPS_REFRESH_TIMEOUT", 15*time.Second),
		LogLevel:       getEnvOrDefault("FIELDOPS_LOG_LEVEL", "warning"),
		LogFormat:      getEnvOrDefault("FIELDOPS_LOG_FORMAT", "text"),
		Audit:          getEnvOrDefaultBool("FIELDOPS_AUDIT", false),
		Metrics:        getEnvOrDefaultBool("FIELDOPS_METRICS", false),
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fieldops-credentials.json"
	}
	return filepath.Join(dir, "fieldops", "credentials.json")
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvOrDefaultBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvOrDefaultDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
