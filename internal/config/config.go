package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Channel  ChannelConfig
	Webhook  WebhookConfig
	Sync     SyncConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	URL             string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

// ChannelConfig holds Channel Talk open API credentials and client tuning.
type ChannelConfig struct {
	BaseURL        string
	AccessKey      string
	AccessSecret   string
	RequestTimeout time.Duration
	MinInterval    time.Duration
	MaxRetries     int
}

// WebhookConfig holds inbound webhook settings.
type WebhookConfig struct {
	// Secret enables HMAC-SHA256 signature verification when non-empty.
	Secret string
}

// HelpPolicy decides which non-assignee managers qualify as helpers.
type HelpPolicy string

const (
	// PolicyFollowers counts only managers in the chat's follower set.
	PolicyFollowers HelpPolicy = "followers"
	// PolicyAny counts every non-assignee manager.
	PolicyAny HelpPolicy = "any"
)

// CountMode decides how many events one helper can produce per scan window.
type CountMode string

const (
	// CountFirst records each helper once per scan window.
	CountFirst CountMode = "first"
	// CountEvery records every qualifying message.
	CountEvery CountMode = "every"
)

// SyncConfig holds sync orchestration settings.
type SyncConfig struct {
	Secret           string
	Budget           time.Duration
	BatchSize        int
	IncrementalLimit int
	FullLimit        int
	WindowMinutes    int
	MessageLimit     int
	Policy           HelpPolicy
	Mode             CountMode
	IncrementalCron  string
	RecomputeCron    string
	MaxHelpsPerDay   int
	MaxCharsPerMsg   int
	// NameOverrides maps counselor IDs to display names, taking precedence
	// over whatever the remote system reports.
	NameOverrides map[string]string
}

// WorkerConfig holds queue consumer configuration.
type WorkerConfig struct {
	Concurrency   int
	BatchSize     int
	StreamName    string
	ConsumerGroup string
	ConsumerName  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 8080)),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "sns_help_counter"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		},
		Redis: loadRedisConfig(),
		Channel: ChannelConfig{
			BaseURL:        getEnv("CHANNELTALK_BASE_URL", "https://api.channel.io/open/v5"),
			AccessKey:      getEnv("CHANNELTALK_ACCESS_KEY", ""),
			AccessSecret:   getEnv("CHANNELTALK_SECRET", ""),
			RequestTimeout: getEnvAsDuration("CHANNELTALK_TIMEOUT", 8*time.Second),
			MinInterval:    getEnvAsDuration("CHANNELTALK_MIN_INTERVAL", 100*time.Millisecond),
			MaxRetries:     getEnvAsInt("CHANNELTALK_MAX_RETRIES", 3),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", ""),
		},
		Sync: SyncConfig{
			Secret:           getEnv("SYNC_SECRET", ""),
			Budget:           getEnvAsDuration("SYNC_BUDGET", 25*time.Second),
			BatchSize:        getEnvAsInt("SYNC_BATCH_SIZE", 10),
			IncrementalLimit: getEnvAsInt("SYNC_INCREMENTAL_LIMIT", 100),
			FullLimit:        getEnvAsInt("SYNC_FULL_LIMIT", 1000),
			WindowMinutes:    getEnvAsInt("SYNC_WINDOW_MINUTES", 10),
			MessageLimit:     getEnvAsInt("SYNC_MESSAGE_LIMIT", 50),
			Policy:           HelpPolicy(getEnv("HELP_POLICY", string(PolicyFollowers))),
			Mode:             CountMode(getEnv("HELP_COUNT_MODE", string(CountFirst))),
			IncrementalCron:  getEnv("SYNC_INCREMENTAL_CRON", "*/10 * * * *"),
			RecomputeCron:    getEnv("SYNC_RECOMPUTE_CRON", "50 23 * * *"),
			MaxHelpsPerDay:   getEnvAsInt("MAX_HELPS_PER_DAY", 200),
			MaxCharsPerMsg:   getEnvAsInt("MAX_CHARS_PER_MESSAGE", 5000),
			NameOverrides:    getEnvAsMap("COUNSELOR_NAMES"),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvAsInt("WORKER_CONCURRENCY", 5),
			BatchSize:     getEnvAsInt("WORKER_BATCH_SIZE", 10),
			StreamName:    getEnv("WORKER_STREAM_NAME", "webhook-events"),
			ConsumerGroup: getEnv("WORKER_CONSUMER_GROUP", "help-trackers"),
			ConsumerName:  getEnv("WORKER_CONSUMER_NAME", "worker-1"),
		},
	}

	if err := cfg.Sync.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown policy and count-mode values.
func (c *SyncConfig) Validate() error {
	switch c.Policy {
	case PolicyFollowers, PolicyAny:
	default:
		return fmt.Errorf("invalid HELP_POLICY %q (want %q or %q)", c.Policy, PolicyFollowers, PolicyAny)
	}
	switch c.Mode {
	case CountFirst, CountEvery:
	default:
		return fmt.Errorf("invalid HELP_COUNT_MODE %q (want %q or %q)", c.Mode, CountFirst, CountEvery)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.Database + "?sslmode=disable"
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *RedisConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("Redis host is empty. Set REDIS_URL or REDIS_HOST environment variable")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid Redis port: %d", c.Port)
	}
	return nil
}

func loadRedisConfig() RedisConfig {
	redisURL := getEnv("REDIS_URL", "")
	if redisURL != "" {
		return parseRedisURL(redisURL)
	}

	return RedisConfig{
		Host:     getEnv("REDISHOST", getEnv("REDIS_HOST", "")),
		Port:     getEnvAsInt("REDISPORT", getEnvAsInt("REDIS_PORT", 6379)),
		Password: getEnv("REDISPASSWORD", getEnv("REDIS_PASSWORD", "")),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func parseRedisURL(redisURL string) RedisConfig {
	cfg := RedisConfig{
		URL:  redisURL,
		Port: 6379,
		DB:   0,
	}

	if !strings.HasPrefix(redisURL, "redis://") && !strings.HasPrefix(redisURL, "rediss://") {
		redisURL = "redis://" + redisURL
		cfg.URL = redisURL
	}

	u, err := url.Parse(redisURL)
	if err != nil {
		return cfg
	}

	if u.User != nil {
		cfg.Password, _ = u.User.Password()
	}

	cfg.Host = u.Hostname()
	if u.Port() != "" {
		if port, err := strconv.Atoi(u.Port()); err == nil {
			cfg.Port = port
		}
	}

	if u.Path != "" {
		dbStr := strings.TrimPrefix(u.Path, "/")
		if dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				cfg.DB = db
			}
		}
	}

	return cfg
}

// Addr returns the server address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsMap parses "key=value,key=value" pairs. Malformed pairs are
// skipped.
func getEnvAsMap(key string) map[string]string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	m := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		m[k] = v
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
