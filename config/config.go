package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the crawler service
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Service  ServiceConfig
	Crawler  CrawlerConfig
}

// TelegramConfig holds Telegram MTProto configuration
type TelegramConfig struct {
	APIID         int
	APIHash       string
	Phone         string
	SessionString string
	Proxy         ProxyConfig

	ConnectAttempts   int
	ConnectRetryDelay time.Duration
	AutoConnect       bool
	// RateLimit is the number of API requests per second allowed for the live client
	RateLimit float64
}

// ProxyConfig holds optional proxy settings. An empty Host disables the proxy.
type ProxyConfig struct {
	Type string
	Host string
	Port int
}

// Enabled reports whether a proxy is configured
func (p ProxyConfig) Enabled() bool {
	return p.Host != ""
}

// Address returns host:port of the proxy
func (p ProxyConfig) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration. No brokers disables event publishing.
type KafkaConfig struct {
	Brokers               []string
	TopicMessageIngested  string
	TopicMessageForwarded string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name            string
	Port            string
	ShutdownTimeout time.Duration
}

// CrawlerConfig holds pipeline limits
type CrawlerConfig struct {
	IngestTimeout  time.Duration
	ForwardTimeout time.Duration
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config         *Config
	TelegramConfig *TelegramConfig
	DatabaseConfig *DatabaseConfig
	KafkaConfig    *KafkaConfig
	LoggingConfig  *LoggingConfig
	ServiceConfig  *ServiceConfig
	CrawlerConfig  *CrawlerConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:         cfg,
		TelegramConfig: &cfg.Telegram,
		DatabaseConfig: &cfg.Database,
		KafkaConfig:    &cfg.Kafka,
		LoggingConfig:  &cfg.Logging,
		ServiceConfig:  &cfg.Service,
		CrawlerConfig:  &cfg.Crawler,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	apiID, err := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	proxyPort, err := strconv.Atoi(getEnv("TELEGRAM_PROXY_PORT", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_PROXY_PORT: %w", err)
	}

	attempts, err := strconv.Atoi(getEnv("TELEGRAM_CONNECT_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CONNECT_ATTEMPTS: %w", err)
	}

	rateLimit, err := strconv.ParseFloat(getEnv("TELEGRAM_RATE_LIMIT", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_RATE_LIMIT: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			APIID:         apiID,
			APIHash:       getEnv("TELEGRAM_API_HASH", ""),
			Phone:         getEnv("TELEGRAM_PHONE", ""),
			SessionString: getEnv("TELEGRAM_SESSION_STRING", ""),
			Proxy: ProxyConfig{
				Type: strings.ToLower(getEnv("TELEGRAM_PROXY_TYPE", "socks5")),
				Host: getEnv("TELEGRAM_PROXY_HOST", ""),
				Port: proxyPort,
			},
			ConnectAttempts:   attempts,
			ConnectRetryDelay: getEnvDuration("TELEGRAM_CONNECT_RETRY_DELAY", time.Second),
			AutoConnect:       getEnvBool("TELEGRAM_AUTO_CONNECT", true),
			RateLimit:         rateLimit,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "crawler_user"),
			Password: getEnv("DATABASE_PASSWORD", "crawler_pass"),
			DBName:   getEnv("DATABASE_NAME", "crawler_db"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:               splitList(getEnv("KAFKA_BROKERS", "")),
			TopicMessageIngested:  getEnv("KAFKA_TOPIC_MESSAGE_INGESTED", "message.ingested"),
			TopicMessageForwarded: getEnv("KAFKA_TOPIC_MESSAGES_FORWARDED", "messages.forwarded"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name:            getEnv("SERVICE_NAME", "crawler-service"),
			Port:            getEnv("SERVICE_PORT", "8085"),
			ShutdownTimeout: getEnvDuration("SERVICE_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Crawler: CrawlerConfig{
			IngestTimeout:  getEnvDuration("INGEST_TIMEOUT", 5*time.Minute),
			ForwardTimeout: getEnvDuration("FORWARD_TIMEOUT", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.APIID == 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}

	if c.Telegram.APIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}

	if c.Telegram.ConnectAttempts < 1 {
		return fmt.Errorf("TELEGRAM_CONNECT_ATTEMPTS must be at least 1")
	}

	if c.Telegram.Proxy.Enabled() {
		switch c.Telegram.Proxy.Type {
		case "socks5", "http":
		default:
			return fmt.Errorf("unsupported TELEGRAM_PROXY_TYPE %q", c.Telegram.Proxy.Type)
		}
		if c.Telegram.Proxy.Port <= 0 {
			return fmt.Errorf("TELEGRAM_PROXY_PORT is required when TELEGRAM_PROXY_HOST is set")
		}
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DATABASE_HOST is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvBool gets environment variable as bool with default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
