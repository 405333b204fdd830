package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = "8080"
	defaultDatabaseURL     = "oloustream.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultShutdownTimeout = "10s"
	defaultMailQueue       = "mail.outbound"
	defaultMetricsPath     = "/metrics"
	defaultChatChannel     = "chat:conversation"
	defaultPartnerRate     = "20"
	defaultPageSize        = "10"
)

type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	ShutdownTimeout time.Duration

	// Empty values disable the integration.
	RedisURL    string
	RabbitMQURL string

	MailQueue      string
	ChatChannel    string
	MetricsEnabled bool
	MetricsPath    string
	CORSOrigins    []string

	// Basis points, 2000 = 20%.
	PartnerDefaultRate int64
	PageSize           int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.RabbitMQURL = strings.TrimSpace(getEnv("RABBITMQ_URL", os.Getenv("AMQP_URL")))
	cfg.MailQueue = strings.TrimSpace(getEnv("MAIL_QUEUE", defaultMailQueue))
	cfg.ChatChannel = strings.TrimSpace(getEnv("CHAT_CHANNEL", defaultChatChannel))
	cfg.MetricsEnabled = parseBoolEnv("METRICS_ENABLED", "true")
	cfg.MetricsPath = strings.TrimSpace(getEnv("METRICS_PATH", defaultMetricsPath))
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	percent, err := parseIntEnv("PARTNER_DEFAULT_RATE", defaultPartnerRate)
	if err != nil {
		return nil, err
	}
	cfg.PartnerDefaultRate = int64(percent) * 100

	cfg.PageSize, err = parseIntEnv("PAGE_SIZE", defaultPageSize)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s port=%s redis=%t rabbitmq=%t metrics=%t",
		cfg.AppEnv, cfg.Port, cfg.RedisURL != "", cfg.RabbitMQURL != "", cfg.MetricsEnabled)

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100")
	}
	if cfg.PartnerDefaultRate < 0 || cfg.PartnerDefaultRate > 10000 {
		return fmt.Errorf("PARTNER_DEFAULT_RATE must be between 0 and 100")
	}
	if cfg.MailQueue == "" {
		return fmt.Errorf("MAIL_QUEUE must not be empty")
	}
	if cfg.MetricsEnabled && !strings.HasPrefix(cfg.MetricsPath, "/") {
		return fmt.Errorf("METRICS_PATH must start with /")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.DatabaseURL, defaultDatabaseURL) {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
