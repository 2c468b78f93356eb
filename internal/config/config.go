package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/drivelane/drivelane/internal/types"
)

type Config struct {
	Port        string
	Environment string

	DBDriver    string
	DatabaseURL string

	JWTSecret    string
	JWTTTL       time.Duration
	CookieDomain string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	AllowedOrigins []string

	RabbitMQURL      string
	RabbitMQExchange string

	DiscordWebhook string
	SlackWebhook   string

	NotificationRetryInterval time.Duration
	NotificationMaxAttempts   int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	envErr := godotenv.Load()

	cfg := &Config{
		Port:                      getEnv("PORT", "3000"),
		Environment:               getEnv("ENVIRONMENT", "development"),
		DBDriver:                  strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		JWTTTL:                    time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour,
		CookieDomain:              os.Getenv("COOKIE_DOMAIN"),
		AdminName:                 getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:                os.Getenv("ADMIN_EMAIL"),
		AdminPassword:             os.Getenv("ADMIN_PASSWORD"),
		AllowedOrigins:            types.ParseOrigins(os.Getenv("CLIENT_URL"), os.Getenv("ALLOWED_ORIGINS")),
		RabbitMQURL:               os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange:          getEnv("RABBITMQ_EXCHANGE", "drivelane.events"),
		DiscordWebhook:            os.Getenv("DISCORD_WEBHOOK_URL"),
		SlackWebhook:              os.Getenv("SLACK_WEBHOOK_URL"),
		NotificationRetryInterval: time.Duration(getEnvInt("NOTIFICATION_RETRY_INTERVAL", 30)) * time.Second,
		NotificationMaxAttempts:   getEnvInt("NOTIFICATION_MAX_ATTEMPTS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envErr != nil {
		fmt.Fprintln(os.Stderr, "warning: .env file not found, using system environment variables")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	switch c.DBDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.NotificationMaxAttempts < 1 {
		return fmt.Errorf("NOTIFICATION_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}
