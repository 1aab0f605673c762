package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/ambition_store/internal/mailer"
	"github.com/Skotchmaster/ambition_store/internal/search"
	pkgconfig "github.com/Skotchmaster/ambition_store/pkg/config"
	pkgdb "github.com/Skotchmaster/ambition_store/pkg/db"
)

type Config struct {
	Port     string
	LogLevel string

	DBDriver      string
	DatabaseURL   string
	AutoMigrate   bool
	JWTSecret     []byte
	SessionTTL    time.Duration
	EmailCodeTTL  time.Duration
	PurgeSchedule string

	// ValidationRate is the number of code requests allowed per client per minute.
	ValidationRate int

	SMTP          mailer.SMTPConfig
	KafkaBrokers  []string
	Search        search.Config
	RedisAddr     string
	RedisPassword string
}

// FromEnv reads settings from the environment, filling defaults.
func FromEnv() Config {
	return Config{
		Port:     pkgconfig.EnvDefault("SERVER_PORT", "8080"),
		LogLevel: pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:      pkgconfig.EnvDefault("DB_DRIVER", pkgdb.DriverPostgres),
		DatabaseURL:   pkgconfig.EnvDefault("DATABASE_URL", ""),
		AutoMigrate:   pkgconfig.EnvBoolDefault("DB_AUTOMIGRATE", false),
		JWTSecret:     []byte(pkgconfig.EnvDefault("JWT_SECRET", "")),
		SessionTTL:    pkgconfig.EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		EmailCodeTTL:  pkgconfig.EnvDurationDefault("EMAIL_CODE_TTL", 30*time.Minute),
		PurgeSchedule: pkgconfig.EnvDefault("PURGE_SCHEDULE", "@every 10m"),

		ValidationRate: pkgconfig.EnvIntDefault("VALIDATION_RATE", 5),

		SMTP: mailer.SMTPConfig{
			Host:     pkgconfig.EnvDefault("SMTP_HOST", ""),
			Port:     pkgconfig.EnvIntDefault("SMTP_PORT", 587),
			User:     pkgconfig.EnvDefault("SMTP_USER", ""),
			Password: pkgconfig.EnvDefault("SMTP_PASSWORD", ""),
			From:     pkgconfig.EnvDefault("SMTP_FROM", "no-reply@ambition.local"),
		},
		KafkaBrokers: pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),
		Search: search.Config{
			URL:      pkgconfig.EnvDefault("ES_URL", ""),
			User:     pkgconfig.EnvDefault("ES_USER", ""),
			Password: pkgconfig.EnvDefault("ES_PASSWORD", ""),
			Index:    pkgconfig.EnvDefault("ES_INDEX", "products"),
		},
		RedisAddr:     pkgconfig.EnvDefault("REDIS_ADDR", ""),
		RedisPassword: pkgconfig.EnvDefault("REDIS_PASSWORD", ""),
	}
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := FromEnv()
	pkgconfig.Require(map[string]string{"DATABASE_URL": cfg.DatabaseURL})
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	return cfg
}
