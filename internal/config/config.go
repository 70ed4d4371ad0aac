package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQL   = "sql"
	DriverMongo = "mongo"

	defaultJWTSecret = "change-me-jwt-secret"
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDB     string `mapstructure:"MONGO_DB"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	BookingCurrency    string        `mapstructure:"BOOKING_CURRENCY"`
	BookingMinDuration int           `mapstructure:"BOOKING_MIN_DURATION_MIN"`
	BookingMaxDuration int           `mapstructure:"BOOKING_MAX_DURATION_MIN"`
	LockTTL            time.Duration `mapstructure:"LOCK_TTL"`

	RateLimitPerSec float64       `mapstructure:"RATE_LIMIT_PER_SEC"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	StudioCacheTTL  time.Duration `mapstructure:"STUDIO_CACHE_TTL"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQL)
	v.SetDefault("DATABASE_URL", "punchin.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "punchin")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BOOKING_CURRENCY", "USD")
	v.SetDefault("BOOKING_MIN_DURATION_MIN", 30)
	v.SetDefault("BOOKING_MAX_DURATION_MIN", 720)
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("RATE_LIMIT_PER_SEC", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("STUDIO_CACHE_TTL", "30s")
	v.SetDefault("CORS_ORIGINS", "*")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.BookingCurrency = strings.ToUpper(strings.TrimSpace(cfg.BookingCurrency))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DBDriver != DriverSQL && cfg.DBDriver != DriverMongo {
		return fmt.Errorf("DB_DRIVER must be one of: sql, mongo")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be > 0")
	}
	if cfg.StudioCacheTTL <= 0 {
		return fmt.Errorf("STUDIO_CACHE_TTL must be > 0")
	}
	if cfg.BookingMinDuration <= 0 || cfg.BookingMaxDuration <= 0 {
		return fmt.Errorf("booking durations must be > 0")
	}
	if cfg.BookingMinDuration > cfg.BookingMaxDuration {
		return fmt.Errorf("BOOKING_MIN_DURATION_MIN must not exceed BOOKING_MAX_DURATION_MIN")
	}
	if len(cfg.BookingCurrency) != 3 {
		return fmt.Errorf("BOOKING_CURRENCY must be a 3-letter code")
	}
	if cfg.RateLimitPerSec <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit values must be > 0")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
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
