package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Identity  IdentityConfig
	Outbox    OutboxConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Location *time.Location
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	// Migrations selects how the schema is brought up at startup: "auto"
	// runs gorm AutoMigrate, "sql" runs the embedded golang-migrate files.
	Migrations string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

type IdentityConfig struct {
	// Bypass skips provisioning and deprovisioning of external identities.
	Bypass     bool
	BcryptCost int
	// ClaimsTTL caches verified tokens per process. Deprovisioning evicts the
	// identity's tokens only in the process that did it; other instances
	// accept them until the TTL runs out. Zero disables the cache.
	ClaimsTTL time.Duration
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TIMEZONE", "America/Santo_Domingo")
	viper.SetDefault("DB_MIGRATIONS", "auto")
	viper.SetDefault("JWT_ISSUER", "hospicloud")
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 20)
	viper.SetDefault("OUTBOX_MAX_ATTEMPTS", 5)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	location, err := time.LoadLocation(viper.GetString("TIMEZONE"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
			Location: location,
		},
		DB: DBConfig{
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			User:       viper.GetString("DB_USER"),
			Password:   viper.GetString("DB_PASSWORD"),
			Name:       viper.GetString("DB_NAME"),
			Migrations: viper.GetString("DB_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			Issuer:       viper.GetString("JWT_ISSUER"),
			AccessExpiry: durationOr("JWT_ACCESS_EXPIRY", time.Hour),
		},
		Identity: IdentityConfig{
			Bypass:     viper.GetBool("IDENTITY_BYPASS"),
			BcryptCost: viper.GetInt("BCRYPT_COST"),
			ClaimsTTL:  durationOr("IDENTITY_CLAIMS_TTL", 30*time.Second),
		},
		Outbox: OutboxConfig{
			PollInterval: durationOr("OUTBOX_POLL_INTERVAL", 15*time.Second),
			BatchSize:    viper.GetInt("OUTBOX_BATCH_SIZE"),
			MaxAttempts:  viper.GetInt("OUTBOX_MAX_ATTEMPTS"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
