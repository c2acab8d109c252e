// Package config centralizes environment-driven configuration for the
// GateKeeper process. Values are read once at startup and treated as
// immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Limits   LimitsConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port string
}

type RedisConfig struct {
	URL string
}

// DatabaseConfig selects the client-record backend. Dialect is either
// "sqlite" (default, file-backed) or "postgres".
type DatabaseConfig struct {
	Dialect  string
	Storage  string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// LimitsConfig holds the system-default quota applied when no
// per-identifier override exists.
type LimitsConfig struct {
	DefaultLimit  int
	DefaultWindow time.Duration
}

type SecurityConfig struct {
	BcryptCost int
}

// Load reads configuration from the environment, loading a .env file
// first when one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	defaultLimit, err := intEnv("DEFAULT_LIMIT", 10)
	if err != nil {
		return Config{}, err
	}
	if defaultLimit <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_LIMIT must be positive, got %d", defaultLimit)
	}

	defaultWindow, err := intEnv("DEFAULT_WINDOW", 60)
	if err != nil {
		return Config{}, err
	}
	if defaultWindow <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_WINDOW must be positive, got %d", defaultWindow)
	}

	bcryptCost, err := intEnv("BCRYPT_ROUNDS", 10)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: ServerConfig{Port: getEnv("PORT", "3000")},
		Redis:  RedisConfig{URL: getEnv("REDIS_URL", "redis://127.0.0.1:6379")},
		Database: DatabaseConfig{
			Dialect:  getEnv("DB_DIALECT", "sqlite"),
			Storage:  getEnv("DB_STORAGE", "./gatekeeper.sqlite"),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Limits: LimitsConfig{
			DefaultLimit:  defaultLimit,
			DefaultWindow: time.Duration(defaultWindow) * time.Second,
		},
		Security: SecurityConfig{BcryptCost: bcryptCost},
	}, nil
}

// PostgresDSN renders the database settings as a GORM postgres DSN.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
