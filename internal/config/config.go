package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers selectable with STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreBadger   = "badger"
)

// Config is the process configuration, loaded once at start-up.
type Config struct {
	Port            string
	Environment     string
	StoreDriver     string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	BadgerPath      string
	StoreTimeout    time.Duration
	RabbitMQURL     string
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimit       int
	StaticDir       string
	ProxyHeader     string
}

// Load reads an optional .env file, then the environment, then overrides.
// Override keys use the environment variable names (e.g. "STORE_DRIVER").
func Load(envFile string, overrides map[string]string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("PORT", ":3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", "")
	v.SetDefault("DATABASE_URL", "kontak.db")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "kontak")
	v.SetDefault("MONGODB_COLLECTION", "submissions")
	v.SetDefault("BADGER_PATH", "data/badger")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("BODY_LIMIT", 10*1024)
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("PROXY_HEADER", "")
	v.AutomaticEnv()

	for key, value := range overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	cfg := &Config{
		Port:            normalizePort(v.GetString("PORT")),
		Environment:     v.GetString("APP_ENV"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		MongoURI:        v.GetString("MONGODB_URI"),
		MongoDatabase:   v.GetString("MONGODB_DATABASE"),
		MongoCollection: v.GetString("MONGODB_COLLECTION"),
		BadgerPath:      v.GetString("BADGER_PATH"),
		StoreTimeout:    v.GetDuration("STORE_TIMEOUT"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		BodyLimit:       v.GetInt("BODY_LIMIT"),
		StaticDir:       v.GetString("STATIC_DIR"),
		ProxyHeader:     v.GetString("PROXY_HEADER"),
	}

	driver, err := resolveStoreDriver(v.GetString("STORE_DRIVER"), cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	cfg.StoreDriver = driver

	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.BodyLimit <= 0 {
		return nil, fmt.Errorf("BODY_LIMIT must be positive, got %d", cfg.BodyLimit)
	}
	return cfg, nil
}

// IsDemo reports whether submissions are only kept in memory.
func (c *Config) IsDemo() bool {
	return c.StoreDriver == StoreMemory
}

func resolveStoreDriver(driver, mongoURI string) (string, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case "":
		if mongoURI != "" {
			return StoreMongo, nil
		}
		return StoreMemory, nil
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo, StoreBadger:
		return driver, nil
	default:
		return "", fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}

func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
