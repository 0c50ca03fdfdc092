package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de persistencia soportados
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	Port           string
	StoreDriver    string
	MongoURI       string
	MongoDB        string
	SQLitePath     string
	RedisAddr      string
	RedisKey       string
	KafkaBrokers   []string
	CheckoutPolicy string
	BcryptCost     int
	CacheTTL       time.Duration
	LogLevel       slog.Level
	SeedDemo       bool
}

// LoadConfig lee el entorno; un .env local se carga si existe
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Warn("Error loading .env file", "error", err)
		} else {
			slog.Info(".env file loaded")
		}
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDB:        getEnv("MONGO_DB", "ecobazaarx"),
		SQLitePath:     getEnv("SQLITE_PATH", "ecobazaarx.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisKey:       getEnv("REDIS_KEY", ""),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "")),
		CheckoutPolicy: strings.ToLower(getEnv("CHECKOUT_POLICY", "guest")),
	}

	var err error
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "2m")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.SeedDemo, err = strconv.ParseBool(getEnv("SEED_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite, DriverRedis:
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.CheckoutPolicy != "guest" && cfg.CheckoutPolicy != "strict" {
		return nil, fmt.Errorf("unknown CHECKOUT_POLICY %q", cfg.CheckoutPolicy)
	}

	return cfg, nil
}

// NewLogger crea el logger de texto con el nivel configurado
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
