package config

import (
	"os"
	"testing"
)

var envKeys = []string{
	"PORT", "STORE_DRIVER", "MONGO_URI", "MONGO_DB", "SQLITE_PATH", "REDIS_ADDR", "REDIS_KEY",
	"KAFKA_BROKERS", "CHECKOUT_POLICY", "BCRYPT_COST", "CACHE_TTL", "LOG_LEVEL", "SEED_DEMO",
}

// clearEnv borra las variables de configuración; t.Setenv las restaura al final
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
