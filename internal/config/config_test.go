package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "guest", cfg.CheckoutPolicy)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.SeedDemo)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CHECKOUT_POLICY", "strict")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "strict", cfg.CheckoutPolicy)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.SeedDemo)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORE_DRIVER", "postgres"},
		{"CHECKOUT_POLICY", "maybe"},
		{"BCRYPT_COST", "ten"},
		{"CACHE_TTL", "forever"},
		{"LOG_LEVEL", "loud"},
		{"SEED_DEMO", "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			chdir(t, t.TempDir())
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MongoNeedsURI(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

// chdir cambia el directorio de trabajo durante el test y lo restaura al terminar.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
