package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaarx/internal/config"
	"ecobazaarx/internal/events"
	"ecobazaarx/internal/market"
	"ecobazaarx/internal/models"
	"ecobazaarx/internal/repository"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		StoreDriver:    driver,
		CheckoutPolicy: "guest",
		BcryptCost:     4,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewState_MemorySeed(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.SeedDemo = true

	state, closeFn, err := NewState(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer closeFn()

	assert.Len(t, state.Users(), 4)
	assert.Len(t, state.Products(models.ProductFilter{}), 2)
}

func TestNewState_SQLiteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.DriverSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "market.db")
	cfg.SeedDemo = true

	first, closeFirst, err := NewState(ctx, cfg, discardLogger())
	require.NoError(t, err)
	users := first.Users()
	closeFirst()

	second, closeSecond, err := NewState(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer closeSecond()

	// El seed no se repite porque ya hay usuarios restaurados
	assert.Len(t, second.Users(), len(users))
	_, err = second.LoginUser(users[0].Email, market.DemoPassword)
	assert.NoError(t, err)
}

func TestNewState_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig(config.DriverRedis)
	cfg.RedisAddr = mr.Addr()
	cfg.SeedDemo = true

	_, closeFn, err := NewState(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer closeFn()

	assert.True(t, mr.Exists(repository.DefaultRedisKey))
}

func TestOpenPersister_UnknownDriver(t *testing.T) {
	_, _, err := OpenPersister(context.Background(), testConfig("cassandra"), discardLogger())
	assert.Error(t, err)
}

func TestNewPublisher_WithoutBrokers(t *testing.T) {
	p, closeFn, err := NewPublisher(context.Background(), testConfig(config.DriverMemory), discardLogger())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &events.LogPublisher{}, p)
}

func TestRequireDurableStore(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, ""} {
		err := RequireDurableStore(testConfig(driver))
		assert.ErrorIs(t, err, ErrEphemeralStore, "driver %q", driver)
	}
	for _, driver := range []string{config.DriverSQLite, config.DriverMongo, config.DriverRedis} {
		assert.NoError(t, RequireDurableStore(testConfig(driver)), "driver %q", driver)
	}
}

func TestNewState_FlushConfirmsSQLiteWrite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.DriverSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "flush.db")

	state, closeFn, err := NewState(ctx, cfg, discardLogger())
	require.NoError(t, err)
	_, err = state.RegisterUser(ctx, models.UserCandidate{Name: "Root", Email: "root@x.com", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, state.Flush(ctx))
	closeFn()

	reopened, closeAgain, err := NewState(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer closeAgain()
	users := reopened.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "root@x.com", users[0].Email)
}
