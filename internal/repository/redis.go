package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"ecobazaarx/internal/models"
)

// DefaultRedisKey es la clave donde se guarda el snapshot
const DefaultRedisKey = "ecobazaarx:snapshot"

// RedisPersister guarda el snapshot como un único documento JSON
type RedisPersister struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisClient crea el cliente y verifica la conexión
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisPersister usa key, o DefaultRedisKey si está vacía
func NewRedisPersister(client *redis.Client, key string, logger *slog.Logger) *RedisPersister {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPersister{client: client, key: key, logger: logger}
}

// Load devuelve nil si la clave no existe
func (r *RedisPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return fromRecord(rec), nil
}

// Save sobrescribe el documento sin expiración
func (r *RedisPersister) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(toRecord(snap))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	r.logger.Debug("Snapshot saved to redis", "key", r.key, "bytes", len(data))
	return nil
}
