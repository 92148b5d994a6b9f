package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/redis/go-redis/v9"
)

// SnapshotKey — ключ Redis, под которым хранится последний снимок.
const SnapshotKey = "social-pulse:snapshot"

// DefaultSnapshotTTL — время жизни снимка в кэше по умолчанию.
const DefaultSnapshotTTL = 24 * time.Hour

// RedisCache хранит последний снимок в Redis, чтобы перезапущенный процесс
// мог продолжить с того же состояния.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache создаёт кэш поверх клиента. ttl <= 0 заменяется на DefaultSnapshotTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisCache{client: client, ttl: ttl, timeout: 2 * time.Second}
}

// NewRedisClient подключается к Redis по адресу addr и проверяет соединение.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", addr, err)
	}
	return client, nil
}

// SaveSnapshot записывает снимок в кэш.
func (c *RedisCache) SaveSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot читает снимок из кэша. Если снимка нет, возвращает ErrNoSnapshot.
func (c *RedisCache) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	var snapshot models.Snapshot

	data, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot, ErrNoSnapshot
	}
	if err != nil {
		return snapshot, fmt.Errorf("failed to read cached snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return snapshot, nil
}

// OnSnapshot сохраняет снимок; используется как наблюдатель тиков.
func (c *RedisCache) OnSnapshot(snapshot models.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.SaveSnapshot(ctx, snapshot)
}
