package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/tripwise/internal/types"
)

const catalogKey = "tripwise:catalog:entries"

// Cache stores the whole entity-name catalog under a single key.
type Cache interface {
	Get(ctx context.Context) ([]types.CatalogEntry, bool, error)
	Set(ctx context.Context, entries []types.CatalogEntry) error
	Delete(ctx context.Context) error
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)

type MemoryCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (m *MemoryCache) Get(_ context.Context) ([]types.CatalogEntry, bool, error) {
	v, found := m.cache.Get(catalogKey)
	if !found {
		return nil, false, nil
	}
	entries, ok := v.([]types.CatalogEntry)
	if !ok {
		m.cache.Delete(catalogKey)
		return nil, false, nil
	}
	return entries, true, nil
}

func (m *MemoryCache) Set(_ context.Context, entries []types.CatalogEntry) error {
	m.cache.Set(catalogKey, entries, m.ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context) error {
	m.cache.Delete(catalogKey)
	return nil
}

// RedisCache shares the catalog between API replicas and the Telegram bot.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]types.CatalogEntry, bool, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get catalog: %w", err)
	}
	var entries []types.CatalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return entries, true, nil
}

func (c *RedisCache) Set(ctx context.Context, entries []types.CatalogEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.client.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis delete catalog: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings the configured Redis instance.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
