package catalog

import (
	"context"
	"encoding/json"
	"time"

	"coolie/models"
	"coolie/utils"

	"github.com/go-redis/redis/v8"
)

// Cache stores the raw catalog between upstream refreshes.
type Cache interface {
	Get(ctx context.Context) (*models.Catalog, error)
	Set(ctx context.Context, catalog models.Catalog) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &RedisCache{client: client, ttl: ttl}
}

const catalogKey = utils.CatalogCachePrefix + "all"

// Get returns nil without error on a cache miss.
func (c *RedisCache) Get(ctx context.Context) (*models.Catalog, error) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cat models.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *RedisCache) Set(ctx context.Context, catalog models.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, data, c.ttl).Err()
}
