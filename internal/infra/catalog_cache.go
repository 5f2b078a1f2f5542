package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productCachePrefix = "catalog:product:"

// ProductCache stores rendered product details in Redis. Every operation is
// best effort: a Redis outage degrades to database reads, never to errors.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id uuid.UUID) string { return productCachePrefix + id.String() }

func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, bool) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *ProductCache) Set(ctx context.Context, id uuid.UUID, p *dto.ProductResponse) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(id), b, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("product_id", id.String()).Msg("catalog cache: set failed")
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("catalog cache: invalidate failed")
	}
}

// Flush drops every cached product. Used when a category or brand rename
// changes data embedded in many product payloads.
func (c *ProductCache) Flush(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, productCachePrefix+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			c.rdb.Del(ctx, batch...)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		c.rdb.Del(ctx, batch...)
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("catalog cache: flush failed")
	}
}
