package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalog/internal/domain"
)

const (
	// VariantOptionsKey prefixes every facet map entry.
	VariantOptionsKey = "catalog:variant_options"
	// VariantOptionsGenKey holds the current generation. Invalidate bumps it,
	// so entries written under an older generation are never read again.
	VariantOptionsGenKey = VariantOptionsKey + ":gen"
)

// VariantOptionsCache implements repository.VariantOptionsCache using Redis.
type VariantOptionsCache struct {
	client redis.UniversalClient
}

// NewVariantOptionsCache creates a new Redis-backed facet cache.
func NewVariantOptionsCache(client redis.UniversalClient) *VariantOptionsCache {
	return &VariantOptionsCache{client: client}
}

func dataKey(gen int64) string {
	return fmt.Sprintf("%s:%d", VariantOptionsKey, gen)
}

// Get returns the facet map cached under the current generation together
// with that generation. On a miss gen is still valid and should be passed to
// Set once the map has been recomputed.
func (c *VariantOptionsCache) Get(ctx context.Context) (domain.VariantOptions, int64, bool, error) {
	gen, err := c.client.Get(ctx, VariantOptionsGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("redis get variant options generation: %w", err)
	}

	data, err := c.client.Get(ctx, dataKey(gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, false, nil
		}
		return nil, gen, false, fmt.Errorf("redis get variant options: %w", err)
	}

	var opts domain.VariantOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, gen, false, fmt.Errorf("unmarshal variant options: %w", err)
	}
	return opts, gen, true, nil
}

// Set stores opts under gen for ttl. A map computed before an Invalidate
// lands under a retired generation and is ignored by later reads.
func (c *VariantOptionsCache) Set(ctx context.Context, gen int64, opts domain.VariantOptions, ttl time.Duration) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshal variant options: %w", err)
	}
	if err := c.client.Set(ctx, dataKey(gen), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set variant options: %w", err)
	}
	return nil
}

// Invalidate retires the current generation.
func (c *VariantOptionsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, VariantOptionsGenKey).Err(); err != nil {
		return fmt.Errorf("redis incr variant options generation: %w", err)
	}
	return nil
}
