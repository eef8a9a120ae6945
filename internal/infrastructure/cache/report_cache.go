package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shoppos/internal/domain/reports"
)

const defaultPrefix = "shoppos:reports"

// ReportCache stores report results as JSON. Keys embed a generation number;
// Invalidate bumps the generation so every older entry becomes unreachable
// and expires on its own TTL.
type ReportCache struct {
	client redis.Cmdable
	prefix string
}

var _ reports.Cache = (*ReportCache)(nil)

// NewReportCache creates a report cache over client.
func NewReportCache(client redis.Cmdable) *ReportCache {
	return &ReportCache{client: client, prefix: defaultPrefix}
}

func (c *ReportCache) genKey() string {
	return c.prefix + ":gen"
}

func (c *ReportCache) dataKey(gen int64, key string) string {
	return c.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *ReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

// Get decodes the cached value into dest.
func (c *ReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}

	raw, err := c.client.Get(ctx, c.dataKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under the current generation.
func (c *ReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.dataKey(gen, key), payload, ttl).Err()
}

// Invalidate starts a new generation.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.genKey()).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}
