package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

var _ ResultCache = (*Cache)(nil)

// Cache stores aggregation results in Redis. Keys carry a per-process instance ID;
// snapshot versions restart at zero.
type Cache struct {
	client   *redis.Client
	instance string
}

func NewCache(ctx context.Context, addr string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &Cache{client: client, instance: uuid.NewString()}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// GetResult returns a cached result. Undecodable entries are dropped and reported as a miss.
func (c *Cache) GetResult(ctx context.Context, key string) (*aggregate.Result, bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var result aggregate.Result
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			slog.Warn("Failed to delete cache entry", "key", key, "error", delErr)
		}
		return nil, false, nil
	}

	return &result, true, nil
}

func (c *Cache) SetResult(ctx context.Context, key string, result *aggregate.Result, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for key %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}

func (c *Cache) Health(ctx context.Context) map[string]any {
	health := map[string]any{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if size, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = size
	}

	return health
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Key(opts aggregate.Options, version uint64) string {
	return ResultKey(c.instance, opts, version)
}

// ResultKey identifies one aggregation request against one snapshot version of one process.
// Keyword order and case do not matter.
func ResultKey(instance string, opts aggregate.Options, version uint64) string {
	views := make([]string, len(opts.Views))
	for i, v := range opts.Views {
		views[i] = string(v)
	}
	sort.Strings(views)

	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	sort.Strings(keywords)

	raw := fmt.Sprintf("%s|%d|%s|%d", strings.Join(views, ","), opts.WindowDays, strings.Join(keywords, ","), opts.Limit)
	hash := sha256.Sum256([]byte(raw))

	return fmt.Sprintf("aggregate:%s:v%d:%x", instance, version, hash[:8])
}
