package cache

import (
	"context"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

type ResultCache interface {
	Key(opts aggregate.Options, version uint64) string
	GetResult(ctx context.Context, key string) (*aggregate.Result, bool, error)
	SetResult(ctx context.Context, key string, result *aggregate.Result, ttl time.Duration) error
	Health(ctx context.Context) map[string]any
	Close() error
}
