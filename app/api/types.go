package api

import (
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
	"github.com/lysyi3m/menhub-monitor/app/cache"
	"github.com/lysyi3m/menhub-monitor/app/caption"
	"github.com/lysyi3m/menhub-monitor/app/database"
	"github.com/lysyi3m/menhub-monitor/app/feed"
	"github.com/lysyi3m/menhub-monitor/app/tasks"
)

type AggregatorInterface interface {
	Run(batches []aggregate.SourceBatch, opts aggregate.Options, now time.Time) (*aggregate.Result, error)
}

var _ AggregatorInterface = (*aggregate.Pipeline)(nil)

type SnapshotInterface interface {
	Batches() ([]aggregate.SourceBatch, uint64)
	Version() uint64
	FetchedAt(name string) (time.Time, bool)
}

var _ SnapshotInterface = (*feed.Snapshot)(nil)

// Deps wires the handler. Cache and Scheduler may be nil.
type Deps struct {
	Pipeline    AggregatorInterface
	Snapshot    SnapshotInterface
	Cache       cache.ResultCache
	ConfigCache *feed.ConfigCache
	FeedRepo    database.FeedRepository
	Scheduler   tasks.TaskSchedulerInterface
	Drafter     *caption.Drafter

	CacheTTL   time.Duration
	WindowDays int
	MaxResults int
	Version    string
}

type Handler struct {
	pipeline    AggregatorInterface
	snapshot    SnapshotInterface
	cache       cache.ResultCache
	configCache *feed.ConfigCache
	feedRepo    database.FeedRepository
	scheduler   tasks.TaskSchedulerInterface
	drafter     *caption.Drafter
	generator   *feed.Generator

	cacheTTL   time.Duration
	windowDays int
	maxResults int
	version    string
	now        func() time.Time
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
