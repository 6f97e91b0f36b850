package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/menhub-monitor/app/database"
	"github.com/lysyi3m/menhub-monitor/app/feed"
)

// SyncFeedConfigTask makes sure a configured feed has a status row.
type SyncFeedConfigTask struct {
	Task
	FeedConfig *feed.Config
	feedRepo   database.FeedRepository
}

func NewSyncFeedConfigTask(feedName string, feedConfig *feed.Config, feedRepo database.FeedRepository) *SyncFeedConfigTask {
	return &SyncFeedConfigTask{
		Task:       NewTask(TaskTypeSyncFeedConfig, feedName),
		FeedConfig: feedConfig,
		feedRepo:   feedRepo,
	}
}

func (t *SyncFeedConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.feedRepo.UpsertFeed(t.FeedConfig.Name, t.FeedConfig.URL, t.FeedConfig.Source); err != nil {
		return fmt.Errorf("failed to sync feed config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", t.Type,
		"feed", t.FeedName,
		"duration", t.GetDuration())

	return nil
}
