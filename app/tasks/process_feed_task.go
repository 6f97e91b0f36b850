package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
	"github.com/lysyi3m/menhub-monitor/app/database"
	"github.com/lysyi3m/menhub-monitor/app/feed"
	"github.com/lysyi3m/menhub-monitor/app/metrics"
)

// maxBodySize bounds feed and article downloads.
const maxBodySize = 10 << 20

// ProcessFeedTask polls one feed and publishes its items to the snapshot.
// A failed poll is published too, so the feed contributes nothing until it recovers.
type ProcessFeedTask struct {
	Task
	FeedConfig       *feed.Config
	httpClient       *http.Client
	parser           *feed.Parser
	filterer         *feed.Filterer
	contentExtractor *feed.ContentExtractor
	feedRepo         database.FeedRepository
	snapshot         *feed.Snapshot
	userAgent        string
}

func NewProcessFeedTask(feedName string, feedConfig *feed.Config, deps Deps) *ProcessFeedTask {
	return &ProcessFeedTask{
		Task:             NewTask(TaskTypeProcessFeed, feedName),
		FeedConfig:       feedConfig,
		httpClient:       deps.HTTPClient,
		parser:           deps.Parser,
		filterer:         deps.Filterer,
		contentExtractor: deps.ContentExtractor,
		feedRepo:         deps.FeedRepo,
		snapshot:         deps.Snapshot,
		userAgent:        deps.UserAgent,
	}
}

func (t *ProcessFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.FeedConfig.Settings.RefreshInterval) * time.Second)

	metadata, items, err := t.poll(ctx)
	if err != nil {
		metrics.FeedsFetched.WithLabelValues(t.FeedName, "error").Inc()
		t.snapshot.Publish(t.FeedName, t.FeedConfig.Source, nil, err, now)

		if recordErr := t.feedRepo.RecordFetchFailure(t.FeedName, err.Error(), now, nextFetch); recordErr != nil {
			slog.Warn("Failed to record fetch failure", "feed", t.FeedName, "error", recordErr)
		}
		return err
	}

	accepted := feed.Accepted(t.filterer.Run(items, t.FeedConfig))
	if maxItems := t.FeedConfig.Settings.MaxItems; maxItems > 0 && len(accepted) > maxItems {
		accepted = accepted[:maxItems]
	}

	extracted := 0
	if t.FeedConfig.Settings.ExtractContent {
		extracted = t.extractContent(ctx, accepted)
	}

	raw := make([]aggregate.RawItem, 0, len(accepted))
	for _, item := range accepted {
		raw = append(raw, item.ToRaw(t.FeedConfig.Source))
	}

	t.snapshot.Publish(t.FeedName, t.FeedConfig.Source, raw, nil, now)
	metrics.FeedsFetched.WithLabelValues(t.FeedName, "success").Inc()
	metrics.ItemsIngested.WithLabelValues(t.FeedName).Add(float64(len(raw)))

	if err := t.feedRepo.RecordFetchSuccess(t.FeedName, metadata.Title, len(raw), now, nextFetch); err != nil {
		return fmt.Errorf("failed to record fetch status: %w", err)
	}

	slog.Info("Task completed",
		"type", t.Type,
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(items),
		"filtered", len(items)-len(feed.Accepted(items)),
		"published", len(raw),
		"extracted", extracted)

	return nil
}

func (t *ProcessFeedTask) poll(ctx context.Context) (*feed.Metadata, []feed.Item, error) {
	data, err := t.fetch(ctx, t.FeedConfig.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return metadata, items, nil
}

// extractContent replaces thin bodies with the article page text. Failures keep the feed body.
func (t *ProcessFeedTask) extractContent(ctx context.Context, items []feed.Item) int {
	extracted := 0

	for i := range items {
		if !feed.NeedsExtraction(items[i]) {
			continue
		}

		data, err := t.fetch(ctx, items[i].Link)
		if err == nil {
			var text string
			text, err = t.contentExtractor.Run(data, items[i].Link)
			if err == nil {
				items[i].Content = text
				extracted++
				metrics.ContentExtractions.WithLabelValues("success").Inc()
				continue
			}
		}

		metrics.ContentExtractions.WithLabelValues("error").Inc()
		slog.Debug("Content extraction failed", "feed", t.FeedName, "link", items[i].Link, "error", err)

		if ctx.Err() != nil {
			break
		}
	}

	return extracted
}

func (t *ProcessFeedTask) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
