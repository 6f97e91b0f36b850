package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/database"
	"github.com/lysyi3m/menhub-monitor/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Deps are the collaborators shared by all feed tasks.
type Deps struct {
	ConfigCache      *feed.ConfigCache
	FeedRepo         database.FeedRepository
	Snapshot         *feed.Snapshot
	HTTPClient       *http.Client
	Parser           *feed.Parser
	Filterer         *feed.Filterer
	ContentExtractor *feed.ContentExtractor
	UserAgent        string
}

type Scheduler struct {
	deps        Deps
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(deps Deps, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		deps:        deps,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RefreshFeed polls an enabled feed right away.
func (s *Scheduler) RefreshFeed(feedName string) error {
	feedConfig, err := s.deps.ConfigCache.GetConfig(feedName)
	if err != nil {
		return err
	}
	if !feedConfig.Settings.Enabled {
		return fmt.Errorf("feed '%s' is disabled", feedName)
	}

	if err := s.deps.FeedRepo.ScheduleNow(feedName); err != nil {
		return fmt.Errorf("failed to reschedule feed: %w", err)
	}

	return s.EnqueueTask(NewProcessFeedTask(feedName, feedConfig, s.deps))
}

// enqueueStartupTasks syncs every configuration and polls enabled feeds once.
// Sync tasks run before process tasks because the queue is FIFO.
func (s *Scheduler) enqueueStartupTasks() {
	feedConfigs := s.deps.ConfigCache.GetConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No feed configurations found")
		return
	}

	slog.Debug("Processing feed configurations", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		if err := s.EnqueueTask(NewSyncFeedConfigTask(feedConfig.Name, feedConfig, s.deps.FeedRepo)); err != nil {
			slog.Warn("Failed to enqueue SyncFeedConfigTask", "feed", feedConfig.Name, "error", err)
		}
	}

	for _, feedConfig := range feedConfigs {
		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping ProcessFeedTask", "feed", feedConfig.Name)
			continue
		}

		if err := s.EnqueueTask(NewProcessFeedTask(feedConfig.Name, feedConfig, s.deps)); err != nil {
			slog.Warn("Failed to enqueue ProcessFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	feedConfigs := s.deps.ConfigCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	due, err := s.deps.FeedRepo.GetFeedsDue(time.Now().UTC())
	if err != nil {
		slog.Warn("Failed to query feeds due for refresh", "error", err)
		return
	}

	for _, name := range due {
		feedConfig, ok := feedConfigs[name]
		if !ok {
			continue
		}

		if err := s.EnqueueTask(NewProcessFeedTask(name, feedConfig, s.deps)); err != nil {
			slog.Warn("Failed to enqueue ProcessFeedTask", "feed", name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "feed", task.GetFeedName(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(delay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "error", retryErr)
			}
		}
	}()
}
