package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
	"github.com/lysyi3m/menhub-monitor/app/analysis"
	"github.com/lysyi3m/menhub-monitor/app/api"
	"github.com/lysyi3m/menhub-monitor/app/cache"
	"github.com/lysyi3m/menhub-monitor/app/caption"
	"github.com/lysyi3m/menhub-monitor/app/cfg"
	"github.com/lysyi3m/menhub-monitor/app/database"
	"github.com/lysyi3m/menhub-monitor/app/feed"
	"github.com/lysyi3m/menhub-monitor/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(appCfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Menhub Monitor", "version", appCfg.Version)

	vocabulary, err := analysis.LoadVocabulary(appCfg.VocabularyFile)
	if err != nil {
		return err
	}
	analyzer, err := analysis.New(vocabulary)
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configurations: %w", err)
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.FeedsDir)

	feedRepo := database.NewFeedRepository(db)
	pruneRemovedFeeds(configCache, feedRepo)

	var resultCache cache.ResultCache
	if appCfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisCache, err := cache.NewCache(ctx, appCfg.RedisAddr)
		cancel()
		if err != nil {
			slog.Warn("Response cache disabled", "addr", appCfg.RedisAddr, "error", err)
		} else {
			resultCache = redisCache
			defer redisCache.Close()
		}
	}

	snapshot := feed.NewSnapshot()

	scheduler := tasks.NewScheduler(tasks.Deps{
		ConfigCache:      configCache,
		FeedRepo:         feedRepo,
		Snapshot:         snapshot,
		HTTPClient:       &http.Client{},
		Parser:           feed.NewParser(),
		Filterer:         feed.NewFilterer(),
		ContentExtractor: feed.NewContentExtractor(),
		UserAgent:        appCfg.UserAgent,
	}, time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(api.Deps{
		Pipeline:    aggregate.NewPipeline(analyzer),
		Snapshot:    snapshot,
		Cache:       resultCache,
		ConfigCache: configCache,
		FeedRepo:    feedRepo,
		Scheduler:   scheduler,
		Drafter:     caption.NewDrafter(),
		CacheTTL:    time.Duration(appCfg.CacheTTL) * time.Second,
		WindowDays:  appCfg.WindowDays,
		MaxResults:  appCfg.MaxResults,
		Version:     appCfg.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return runErr
}

// pruneRemovedFeeds drops fetch status rows whose configuration file is gone.
func pruneRemovedFeeds(configCache *feed.ConfigCache, feedRepo database.FeedRepository) {
	feeds, err := feedRepo.GetFeeds()
	if err != nil {
		slog.Warn("Failed to list stored feeds", "error", err)
		return
	}

	configs := configCache.GetConfigs()
	for _, f := range feeds {
		if _, ok := configs[f.Name]; ok {
			continue
		}
		if err := feedRepo.DeleteFeed(f.Name); err != nil {
			slog.Warn("Failed to delete removed feed", "feed", f.Name, "error", err)
			continue
		}
		slog.Info("Removed feed without configuration", "feed", f.Name)
	}
}
