package api

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
	"github.com/lysyi3m/menhub-monitor/app/caption"
	"github.com/lysyi3m/menhub-monitor/app/feed"
	"github.com/lysyi3m/menhub-monitor/app/metrics"
)

func NewHandler(deps Deps) *Handler {
	drafter := deps.Drafter
	if drafter == nil {
		drafter = caption.NewDrafter()
	}

	return &Handler{
		pipeline:    deps.Pipeline,
		snapshot:    deps.Snapshot,
		cache:       deps.Cache,
		configCache: deps.ConfigCache,
		feedRepo:    deps.FeedRepo,
		scheduler:   deps.Scheduler,
		drafter:     drafter,
		generator:   feed.NewGenerator(),
		cacheTTL:    deps.CacheTTL,
		windowDays:  deps.WindowDays,
		maxResults:  deps.MaxResults,
		version:     deps.Version,
		now:         time.Now,
	}
}

func (h *Handler) GetAggregate(c *gin.Context) {
	views, err := aggregate.ParseViews(c.Query("include"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid include parameter", Details: err.Error()})
		return
	}
	h.aggregate(c, views)
}

func (h *Handler) GetNews(c *gin.Context) {
	h.aggregate(c, []aggregate.View{aggregate.ViewNews})
}

func (h *Handler) GetEvents(c *gin.Context) {
	h.aggregate(c, []aggregate.View{aggregate.ViewEvents})
}

func (h *Handler) GetQuotes(c *gin.Context) {
	h.aggregate(c, []aggregate.View{aggregate.ViewQuotes})
}

func (h *Handler) aggregate(c *gin.Context, views []aggregate.View) {
	opts, err := h.parseOptions(c, views)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}

	result, err := h.compute(c, opts)
	if errors.Is(err, aggregate.ErrInvalidOptions) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Aggregation failed", "error", err)
		h.respond(c, http.StatusInternalServerError, aggregate.EmptyResult(cmp.Or(opts.WindowDays, aggregate.DefaultWindowDays), h.now()))
		return
	}

	h.respond(c, http.StatusOK, result)
}

// GetNewsRSS serves the news collection as an RSS 2.0 feed.
func (h *Handler) GetNewsRSS(c *gin.Context) {
	opts, err := h.parseOptions(c, []aggregate.View{aggregate.ViewNews})
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}

	result, err := h.compute(c, opts)
	if err != nil {
		slog.Error("Aggregation failed", "format", "rss", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	base := fmt.Sprintf("%s://%s", scheme, c.Request.Host)

	rss, err := h.generator.Run(feed.Channel{
		Title:       "Menhub Monitor",
		Link:        base,
		SelfURL:     base + c.Request.URL.RequestURI(),
		Description: "Berita terkini seputar Kementerian Perhubungan",
		Version:     h.version,
		Language:    "id",
	}, result.News, h.now())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if h.cacheTTL > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cacheTTL.Seconds())))
	}
	c.Header("X-Feed-Items", strconv.Itoa(len(result.News)))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// compute runs the pipeline over the current snapshot, going through the response cache when one is set.
func (h *Handler) compute(c *gin.Context, opts aggregate.Options) (*aggregate.Result, error) {
	batches, version := h.snapshot.Batches()

	var key string
	if h.cache != nil {
		key = h.cache.Key(opts, version)
	}

	if result, ok := h.cachedResult(c, key); ok {
		return result, nil
	}

	start := time.Now()
	result, err := h.pipeline.Run(batches, opts, h.now())
	metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.RecordsEmitted.WithLabelValues(string(aggregate.ViewNews)).Add(float64(len(result.News)))
	metrics.RecordsEmitted.WithLabelValues(string(aggregate.ViewEvents)).Add(float64(len(result.Events)))
	metrics.RecordsEmitted.WithLabelValues(string(aggregate.ViewQuotes)).Add(float64(len(result.Quotes)))

	if h.cache != nil && h.cacheTTL > 0 {
		if err := h.cache.SetResult(c.Request.Context(), key, result, h.cacheTTL); err != nil {
			slog.Warn("Failed to cache aggregation result", "key", key, "error", err)
		}
	}

	return result, nil
}

func (h *Handler) cachedResult(c *gin.Context, key string) (*aggregate.Result, bool) {
	if h.cache == nil || h.cacheTTL <= 0 {
		return nil, false
	}

	result, ok, err := h.cache.GetResult(c.Request.Context(), key)
	if err != nil {
		slog.Warn("Cache lookup failed", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return result, true
}

func (h *Handler) respond(c *gin.Context, status int, result *aggregate.Result) {
	if status == http.StatusOK && h.cacheTTL > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cacheTTL.Seconds())))
	}
	c.Header("X-Snapshot-Version", strconv.FormatUint(h.snapshot.Version(), 10))
	c.JSON(status, result)
}

// parseOptions reads days, limit and keywords. Missing values fall back to the configured defaults.
func (h *Handler) parseOptions(c *gin.Context, views []aggregate.View) (aggregate.Options, error) {
	opts := aggregate.Options{
		Views:      views,
		WindowDays: h.windowDays,
		Limit:      h.maxResults,
	}

	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 || days > aggregate.MaxWindowDays {
			return opts, fmt.Errorf("days must be between 0 and %d", aggregate.MaxWindowDays)
		}
		opts.WindowDays = days
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, errors.New("limit must be a non-negative integer")
		}
		opts.Limit = min(limit, aggregate.MaxLimit)
	}

	if raw := c.Query("keywords"); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				opts.Keywords = append(opts.Keywords, k)
			}
		}
	}

	return opts, nil
}

func (h *Handler) CreateCaption(c *gin.Context) {
	var req caption.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	draft, err := h.drafter.Run(req)
	if errors.Is(err, caption.ErrUnknownStyle) || errors.Is(err, caption.ErrEmptyText) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Caption could not be drafted", Details: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Caption drafting failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Caption drafting failed"})
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"status":           "ok",
		"timestamp":        h.now().Format(time.RFC3339),
		"snapshot_version": h.snapshot.Version(),
	}

	if h.feedRepo != nil {
		if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
			health["feeds"] = feedCount
		}
	}

	if h.configCache != nil {
		health["loaded_configurations"] = h.configCache.GetConfigCount()
	}

	if h.cache != nil {
		cacheHealth := h.cache.Health(c.Request.Context())
		health["cache"] = cacheHealth
		if cacheHealth["status"] != "healthy" {
			health["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	feeds := make([]map[string]any, 0, len(names))

	for _, name := range names {
		feedConfig := configs[name]
		feedInfo := map[string]any{
			"name":             feedConfig.Name,
			"url":              feedConfig.URL,
			"source":           feedConfig.Source,
			"title":            "",
			"enabled":          feedConfig.Settings.Enabled,
			"max_items":        feedConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(feedConfig.Settings.RefreshInterval) * time.Second).String(),
			"extract_content":  feedConfig.Settings.ExtractContent,
			"filters":          len(feedConfig.Filters),
		}

		feed, err := h.feedRepo.GetFeed(name)
		if err != nil {
			slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		}
		if feed != nil {
			feedInfo["title"] = feed.Title
			feedInfo["last_fetched_at"] = feed.LastFetchedAt
			feedInfo["next_fetch_at"] = feed.NextFetchAt
			feedInfo["item_count"] = feed.ItemCount
			if feed.LastError != "" {
				feedInfo["last_error"] = feed.LastError
			}
		}

		if fetchedAt, ok := h.snapshot.FetchedAt(name); ok {
			feedInfo["in_snapshot"] = true
			feedInfo["snapshot_fetched_at"] = fetchedAt
		} else {
			feedInfo["in_snapshot"] = false
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]any{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIRefreshFeed(c *gin.Context) {
	name := c.Param("name")

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, errorResponse{Error: "Feed configuration not found"})
		return
	}

	if !feedConfig.Settings.Enabled {
		c.JSON(http.StatusConflict, errorResponse{Error: "Feed is disabled"})
		return
	}

	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "Scheduler is not running"})
		return
	}

	if err := h.scheduler.RefreshFeed(name); err != nil {
		slog.Error("Error enqueueing refresh", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to enqueue refresh",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Feed refresh enqueued",
		"feed": gin.H{
			"name":   name,
			"url":    feedConfig.URL,
			"source": feedConfig.Source,
		},
	})
}
