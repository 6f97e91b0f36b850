package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates the HTTP engine with all routes configured.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(requestLogger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/feeds/news.xml", handler.GetNewsRSS)

	api := r.Group("/api")
	{
		api.GET("/aggregate", handler.GetAggregate)
		api.GET("/news", handler.GetNews)
		api.GET("/events", handler.GetEvents)
		api.GET("/quotes", handler.GetQuotes)
		api.POST("/captions", handler.CreateCaption)
	}

	if apiAccessKey != "" {
		feeds := api.Group("/feeds")
		feeds.Use(authMiddleware(apiAccessKey))
		{
			feeds.GET("", handler.APIListFeeds)
			feeds.POST("/:name/refresh", handler.APIRefreshFeed)
		}
		slog.Info("Feed management endpoints enabled with authentication")
	} else {
		slog.Info("Feed management endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"aggregate": "/api/aggregate?include=news,events,quotes&days=7&keywords=&limit=120",
			"news":      "/api/news",
			"news_rss":  "/feeds/news.xml",
			"events":    "/api/events",
			"quotes":    "/api/quotes",
			"captions":  "/api/captions (POST)",
			"health":    "/health",
			"metrics":   "/metrics",
		}

		if apiAccessKey != "" {
			endpoints["feeds"] = "/api/feeds (requires X-API-Key header)"
			endpoints["refresh"] = "/api/feeds/<name>/refresh (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "Menhub Monitor",
			"version":     handler.version,
			"description": "News, events and quotes about the Ministry of Transportation aggregated from public feeds",
			"endpoints":   endpoints,
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent())
	}
}

// authMiddleware accepts the key in X-API-Key or as a Bearer token.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Error:   "API key required",
				Details: "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Invalid API key"})
			return
		}

		c.Next()
	}
}
