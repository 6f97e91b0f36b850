package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menhub_feeds_fetched_total",
		Help: "The total number of feed polls",
	}, []string{"feed", "status"})

	ItemsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menhub_items_ingested_total",
		Help: "The total number of feed items handed to the aggregation pipeline",
	}, []string{"feed"})

	ContentExtractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menhub_content_extractions_total",
		Help: "The total number of article page extractions",
	}, []string{"status"})

	RecordsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menhub_records_emitted_total",
		Help: "The total number of records returned per collection",
	}, []string{"view"})

	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "menhub_aggregation_duration_seconds",
		Help:    "Duration of aggregation pipeline runs",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menhub_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})
)
