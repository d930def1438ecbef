package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recommendationsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_generated_total",
		Help: "Total recommendation runs",
	})
	recommendationsAIFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_ai_fallback_total",
		Help: "Recommendation runs that fell back to deterministic order",
	})
	chatRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Total chat requests proxied",
	})
	chatFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_failures_total",
		Help: "Chat requests failed upstream",
	})
	reportsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reports_created_total",
		Help: "Moderation reports created",
	})
	moderationHiddenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_hidden_total",
		Help: "Items hidden by moderation",
	})
	moderationJobsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_jobs_received_total",
		Help: "Moderation queue messages received",
	})
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Fetch-with-cache hits",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Fetch-with-cache misses",
	})

	chatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_duration_ms",
		Help:    "Upstream chat duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
)

// IncRecommendationsGenerated counts completed recommendation runs.
func IncRecommendationsGenerated() { recommendationsGeneratedTotal.Inc() }

// IncRecommendationsAIFallback counts runs that fell back to deterministic ordering.
func IncRecommendationsAIFallback() { recommendationsAIFallbackTotal.Inc() }

// IncChatRequests counts proxied chat requests.
func IncChatRequests() { chatRequestsTotal.Inc() }

// IncChatFailures counts chat requests the upstream provider failed.
func IncChatFailures() { chatFailuresTotal.Inc() }

// IncReportsCreated counts new moderation reports.
func IncReportsCreated() { reportsCreatedTotal.Inc() }

// IncModerationHidden counts content hidden by moderation.
func IncModerationHidden() { moderationHiddenTotal.Inc() }

// IncModerationJobsReceived counts queue messages picked up by the worker.
func IncModerationJobsReceived() { moderationJobsReceivedTotal.Inc() }

// IncCacheHit counts fetch-with-cache hits, including revalidated and stale serves.
func IncCacheHit() { cacheHitsTotal.Inc() }

// IncCacheMiss counts fetch-with-cache upstream fetches that returned a new body.
func IncCacheMiss() { cacheMissesTotal.Inc() }

// ObserveChatDurationMs records an upstream chat latency in milliseconds.
func ObserveChatDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	chatDuration.Observe(value)
}

// Handler serves the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
