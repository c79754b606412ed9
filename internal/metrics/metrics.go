// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	ResultSuccess      = "success"
	ResultNoProfile    = "no_profile"
	ResultModelError   = "model_error"
	ResultPersistError = "persist_error"
)

// Trend resolution sources.
const (
	TrendSourceLive  = "live"
	TrendSourceCache = "cache"
	TrendSourceEmpty = "empty"
)

var (
	// Generations counts post generation attempts by outcome.
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftspark_generations_total",
		Help: "Total number of post generation attempts by result",
	}, []string{"result"})

	// TrendResolutions counts trend resolutions by where the topics came from.
	TrendResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftspark_trend_resolutions_total",
		Help: "Total number of trend resolutions by source",
	}, []string{"source"})

	// NewsFetchErrors counts failed live headline fetches by provider.
	NewsFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftspark_news_fetch_errors_total",
		Help: "Total number of failed live headline fetches",
	}, []string{"provider"})

	// HTTPRequestDuration records API latency by route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "draftspark_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// RecordGeneration increments the generation counter for result.
func RecordGeneration(result string) {
	Generations.WithLabelValues(result).Inc()
}

// RecordTrendResolution increments the resolution counter for source.
func RecordTrendResolution(source string) {
	TrendResolutions.WithLabelValues(source).Inc()
}

// RecordNewsFetchError increments the fetch error counter for provider.
func RecordNewsFetchError(provider string) {
	NewsFetchErrors.WithLabelValues(provider).Inc()
}

// ObserveRequest records the latency of a request that started at start.
func ObserveRequest(route string, status int, start time.Time) {
	HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
