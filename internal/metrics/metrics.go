// Package metrics exposes Prometheus collectors for the food search
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsearch_searches_total",
			Help: "Total search operations, labeled by mode and query category.",
		},
		[]string{"mode", "category"},
	)

	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsearch_provider_requests_total",
			Help: "Total upstream provider calls, labeled by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsearch_cache_lookups_total",
			Help: "Total result cache lookups, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	scrapeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsearch_scrape_jobs_total",
			Help: "Total scrape jobs, labeled by provider, type and final status.",
		},
		[]string{"provider", "type", "status"},
	)

	scrapePagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsearch_scrape_pages_total",
			Help: "Total scraped pages, labeled by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	scrapeProductsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsearch_scrape_products_total",
			Help: "Total scraped products, labeled by provider and result.",
		},
		[]string{"provider", "result"},
	)

	rateLimitDelaySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodsearch_rate_limit_delay_seconds",
			Help:    "Histogram of scraper rate limit wait durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch counts one search operation.
func ObserveSearch(mode, category string) {
	searchesTotal.WithLabelValues(mode, category).Inc()
}

// ObserveProviderRequest counts one upstream call.
func ObserveProviderRequest(provider, outcome string) {
	providerRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveCacheLookup counts one cache lookup with outcome "hit" or "miss".
func ObserveCacheLookup(outcome string) {
	cacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveScrapeJob counts one finished scrape job.
func ObserveScrapeJob(provider, jobType, status string) {
	scrapeJobsTotal.WithLabelValues(provider, jobType, status).Inc()
}

// ObserveScrapePage counts one scraped page.
func ObserveScrapePage(provider, outcome string) {
	scrapePagesTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveScrapeProducts adds per-item results for a page.
func ObserveScrapeProducts(provider, result string, n int) {
	if n > 0 {
		scrapeProductsTotal.WithLabelValues(provider, result).Add(float64(n))
	}
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(provider string, duration time.Duration) {
	rateLimitDelaySeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
