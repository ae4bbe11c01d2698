// Package metrics exposes Prometheus instrumentation for the catalog service.
//
//	catalog_http_requests_total            counter: requests by method/route/status
//	catalog_http_request_duration_seconds  histogram: latency by method/route
//	catalog_provider_requests_total        counter: upstream calls by provider/operation/outcome
//	catalog_provider_request_duration_seconds histogram: upstream latency
//	catalog_cache_lookups_total            counter: cache lookups by namespace/result
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "catalog_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

var ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_provider_requests_total",
	Help: "Upstream provider calls by outcome.",
}, []string{"provider", "operation", "outcome"})

var ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "catalog_provider_request_duration_seconds",
	Help:    "Upstream provider latency in seconds.",
	Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
}, []string{"provider", "operation"})

var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_cache_lookups_total",
	Help: "Cache lookups by namespace and result.",
}, []string{"namespace", "result"})

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProvider records one upstream call. Use it with defer:
//
//	defer metrics.ObserveProvider("tmdb", "search_movie", time.Now(), &err)
func ObserveProvider(provider, operation string, start time.Time, errp *error) {
	outcome := "success"
	if errp != nil && *errp != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
	ProviderDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

func CacheHit(namespace string)  { CacheLookups.WithLabelValues(namespace, "hit").Inc() }
func CacheMiss(namespace string) { CacheLookups.WithLabelValues(namespace, "miss").Inc() }

// Middleware records request counts and latency labelled by the chi route
// pattern, so /api/titles/movie/1 and /api/titles/movie/2 share a series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
