package rest

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelter_api",
		Name:      "http_requests_total",
		Help:      "Requests handled, by method, route and status code.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shelter_api",
		Name:      "http_request_duration_seconds",
		Help:      "Request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// MetricsMiddleware observes every request. The route label uses the raw
// path's first two segments to keep cardinality bounded.
func (h *Handler) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeLabel(r.URL.Path)
		timer := prometheus.NewTimer(requestDuration.WithLabelValues(r.Method, route))
		responseWriter := NewResponseWriter(w)
		next.ServeHTTP(responseWriter, r)
		timer.ObserveDuration()
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(responseWriter.statusCode)).Inc()
	})
}

func (h *Handler) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func routeLabel(path string) string {
	segments := 0
	for i := 1; i < len(path); i++ {
		if path[i] == '/' {
			segments++
			if segments == 2 {
				return path[:i]
			}
		}
	}
	return path
}
