// Package metrics exposes the Prometheus collectors for the HTTP layer and
// the notification feed.
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
	// HTTPRequests counts handled requests by method, route pattern, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campushub",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Handled HTTP requests.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "campushub",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// FeedSubscribers tracks active notification subscriptions.
	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "campushub",
		Subsystem: "feed",
		Name:      "subscribers",
		Help:      "Active notification subscriptions.",
	})

	// FeedEventsDelivered counts events handed to subscribers.
	FeedEventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campushub",
		Subsystem: "feed",
		Name:      "events_delivered_total",
		Help:      "Notification events delivered to subscribers.",
	})

	// FeedEventsDropped counts events evicted from full subscriber queues.
	FeedEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campushub",
		Subsystem: "feed",
		Name:      "events_dropped_total",
		Help:      "Notification events evicted before delivery.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Instrument wraps the mux with request count and latency collection. The
// route pattern, not the raw path, labels the series so cardinality stays
// bounded.
func Instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)

		HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
