package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	tilesServed         *prometheus.CounterVec
	tileFeatures        prometheus.Histogram
	tileOverflows       prometheus.Counter
	remoteQueryDuration prometheus.Histogram
	warehouseUp         prometheus.Gauge
}

// New creates a fresh Metrics registry with HTTP and tile pipeline metrics
// registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vectile",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vectile",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	tilesServed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vectile",
		Name:      "tiles_served_total",
		Help:      "Count of tile requests by outcome",
	}, []string{"outcome"})

	tileFeatures := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vectile",
		Name:      "tile_features",
		Help:      "Number of features encoded per served tile",
		Buckets:   []float64{0, 1, 10, 100, 1000, 5000, 10000, 30000},
	})

	tileOverflows := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vectile",
		Name:      "tile_overflows_total",
		Help:      "Count of tile requests that hit the feature cap and were served empty",
	})

	remoteQueryDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vectile",
		Name:      "remote_query_duration_seconds",
		Help:      "Duration of spatial queries against the warehouse",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	warehouseUp := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vectile",
		Name:      "warehouse_up",
		Help:      "1 when the last warehouse ping succeeded, 0 otherwise",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		tilesServed,
		tileFeatures,
		tileOverflows,
		remoteQueryDuration,
		warehouseUp,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		tilesServed:         tilesServed,
		tileFeatures:        tileFeatures,
		tileOverflows:       tileOverflows,
		remoteQueryDuration: remoteQueryDuration,
		warehouseUp:         warehouseUp,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveTile records one served tile with its outcome and feature count.
func (m *Metrics) ObserveTile(outcome string, features int) {
	if m == nil {
		return
	}
	m.tilesServed.With(prometheus.Labels{"outcome": outcome}).Inc()
	m.tileFeatures.Observe(float64(features))
}

// IncTileOverflow increments the feature cap overflow counter.
func (m *Metrics) IncTileOverflow() {
	if m == nil {
		return
	}
	m.tileOverflows.Inc()
}

// ObserveRemoteQuery observes one warehouse query round trip.
func (m *Metrics) ObserveRemoteQuery(duration time.Duration) {
	if m == nil {
		return
	}
	m.remoteQueryDuration.Observe(duration.Seconds())
}

// SetWarehouseUp flags the result of the latest warehouse ping.
func (m *Metrics) SetWarehouseUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.warehouseUp.Set(1)
	} else {
		m.warehouseUp.Set(0)
	}
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
