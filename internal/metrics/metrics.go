// Package metrics holds the Prometheus collectors for ledger operations,
// persistence, events, exports and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fintrack"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by entity, operation and result.",
		},
		[]string{"entity", "operation", "result"},
	)

	ledgerSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records",
			Help:      "Number of records currently held, by collection.",
		},
		[]string{"collection"},
	)

	saveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "save_duration_seconds",
			Help:      "Duration of whole-document saves.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Ledger change events handed to the broker.",
		},
		[]string{"result"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "reports_total",
			Help:      "Month reports written by the export worker.",
		},
		[]string{"result"},
	)

	reportCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "cache_lookups_total",
			Help:      "Month overview cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		ledgerOperations,
		ledgerSize,
		saveDuration,
		eventsPublished,
		exports,
		reportCache,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordOperation counts one ledger operation.
func RecordOperation(entity, operation string, err error) {
	ledgerOperations.WithLabelValues(entity, operation, result(err)).Inc()
}

// SetLedgerSize publishes the current collection sizes.
func SetLedgerSize(accounts, categories, transactions, loans int) {
	ledgerSize.WithLabelValues("accounts").Set(float64(accounts))
	ledgerSize.WithLabelValues("categories").Set(float64(categories))
	ledgerSize.WithLabelValues("transactions").Set(float64(transactions))
	ledgerSize.WithLabelValues("loans").Set(float64(loans))
}

// ObserveSave records the duration and outcome of a document save.
func ObserveSave(d time.Duration, err error) {
	saveDuration.WithLabelValues(result(err)).Observe(d.Seconds())
}

// RecordPublish counts one event publish attempt.
func RecordPublish(err error) {
	eventsPublished.WithLabelValues(result(err)).Inc()
}

// RecordExport counts one report export.
func RecordExport(err error) {
	exports.WithLabelValues(result(err)).Inc()
}

// RecordCacheLookup counts an overview cache hit or miss.
func RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	reportCache.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request. route should be the router
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
