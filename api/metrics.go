package api

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// PROMETHEUS METRICS
// =============================================================================

const metricPrefix = "ledger_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
)

// InitMetrics registers the HTTP collectors and, when a database handle is
// given, DB-backed gauges. Safe to call more than once.
func InitMetrics(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method and status",
			},
			[]string{"method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)
		prometheus.MustRegister(httpRequests, httpLatency)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// registerDBMetrics exposes gauges computed straight from the store, so the
// dashboard numbers cannot drift from the ledger.
func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "installments_unpaid",
			Help: "Installments without a paid date",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM installments WHERE paid_date IS NULL")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "installments_overdue",
			Help: "Unpaid installments with a due date before today",
		},
		func() float64 {
			return queryCount(db, logger,
				"SELECT COUNT(*) FROM installments WHERE paid_date IS NULL AND due_date < DATE('now')")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// metricsMiddleware records one observation per request. A no-op until
// InitMetrics has run.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequests == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		httpRequests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		httpLatency.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
