package observability

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

const namespace = "cytometry"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	ingestRuns     *prometheus.CounterVec
	ingestRows     prometheus.Counter
	ingestDuration prometheus.Histogram
	ingestConflict prometheus.Counter
	dataQuality    *prometheus.CounterVec

	resolutions       *prometheus.CounterVec
	resolutionLatency *prometheus.HistogramVec
	resolvedMembers   *prometheus.HistogramVec

	storeStats *prometheus.GaugeVec
	redisUp    prometheus.Gauge
	redisPing  prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized", "namespace", namespace)
		}
	})
	return instance
}

// New builds metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		ingestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Ingestion attempts by final status.",
		}, []string{"status"}),
		ingestRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_total",
			Help:      "Source rows committed by successful ingestions.",
		}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Ingestion wall time in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ingestConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "subject_conflicts_total",
			Help:      "Rows whose subject attributes disagreed with the first row for that subject.",
		}),
		dataQuality: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "data_quality_issues_total",
			Help:      "Data-quality issues found in ingested sources, by kind.",
		}, []string{"issue"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "total",
			Help:      "Cohort and dataset resolutions by kind and status.",
		}, []string{"kind", "status"}),
		resolutionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "duration_seconds",
			Help:      "Resolution latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),
		resolvedMembers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "members",
			Help:      "Number of entities returned per resolution.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		storeStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "pool",
			Help:      "Connection pool statistics of the entity store.",
		}, []string{"stat"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "up",
			Help:      "1 when the last Redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "ping_seconds",
			Help:      "Latency of the last Redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.ingestRuns, m.ingestRows, m.ingestDuration, m.ingestConflict, m.dataQuality,
		m.resolutions, m.resolutionLatency, m.resolvedMembers,
		m.storeStats, m.redisUp, m.redisPing,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveIngest(status string, rows, subjectConflicts int, dur time.Duration) {
	if m == nil {
		return
	}
	m.ingestRuns.WithLabelValues(status).Inc()
	m.ingestDuration.Observe(dur.Seconds())
	if rows > 0 {
		m.ingestRows.Add(float64(rows))
	}
	if subjectConflicts > 0 {
		m.ingestConflict.Add(float64(subjectConflicts))
	}
}

func (m *Metrics) IncDataQuality(issue string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.dataQuality.WithLabelValues(issue).Add(float64(n))
}

func (m *Metrics) ObserveResolution(kind, status string, members int, dur time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind, status).Inc()
	m.resolutionLatency.WithLabelValues(kind).Observe(dur.Seconds())
	if status == "ok" {
		m.resolvedMembers.WithLabelValues(kind).Observe(float64(members))
	}
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 15 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 15 * time.Second
	}
	return time.Duration(n) * time.Second
}

// StartStoreCollector samples the store's connection pool until ctx ends.
func (m *Metrics) StartStoreCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: store stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.storeStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.storeStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.storeStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.storeStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.storeStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.storeStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

// StartRedisCollector pings rdb until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
