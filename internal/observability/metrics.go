package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// Metrics holds the domain collectors. HTTP request counters come from the gin prometheus middleware and
// LLM counters from platform/llm; both share the default registry served at /metrics.
type Metrics struct {
	apiInflight       prometheus.Gauge
	generations       *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	transforms        *prometheus.CounterVec
	applies           *prometheus.CounterVec
	syncRuns          *prometheus.CounterVec
	syncItems         *prometheus.CounterVec
	freeTierRejected  prometheus.Counter
	pgStats           *prometheus.GaugeVec
	redisUp           prometheus.Gauge
	redisPing         prometheus.Gauge
	scrapeInterval    time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process metrics, or nil when metrics are disabled. Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		m := &Metrics{
			apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "screenplay_api_inflight_requests",
				Help: "In-flight API requests.",
			}),
			generations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "screenplay_generation_results_total",
				Help: "Scene segment generation results by operation and outcome.",
			}, []string{"op", "outcome"}),
			generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "screenplay_generation_duration_seconds",
				Help:    "End-to-end generation latency including the model call.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			}, []string{"op"}),
			transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "screenplay_transforms_total",
				Help: "Component transform requests by kind and status.",
			}, []string{"kind", "status"}),
			applies: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "screenplay_transform_applies_total",
				Help: "Alternative applications by kind, update and record flags.",
			}, []string{"kind", "updated", "recorded"}),
			syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "screenplay_sync_runs_total",
				Help: "Script sync reconciliations by status.",
			}, []string{"status"}),
			syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "screenplay_sync_items_total",
				Help: "Rows touched by script sync, by stage.",
			}, []string{"stage"}),
			freeTierRejected: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "screenplay_free_tier_rejections_total",
				Help: "AI requests refused because the free tier is exhausted.",
			}),
			pgStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "screenplay_postgres_pool",
				Help: "database/sql pool statistics.",
			}, []string{"stat"}),
			redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "screenplay_redis_up",
				Help: "1 when the last redis ping succeeded.",
			}),
			redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "screenplay_redis_ping_seconds",
				Help: "Latency of the last redis ping.",
			}),
			scrapeInterval: 15 * time.Second,
		}
		prometheus.MustRegister(
			m.apiInflight, m.generations, m.generationLatency, m.transforms, m.applies,
			m.syncRuns, m.syncItems, m.freeTierRejected, m.pgStats, m.redisUp, m.redisPing,
		)
		instance = m
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
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

func (m *Metrics) ObserveGeneration(op, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.generations.WithLabelValues(op, outcome).Inc()
	m.generationLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func (m *Metrics) IncTransform(kind, status string) {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) IncApply(kind string, updated, recorded bool) {
	if m == nil {
		return
	}
	m.applies.WithLabelValues(kind, boolLabel(updated), boolLabel(recorded)).Inc()
}

func (m *Metrics) ObserveSync(status string, items map[string]int) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(status).Inc()
	for stage, n := range items {
		if n > 0 {
			m.syncItems.WithLabelValues(stage).Add(float64(n))
		}
	}
}

func (m *Metrics) IncFreeTierRejected() {
	if m == nil {
		return
	}
	m.freeTierRejected.Inc()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.pgStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.pgStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.pgStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.pgStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.pgStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

// StartRedisCollector pings the shared client; it does not own or close it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
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

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// RouteLabel collapses empty gin routes (404s) into one label value.
func RouteLabel(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "unknown"
	}
	return route
}
