package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool connection statistics as Prometheus
// metrics, labelled with the owning service name.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string
	metrics []poolMetric
}

// NewPoolStatsCollector creates a collector over the given pool.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := []string{"service"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, labels, nil)
	}

	return &PoolStatsCollector{
		pool:    pool,
		service: service,
		metrics: []poolMetric{
			{
				desc:  desc("db_pool_acquired_connections", "Number of currently acquired connections"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) },
			},
			{
				desc:  desc("db_pool_idle_connections", "Number of currently idle connections"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) },
			},
			{
				desc:  desc("db_pool_total_connections", "Total number of connections in the pool"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) },
			},
			{
				desc:  desc("db_pool_max_connections", "Maximum number of connections allowed"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) },
			},
			{
				desc:  desc("db_pool_constructing_connections", "Number of connections currently being constructed"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) },
			},
			{
				desc:  desc("db_pool_acquire_count_total", "Total number of connection acquires"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) },
			},
			{
				desc:  desc("db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() },
			},
			{
				desc:  desc("db_pool_canceled_acquire_count_total", "Total number of canceled connection acquires"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) },
			},
			{
				desc:  desc("db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) },
			},
			{
				desc:  desc("db_pool_new_connections_total", "Total number of new connections created"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) },
			},
			{
				desc:  desc("db_pool_max_lifetime_destroy_total", "Total connections destroyed due to max lifetime"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) },
			},
			{
				desc:  desc("db_pool_max_idle_destroy_total", "Total connections destroyed due to max idle time"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) },
			},
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector by snapshotting the pool stats.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(stat), c.service)
	}
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
