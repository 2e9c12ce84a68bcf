// Package metrics collects Prometheus metrics for a single bot run. The
// process exits after one run, so metrics are exported through a
// node_exporter textfile instead of a scrape endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one run on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	DirectionScore *prometheus.GaugeVec
	CandleFetches  *prometheus.CounterVec
	CacheHits      *prometheus.CounterVec
	Decisions      *prometheus.CounterVec
	Orders         *prometheus.CounterVec
	LastRun        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		DirectionScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "bandtrader_direction_score", Help: "Band direction score per granularity (-3..3)"},
			[]string{"instrument", "granularity"},
		),
		CandleFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bandtrader_candle_fetches_total", Help: "Candle series fetched from the broker"},
			[]string{"granularity"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bandtrader_candle_cache_hits_total", Help: "Candle series served from the run cache"},
			[]string{"granularity"},
		),
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bandtrader_decisions_total", Help: "Run decisions by action"},
			[]string{"action"},
		),
		Orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bandtrader_orders_total", Help: "Orders submitted"},
			[]string{"side", "result"},
		),
		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "bandtrader_last_run_timestamp_seconds", Help: "Unix time the last run finished"},
		),
	}
	m.reg.MustRegister(m.DirectionScore, m.CandleFetches, m.CacheHits, m.Decisions, m.Orders, m.LastRun)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *Metrics) ObserveScore(instrument, granularity string, score int) {
	if m == nil {
		return
	}
	m.DirectionScore.WithLabelValues(instrument, granularity).Set(float64(score))
}

func (m *Metrics) CandleFetched(granularity string) {
	if m == nil {
		return
	}
	m.CandleFetches.WithLabelValues(granularity).Inc()
}

func (m *Metrics) CacheHit(granularity string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(granularity).Inc()
}

func (m *Metrics) Decision(action string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(action).Inc()
}

// Order counts a submission; result is "filled" or "error".
func (m *Metrics) Order(side, result string) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(side, result).Inc()
}

func (m *Metrics) RunFinished(t time.Time) {
	if m == nil {
		return
	}
	m.LastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes every collector to path in the text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
