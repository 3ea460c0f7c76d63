// Package obsmetrics is the round pipeline's metrics surface: Prometheus
// counters, gauges, and averagers registered under one registry, grounded
// on the teacher consensus module's metrics package shape.
package obsmetrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Averager tracks a running average of observed values.
type Averager interface {
	Observe(value float64)
	Read() float64
}

type averager struct {
	mu    sync.RWMutex
	sum   float64
	count float64

	promCount prometheus.Counter
	promSum   prometheus.Gauge
}

// NewAverager registers count and sum metrics under reg and returns an
// Averager backed by them.
func NewAverager(name, help string, reg prometheus.Registerer) (Averager, error) {
	count := prometheus.NewCounter(prometheus.CounterOpts{
		Name: name + "_count",
		Help: "Total # of observations of " + help,
	})
	sum := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name + "_sum",
		Help: "Sum of " + help,
	})

	if err := reg.Register(count); err != nil {
		return nil, fmt.Errorf("obsmetrics: register %s_count: %w", name, err)
	}
	if err := reg.Register(sum); err != nil {
		return nil, fmt.Errorf("obsmetrics: register %s_sum: %w", name, err)
	}

	return &averager{promCount: count, promSum: sum}, nil
}

func (a *averager) Observe(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sum += value
	a.count++
	if a.promCount != nil {
		a.promCount.Inc()
	}
	if a.promSum != nil {
		a.promSum.Add(value)
	}
}

func (a *averager) Read() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.count == 0 {
		return 0
	}
	return a.sum / a.count
}

// RoundMetrics bundles every gauge/counter the round executor reports,
// registered together under one Prometheus registry.
type RoundMetrics struct {
	RoundsFinalized  prometheus.Counter
	RoundsFailed     prometheus.Counter
	OrderedTxTotal   prometheus.Counter
	ForkDropsTotal   prometheus.Counter
	RoundLatencySecs Averager
}

// NewRoundMetrics registers the standard round-pipeline metric set under
// reg with the given namespace prefix.
func NewRoundMetrics(namespace string, reg prometheus.Registerer) (*RoundMetrics, error) {
	m := &RoundMetrics{
		RoundsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rounds_finalized_total", Help: "Total rounds finalized.",
		}),
		RoundsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rounds_failed_total", Help: "Total rounds that failed.",
		}),
		OrderedTxTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ordered_tx_total", Help: "Total transactions included in the canonical order.",
		}),
		ForkDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fork_drops_total", Help: "Total transactions recorded as fork drops (duplicate, out-of-window, or rejected).",
		}),
	}

	for _, c := range []prometheus.Collector{m.RoundsFinalized, m.RoundsFailed, m.OrderedTxTotal, m.ForkDropsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("obsmetrics: register round metrics: %w", err)
		}
	}

	avg, err := NewAverager(namespace+"_round_latency_seconds", "round finalization latency", reg)
	if err != nil {
		return nil, err
	}
	m.RoundLatencySecs = avg

	return m, nil
}
