// Package metrics provides Prometheus instrumentation for scenepool.
// Pools record checkout traffic, reuse ratios and pool sizes; the bench CLI
// scrapes the same collectors for its report.
//
// Counter: monotonically increasing values (e.g. total acquires)
// Gauge: values that can go up or down (e.g. reserve size)
// Histogram: distribution of values (e.g. acquire latency)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AcquiresTotal counts instance checkouts.
	// Labels: prototype, source ("reuse" when served from reserve,
	// "construct" when a new instance had to be built).
	AcquiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenepool_acquires_total",
			Help: "Total number of instance acquires",
		},
		[]string{"prototype", "source"},
	)

	// ReturnsTotal counts instance returns.
	// Labels: prototype, outcome ("parked" for a normal return to reserve,
	// "destroyed" when the owning pool was already disposed, "duplicate"
	// for the idempotent double-return no-op).
	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenepool_returns_total",
			Help: "Total number of instance returns",
		},
		[]string{"prototype", "outcome"},
	)

	// CascadeReturnsTotal counts returns triggered by an ancestor-destroying
	// broadcast rather than an explicit caller return.
	CascadeReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenepool_cascade_returns_total",
			Help: "Total number of returns triggered by ancestor teardown",
		},
		[]string{"prototype"},
	)

	// ConstructionsTotal counts engine instantiations performed by pools,
	// including pre-warm construction.
	ConstructionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenepool_constructions_total",
			Help: "Total number of instances constructed by pools",
		},
		[]string{"prototype"},
	)

	// DestructionsTotal counts instances destroyed by pools (clear, dispose,
	// return-after-dispose).
	DestructionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenepool_destructions_total",
			Help: "Total number of instances destroyed by pools",
		},
		[]string{"prototype"},
	)

	// ActiveInstances tracks how many instances are currently checked out,
	// per prototype.
	ActiveInstances = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scenepool_active_instances",
			Help: "Instances currently checked out",
		},
		[]string{"prototype"},
	)

	// ReserveInstances tracks how many instances are parked and available
	// for reuse, per prototype.
	ReserveInstances = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scenepool_reserve_instances",
			Help: "Instances parked in reserve",
		},
		[]string{"prototype"},
	)

	// PoolsOpen tracks the number of live (not disposed) pools.
	PoolsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scenepool_pools_open",
			Help: "Number of live instance pools",
		},
	)

	// AcquireLatency tracks acquire duration in nanoseconds. Buckets are
	// tuned for in-memory work: a reserve hit is tens of nanoseconds, a
	// construction of a deep prototype can reach milliseconds.
	AcquireLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scenepool_acquire_latency_nanoseconds",
			Help: "Acquire latency in nanoseconds",
			Buckets: []float64{
				100,    // 100ns - reserve pop
				1000,   // 1μs - hook-heavy reuse
				10000,  // 10μs - shallow construction
				100000, // 100μs - deep construction
				1e6,    // 1ms
				1e7,    // 10ms
			},
		},
		[]string{"prototype"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed duration since creation. Stopping more than once
// returns the total elapsed time each call.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveAcquire records one acquire against the latency histogram.
func ObserveAcquire(prototype string, d time.Duration) {
	AcquireLatency.WithLabelValues(prototype).Observe(float64(d.Nanoseconds()))
}
