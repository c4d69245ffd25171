// Package metrics exposes Prometheus instrumentation for the runtime's
// worker pools, executor, and timer service. Each constructor takes the
// Registerer to register with, so multiple independent runtimes in one
// process (as in tests) need not collide on metric registration; pool.New
// and timer.StartTimerThread pass nil, so their metrics are not registered.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pool holds the metrics a single pool.Pool instruments itself with.
type Pool struct {
	LiveWorkers   prometheus.Gauge
	QueueDepth    prometheus.Gauge
	JobsScheduled prometheus.Counter
	JobsCompleted prometheus.Counter
	PanicsCaught  prometheus.Counter
	RespawnFails  prometheus.Counter
}

// NewPool registers and returns pool metrics labeled by name, under reg.
// If reg is nil, the metrics are created but never registered (useful for
// tests that don't care about scraping).
func NewPool(reg prometheus.Registerer, name string) *Pool {
	labels := prometheus.Labels{"pool": name}
	p := &Pool{
		LiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "corert",
			Subsystem:   "pool",
			Name:        "live_workers",
			Help:        "Number of currently live worker goroutines.",
			ConstLabels: labels,
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "corert",
			Subsystem:   "pool",
			Name:        "queue_depth",
			Help:        "Number of jobs currently queued, awaiting a worker.",
			ConstLabels: labels,
		}),
		JobsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "corert",
			Subsystem:   "pool",
			Name:        "jobs_scheduled_total",
			Help:        "Total number of jobs successfully pushed onto the queue.",
			ConstLabels: labels,
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "corert",
			Subsystem:   "pool",
			Name:        "jobs_completed_total",
			Help:        "Total number of jobs that ran to completion.",
			ConstLabels: labels,
		}),
		PanicsCaught: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "corert",
			Subsystem:   "pool",
			Name:        "panics_caught_total",
			Help:        "Total number of worker panics recovered and respawned.",
			ConstLabels: labels,
		}),
		RespawnFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "corert",
			Subsystem:   "pool",
			Name:        "respawn_failures_total",
			Help:        "Total number of failed attempts to respawn a dead worker.",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			p.LiveWorkers,
			p.QueueDepth,
			p.JobsScheduled,
			p.JobsCompleted,
			p.PanicsCaught,
			p.RespawnFails,
		)
	}
	return p
}

// Timer holds the metrics timer.StartTimerThread instruments itself with.
type Timer struct {
	ScheduledWakes prometheus.Counter
	FiredWakes     prometheus.Counter
	HeapDepth      prometheus.Gauge
}

// NewTimer registers and returns timer metrics under reg.
func NewTimer(reg prometheus.Registerer) *Timer {
	t := &Timer{
		ScheduledWakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corert",
			Subsystem: "timer",
			Name:      "scheduled_wakes_total",
			Help:      "Total number of wakes registered with the timer goroutine.",
		}),
		FiredWakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corert",
			Subsystem: "timer",
			Name:      "fired_wakes_total",
			Help:      "Total number of wakes actually fired (slot was non-empty).",
		}),
		HeapDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "corert",
			Subsystem: "timer",
			Name:      "heap_depth",
			Help:      "Current number of entries in the scheduled-wake min-heap.",
		}),
	}
	if reg != nil {
		reg.MustRegister(t.ScheduledWakes, t.FiredWakes, t.HeapDepth)
	}
	return t
}
