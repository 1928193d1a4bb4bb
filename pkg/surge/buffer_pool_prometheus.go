//go:build prometheus

package surge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus export for buffer pool counters. Built only with the
// `prometheus` tag so the default build carries no collector overhead.
var (
	bufferPoolGets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "surge",
		Subsystem: "buffer_pool",
		Name:      "gets_total",
		Help:      "Total buffer Get operations",
	})

	bufferPoolMisses = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "surge",
		Subsystem: "buffer_pool",
		Name:      "misses_total",
		Help:      "Total buffer pool misses (new allocations)",
	})
)

// PublishBufferPoolMetrics copies the pool's counters into the
// registered gauges. Call it from a metrics scrape hook.
func PublishBufferPoolMetrics(bp *BufferPool) {
	s := bp.Stats()
	bufferPoolGets.Set(float64(s.Gets))
	bufferPoolMisses.Set(float64(s.Misses))
}
