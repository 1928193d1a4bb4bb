package http1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	responsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surge",
			Subsystem: "http1",
			Name:      "responses_total",
			Help:      "Responses transmitted, by outcome",
		},
		[]string{"outcome"},
	)

	bytesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "surge",
			Subsystem: "http1",
			Name:      "bytes_written_total",
			Help:      "Head and body bytes accepted by the kernel",
		},
	)

	framingViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surge",
			Subsystem: "http1",
			Name:      "framing_violations_total",
			Help:      "Bodies that disagreed with the declared Content-Length",
		},
		[]string{"kind"}, // short | overrun
	)

	slowClientsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "surge",
			Subsystem: "http1",
			Name:      "slow_client_aborts_total",
			Help:      "Connections aborted for download throughput below the minimum",
		},
	)

	writeTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "surge",
			Subsystem: "http1",
			Name:      "write_timeouts_total",
			Help:      "Connections aborted because the sink stayed unwritable past the write timeout",
		},
	)
)
