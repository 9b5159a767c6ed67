// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import "github.com/prometheus/client_golang/prometheus"

// metricsSet is the Prometheus-backed counter set described in SPEC_FULL.md
// §7: one counter per failure/drop mode plus the three success counters needed
// to make the failure rates legible.
type metricsSet struct {
	ringOverflow     prometheus.Counter
	checksumFail     *prometheus.CounterVec
	dedupDropped     prometheus.Counter
	framesCommitted  prometheus.Counter
	framesClassified *prometheus.CounterVec
	framesEmitted    prometheus.Counter
}

// NewMetrics builds a metricsSet and registers it with reg. Passing a fresh
// prometheus.NewRegistry() in tests avoids colliding with the global
// DefaultRegisterer across test binaries.
func NewMetrics(reg prometheus.Registerer) *metricsSet {
	m := &metricsSet{
		ringOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "culrecv_ring_overflow_total",
			Help: "Buckets dropped because the receive ring was full at silence timeout.",
		}),
		checksumFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "culrecv_checksum_fail_total",
			Help: "Frames rejected by a protocol analyzer's checksum or parity check, by protocol.",
		}, []string{"protocol"}),
		dedupDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "culrecv_dedup_dropped_total",
			Help: "Frames suppressed by the retransmission deduplicator.",
		}),
		framesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "culrecv_frames_committed_total",
			Help: "Buckets committed from the producer side to the ring.",
		}),
		framesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "culrecv_frames_classified_total",
			Help: "Frames successfully classified by a protocol analyzer, by protocol.",
		}, []string{"protocol"}),
		framesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "culrecv_frames_emitted_total",
			Help: "Frames written to the output sink after dedup.",
		}),
	}
	reg.MustRegister(m.ringOverflow, m.checksumFail, m.dedupDropped,
		m.framesCommitted, m.framesClassified, m.framesEmitted)
	return m
}
