// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import (
	"context"
	"time"

	"github.com/dclawin/culrecv/thread"
)

// Run is the consumer-context poll loop (SPEC_FULL.md §5): it drains every
// ready bucket on each tick, running it through classify → dedup → emit, and
// sleeps for pollInterval between empty polls rather than busy-spinning. It
// returns when ctx is canceled.
func (r *Receiver) Run(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drainReady()
		}
	}
}

// RunRealtime behaves like Run but first pins the calling goroutine to a
// round-robin realtime-scheduled OS thread via the adapted thread.Realtime
// helper (SPEC_FULL.md §5), matching the teacher driver's own handling of
// latency-sensitive polling loops.
func (r *Receiver) RunRealtime(ctx context.Context, pollInterval time.Duration) error {
	if err := thread.Realtime(); err != nil {
		r.log("culrecv: realtime scheduling unavailable, falling back to default: %v", err)
	}
	return r.Run(ctx, pollInterval)
}

// drainReady consumes every bucket currently committed to the ring. No
// mutex guards any of this: Ready/Peek/Release are the consumer's side of
// the lock-free SPSC ring (ring.go), synchronized with the producer purely
// through nrUsed's atomic updates (SPEC_FULL.md §5, §9 Design Notes).
// hightime is read opportunistically, per §5's "Shared resources outside
// the ring", tolerating a torn read with the producer.
func (r *Receiver) drainReady() {
	for {
		if !r.ring.Ready() {
			return
		}
		snapshot := *r.ring.Peek()
		r.processBucket(&snapshot, r.hightime, r.caps)
		r.ring.Release()
	}
}

// processBucket runs one committed bucket through C6/C7/C8. The producer is
// never blocked behind analyzer or emitter work since nothing here touches
// the producer's side of the ring.
func (r *Receiver) processBucket(b *Bucket, hightime int16, caps Capabilities) {
	r.emitDebug(b)

	f, ok, failed := classify(hightime, caps, b)
	if !ok {
		if r.metrics != nil {
			for _, name := range failed {
				r.metrics.checksumFail.WithLabelValues(name).Inc()
			}
		}
		return
	}
	if f.Type == TypeFHT && r.fhtHook != nil {
		r.fhtHook(f.OBuf[:f.OBy])
	}
	if !r.dedupAccept(f) {
		if r.metrics != nil {
			r.metrics.dedupDropped.Inc()
		}
		return
	}
	r.emitFrame(f)
}
