// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import "sync/atomic"

// RingSize is the number of buckets held in flight between the producer and
// the consumer. The source firmware sizes this to whatever a handful of
// SRAM-constrained CC1100/CUL targets could spare; four buckets is ample
// headroom for a Go process and matches the "a few buckets" sizing implied by
// SPEC_FULL.md §3's overflow handling.
const RingSize = 4

// Ring is a fixed-size single-producer/single-consumer ring of Buckets. The
// producer (edge and silence-timer handling) owns the bucket at in and
// advances in/nrUsed on commit; the consumer (the analyze task) owns the
// bucket at out and advances out/nrUsed on release. No lock guards this path:
// correctness rests entirely on nrUsed being updated atomically and on each
// side touching only its own bucket (SPEC_FULL.md §5, Design Notes §9).
type Ring struct {
	buckets [RingSize]Bucket
	in      int
	out     int
	nrUsed  atomic.Int32
}

// NewRing returns a Ring with every bucket in the RESET state.
func NewRing() *Ring {
	r := &Ring{}
	for i := range r.buckets {
		r.buckets[i].reset()
	}
	return r
}

// Current returns the bucket presently being filled by the producer.
func (r *Ring) Current() *Bucket { return &r.buckets[r.in] }

// Full reports whether every bucket is committed and awaiting the consumer.
func (r *Ring) Full() bool { return int(r.nrUsed.Load()) >= RingSize }

// Commit advances the producer to the next (already-RESET) bucket. If the
// ring is full, the current bucket is instead reset in place and the partial
// frame is discarded; Commit reports this as overflow so the caller can emit
// a BOVF debug line (SPEC_FULL.md §4.5, §7).
func (r *Ring) Commit() (overflow bool) {
	if r.Full() {
		r.buckets[r.in].reset()
		return true
	}
	r.in = (r.in + 1) % RingSize
	r.nrUsed.Add(1)
	return false
}

// Ready reports whether a committed bucket awaits the consumer.
func (r *Ring) Ready() bool { return r.nrUsed.Load() > 0 }

// Used returns the number of committed buckets awaiting the consumer.
func (r *Ring) Used() int32 { return r.nrUsed.Load() }

// Peek returns the oldest committed bucket for the consumer to classify. It
// must not be called unless Ready() is true.
func (r *Ring) Peek() *Bucket { return &r.buckets[r.out] }

// Release marks the oldest committed bucket as consumed: it is reset in
// place and out is advanced. The consumer must not retain the pointer
// returned by a prior Peek across a Release call.
func (r *Ring) Release() {
	r.buckets[r.out].reset()
	r.out = (r.out + 1) % RingSize
	r.nrUsed.Add(-1)
}
