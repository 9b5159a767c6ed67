// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// SilenceTimeout is the producer-context entry point invoked when the
// silence timer fires without a further edge (SPEC_FULL.md §4.5, §6
// SilenceTimeout). A bucket that never reached a real collecting state, or
// that holds fewer than two payload bytes, is a false alarm and is simply
// reset. Otherwise the bucket is handed to the ring, unless the ring is
// already full, in which case it is dropped in place with a debug line and a
// counted metric rather than overwriting an uncommitted frame.
//
// No mutex guards this: like HandleEdge, it is the producer's side of the
// ring and must be serialized with HandleEdge and Reset by the caller
// (SPEC_FULL.md §5, §9 Design Notes).
func (r *Receiver) SilenceTimeout() {
	b := r.ring.Current()
	if b.State < StateCollect || b.ByteIdx < 2 {
		b.reset()
		r.havePendingHi = false
		return
	}
	r.havePendingHi = false
	if overflow := r.ring.Commit(); overflow {
		r.debugLine("BOVF")
		if r.metrics != nil {
			r.metrics.ringOverflow.Inc()
		}
		return
	}
	if r.metrics != nil {
		r.metrics.framesCommitted.Inc()
	}
}

// SilenceUS returns the currently armed silence compare value in
// microseconds, reloaded by the sync detector per protocol
// (SilenceDefault/SilenceTCM97001/SilenceESA, SPEC_FULL.md §4.5). Like the
// field it reads, this is producer-owned; callers outside producer context
// get an opportunistic, possibly-stale read.
func (r *Receiver) SilenceUS() uint16 {
	return r.silenceUS
}
