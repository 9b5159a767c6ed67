// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// Edge identifies which transition of the data-slicer input occurred.
type Edge int

const (
	EdgeFalling Edge = iota
	EdgeRising
)

// HandleEdge is the producer-context entry point (SPEC_FULL.md §6): it is
// invoked on each digital-input edge with the current
// free-running microsecond counter. It must not block and does a bounded
// amount of work per edge (SPEC_FULL.md §5).
//
// On a falling edge the counter is stored as the pending hightime and the
// internal timer reference is not moved. On the next rising edge the
// lowtime is derived as the elapsed time since the reference minus the
// pending hightime, and the reference is reset to the current counter
// (SPEC_FULL.md §4.1). HMS and ESA use a Manchester line code whose bit
// value is determined by each individual edge rather than by a completed
// (high, low) pair, so those two states are dispatched on every edge; all
// other states are dispatched once a full pair is available, at the rising
// edge.
//
// No mutex guards this: it is the producer's side of the lock-free SPSC
// ring (SPEC_FULL.md §5, §9 Design Notes) and must be serialized with
// SilenceTimeout and Reset by the caller rather than by this package.
func (r *Receiver) HandleEdge(edge Edge, counter uint16) {
	if edge == EdgeFalling {
		r.pendingHi = scale16raw(counter - r.timerZero)
		r.havePendingHi = true
		r.hightime = r.pendingHi
		if b := r.ring.Current(); b.State == StateHMS || b.State == StateESA {
			r.manchesterEdge(b, EdgeFalling, r.pendingHi)
		}
		return
	}

	// Rising edge.
	if !r.havePendingHi {
		r.timerZero = counter // spurious edge before any falling edge: resync
		return
	}
	total := scale16raw(counter - r.timerZero)
	high := r.pendingHi
	low := total - high
	r.lowtime = low
	r.timerZero = counter
	r.havePendingHi = false

	b := r.ring.Current()

	// Revolt preamble detection runs independently of the current state
	// (SPEC_FULL.md §4.3).
	if r.caps.Revolt &&
		high > scale16(revoltHighRawMin) && high < scale16(revoltHighRawMax) &&
		low > scale16(revoltLowRawMin) && low < scale16(revoltLowRawMax) {
		b.startCollect(StateRevolt)
		b.Zero, b.One = Wave{}, Wave{}
		return
	}

	if b.State == StateHMS || b.State == StateESA {
		r.manchesterEdge(b, EdgeRising, low)
		return
	}

	switch b.State {
	case StateReset, StateSync:
		r.syncDetect(b, high, low)
	default:
		r.demodulate(b, high, low)
	}
}

// scale16raw right-shifts a raw microsecond duration (the result of
// subtracting two free-running counter samples, which wraps correctly in
// uint16 arithmetic on overflow) down to the scaled domain used throughout
// the demodulator.
func scale16raw(diff uint16) int16 { return int16(diff >> 4) }

// manchesterEdge implements the HMS/ESA Manchester decode (SPEC_FULL.md
// §4.4): a falling edge inside the state's validity window appends a 1 bit,
// a rising edge inside the window appends a 0 bit. A pulse shorter than the
// window is ignored (it may be a sub-bit glitch); one longer than the window
// resets the bucket.
func (r *Receiver) manchesterEdge(b *Bucket, edge Edge, interval int16) {
	lo, hi := esaWindowMin, esaWindowMax
	if b.State == StateHMS {
		lo, hi = hmsWindowMin, hmsWindowMax
	}
	switch {
	case interval < lo:
		return
	case interval > hi:
		b.reset()
		return
	}
	bit := 0
	if edge == EdgeFalling {
		bit = 1
	}
	if !b.addBit(bit) {
		b.reset()
	}
}
