// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// demodulate runs the C4 bit demodulator for every post-preamble state
// except HMS/ESA, which are driven edge-by-edge from HandleEdge because they
// use a Manchester line code rather than a (high, low) pulse-pair code.
func (r *Receiver) demodulate(b *Bucket, high, low int16) {
	switch b.State {
	case StateCollect:
		r.demodCollect(b, high, low, false)
	case StateIT:
		r.demodCollect(b, high, low, true)
	case StateITV3:
		r.demodITV3(b, high, low)
	case StateTCM97001:
		r.demodTCM97001(b, high, low)
	case StateRevolt:
		r.demodRevolt(b, high, low)
	}
}

// demodCollect implements the shared COLLECT/IT rule: a pulse matching the
// "one" reference appends 1, one matching "zero" appends 0, and anything
// else resets the bucket — except in IT, which tolerates a single mismatch
// by checking for an Intertechno V3 start marker instead of resetting
// (SPEC_FULL.md §4.4).
func (r *Receiver) demodCollect(b *Bucket, high, low int16, it bool) {
	state := StateCollect
	if it {
		state = StateIT
	}
	switch {
	case waveEquals(b.One, high, low, state):
		b.One = makeAvg(b.One, high, low)
		if !b.addBit(1) {
			b.reset()
		}
	case waveEquals(b.Zero, high, low, state):
		b.Zero = makeAvg(b.Zero, high, low)
		if !b.addBit(0) {
			b.reset()
		}
	case it:
		r.demodITV3Start(b, high, low)
	default:
		b.reset()
	}
}

// demodITV3Start handles a pulse in IT state that matched neither reference
// wave. Per Design Notes §9(a) a sufficiently long lowtime is interpreted as
// the start marker of an Intertechno V3 (rolling-code) transmission rather
// than a framing error, and the bucket switches into ITV3 decoding with
// reference waves taken from the observed timing.
func (r *Receiver) demodITV3Start(b *Bucket, high, low int16) {
	if low <= itv3StartLowMin {
		// Neither a V1 bit nor a V3 start marker: IT tolerates the single
		// mismatch by leaving state and references untouched.
		return
	}
	b.startCollect(StateITV3)
	b.Zero = Wave{High: high, Low: low}
	b.One = Wave{High: high, Low: low}
	if low-1 <= high {
		// Design Notes §9(a): factor 5 preserved verbatim, undocumented upstream.
		b.Zero.Low = high * 5
	}
}

// demodITV3 decodes a bit while already in Intertechno V3 mode: the bit is 1
// iff the low time exceeds the high time by more than the tolerance
// (SPEC_FULL.md §4.4).
func (r *Receiver) demodITV3(b *Bucket, high, low int16) {
	bit := 0
	if low-TDiff > high {
		bit = 1
	}
	if !b.addBit(bit) {
		b.reset()
	}
}

// demodTCM97001 decodes a bit from the lowtime alone; pulses outside both
// windows are ignored rather than resetting the bucket (SPEC_FULL.md §4.4).
func (r *Receiver) demodTCM97001(b *Bucket, high, low int16) {
	switch {
	case low > tcm97001Bit0Min && low < tcm97001Bit0Max:
		if !b.addBit(0) {
			b.reset()
		}
	case low > tcm97001Bit1Min && low < tcm97001Bit1Max:
		if !b.addBit(1) {
			b.reset()
		}
	}
}

// demodRevolt decodes a bit from the hightime alone, updating the matching
// reference wave for diagnostic purposes (SPEC_FULL.md §4.4).
func (r *Receiver) demodRevolt(b *Bucket, high, low int16) {
	bit := 1
	if high < revoltBitHighMax {
		bit = 0
	}
	if bit == 0 {
		b.Zero = makeAvg(b.Zero, high, low)
	} else {
		b.One = makeAvg(b.One, high, low)
	}
	if !b.addBit(bit) {
		b.reset()
	}
}
