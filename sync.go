// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// syncDetect runs the C3 sync detector while the current bucket is in
// StateReset or StateSync (SPEC_FULL.md §4.3).
func (r *Receiver) syncDetect(b *Bucket, high, low int16) {
	switch b.State {
	case StateReset:
		r.syncFirstPulse(b, high, low)
	case StateSync:
		r.syncRefine(b, high, low)
	}
}

// syncFirstPulse classifies the very first pulse seen on an idle line,
// tested in the fixed order required by SPEC_FULL.md §4.3.
func (r *Receiver) syncFirstPulse(b *Bucket, high, low int16) {
	if r.caps.TCM97001 &&
		high >= scale16(tcm97001HighRawMin) && high <= scale16(tcm97001HighRawMax) &&
		low >= scale16(tcm97001LowRawMin) && low <= scale16(tcm97001LowRawMax) {
		b.startCollect(StateTCM97001)
		r.silenceUS = SilenceTCM97001
		return
	}
	if r.caps.Intertechno &&
		high >= scale16(itHighRawMin) && high <= scale16(itHighRawMax) &&
		low >= scale16(itLowRawMin) && low <= scale16(itLowRawMax) {
		b.startCollect(StateIT)
		r.silenceUS = SilenceDefault
		return
	}
	if high > scale16(rejectRawMax) || low > scale16(rejectRawMax) {
		return // reject: stay in RESET
	}
	b.Zero = Wave{High: high, Low: low}
	b.Sync = 1
	b.State = StateSync
}

// syncRefine runs while the bucket is accumulating a generic sync train
// (SPEC_FULL.md §4.3). Pulses that keep matching the reference zero wave
// refine a running average; a mismatch classifies the preamble once enough
// repetitions have been seen, or retries from RESET if not.
func (r *Receiver) syncRefine(b *Bucket, high, low int16) {
	if waveEquals(b.Zero, high, low, StateSync) {
		b.Zero = makeAvg(b.Zero, high, low)
		b.Sync++
		return
	}
	if b.Sync < minSyncCount {
		b.reset()
		r.syncFirstPulse(b, high, low)
		return
	}

	one := Wave{High: high, Low: low}
	sum := b.Zero.High + b.Zero.Low
	switch {
	case r.caps.HMS && b.Sync >= 12 && sum > scale16(hmsZeroSumRawMin):
		b.One = one
		b.startCollect(StateHMS)
		r.silenceUS = SilenceDefault
	case r.caps.ESA && b.Sync >= 10 && sum < scale16(esaZeroSumRawMax):
		b.One = one
		b.startCollect(StateESA)
		r.silenceUS = SilenceESA
	case r.rfRouterMatch(b, one):
		if r.rfRouterHook != nil {
			r.rfRouterHook(b)
		}
		b.reset()
	default:
		b.One = one
		b.startCollect(StateCollect)
		r.silenceUS = SilenceDefault
	}
}

// rfRouterMatch recognizes the RF-router preamble shape referenced by
// SPEC_FULL.md §4.3. The RF-router protocol itself is an external
// collaborator (SPEC_FULL.md §1) whose exact sync shape this core does not
// need to interpret beyond handing the raw bucket off. No router sync shape
// is recognized: this always reports false, so the rfRouterHook is never
// invoked, whether or not one is wired.
func (r *Receiver) rfRouterMatch(b *Bucket, one Wave) bool {
	return r.rfRouterHook != nil && false
}
