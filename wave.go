// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// Wave is a demodulated (high, low) pulse pair, the atomic unit of pulse-width
// coded modulation used by every protocol this receiver understands. Both
// fields are already scaled (raw microseconds >> 4) to fit an 8-bit domain;
// arithmetic is carried out in int16 throughout to avoid the wraparound bugs
// that plain byte subtraction would introduce (see DESIGN.md).
type Wave struct {
	High int16
	Low  int16
}

// Tolerance windows, in scaled (>>4) microseconds. TDiffIT is wider because
// Intertechno senders are sloppier about their mark/space timing than the
// rest of the supported protocols.
const (
	TDiff   int16 = 200 / 16
	TDiffIT int16 = 350 / 16
)

// waveEquals reports whether the pulse (h, l) matches the reference wave ref
// closely enough to be considered the same symbol in the given state. All
// three of the high, low, and sum differences must fall strictly inside the
// tolerance window.
func waveEquals(ref Wave, h, l int16, state State) bool {
	tol := TDiff
	if state == StateIT {
		tol = TDiffIT
	}
	dLow := ref.Low - l
	dHigh := ref.High - h
	dSum := (ref.Low + ref.High) - (l + h)
	return abs16(dLow) < tol && abs16(dHigh) < tol && abs16(dSum) < tol
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// makeAvg folds a newly observed pulse into a running reference wave, weighted
// 3:1 in favor of the prior value and rounded toward the new value, so that
// feeding the same (h, l) repeatedly converges the average to exactly (h, l)
// (see SPEC_FULL.md §8).
func makeAvg(ref Wave, h, l int16) Wave {
	return Wave{
		High: avgToward(ref.High, h),
		Low:  avgToward(ref.Low, l),
	}
}

// avgToward moves prev a quarter of the way to v, rounding the step away
// from zero so that any nonzero difference moves prev by at least one unit.
func avgToward(prev, v int16) int16 {
	d := v - prev
	if d > 0 {
		return prev + (d+3)/4
	}
	return prev + (d-3)/4
}
