// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// MaxMsg bounds the raw demodulated bit buffer. It is sized generously above
// the longest supported frame (HMS's 69+ bits, ESA's 160 bits) while still
// fitting comfortably in a fixed array, matching the firmware's MAXMSG.
const MaxMsg = 22

// State is the bucket's current demodulation state.
type State byte

const (
	StateReset State = iota
	StateInit
	StateSync
	StateCollect
	StateHMS
	StateESA
	StateRevolt
	StateIT
	StateTCM97001
	StateITV3
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "RESET"
	case StateInit:
		return "INIT"
	case StateSync:
		return "SYNC"
	case StateCollect:
		return "COLLECT"
	case StateHMS:
		return "HMS"
	case StateESA:
		return "ESA"
	case StateRevolt:
		return "REVOLT"
	case StateIT:
		return "IT"
	case StateTCM97001:
		return "TCM97001"
	case StateITV3:
		return "ITV3"
	default:
		return "?"
	}
}

// Bucket holds one in-progress or completed frame. It is the unit exchanged
// between the producer (edge/silence-timer handling) and the consumer
// (analyze task) through a Ring (see SPEC_FULL.md §3).
type Bucket struct {
	State State

	Zero, One Wave // reference waves used by the equal-wave comparator
	Sync      int  // count of sync-pulse repetitions seen so far

	ByteIdx int // write cursor: current byte
	BitIdx  int // write cursor: current bit, counts down 7..0 (MSB first)

	Data [MaxMsg]byte
}

// reset returns the bucket to its RESET lifecycle start, ready for the sync
// detector to run on the next pulse.
func (b *Bucket) reset() {
	*b = Bucket{State: StateReset, BitIdx: 7}
}

// startCollect clears the byte/bit cursor and pre-clears the first byte,
// called whenever the sync detector or a protocol-specific preamble commits
// the bucket to data collection.
func (b *Bucket) startCollect(state State) {
	b.State = state
	b.ByteIdx = 0
	b.BitIdx = 7
	b.Data[0] = 0
}

// addBit appends one demodulated bit (0 or 1), MSB first within each byte. It
// reports false if the bucket has overflowed MaxMsg bytes; the caller must
// reset the bucket in that case (SPEC_FULL.md §4.4, §7).
func (b *Bucket) addBit(bit int) bool {
	if b.ByteIdx >= MaxMsg {
		return false
	}
	if bit != 0 {
		b.Data[b.ByteIdx] |= 1 << uint(b.BitIdx)
	}
	if b.BitIdx == 0 {
		b.BitIdx = 7
		b.ByteIdx++
		if b.ByteIdx < MaxMsg {
			b.Data[b.ByteIdx] = 0
		}
		return b.ByteIdx < MaxMsg
	}
	b.BitIdx--
	return true
}

// bitLen returns the total number of bits collected so far.
func (b *Bucket) bitLen() int {
	return b.ByteIdx*8 + (7 - b.BitIdx)
}
