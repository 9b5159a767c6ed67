// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// Silence compare-register reload values (C5), in raw microseconds — these
// apply to the free-running timer directly and are not scaled by >>4 the way
// pulse widths are (SPEC_FULL.md §4.5).
const (
	SilenceDefault  uint16 = 4000
	SilenceTCM97001 uint16 = 4600
	SilenceESA      uint16 = 1000
)

// Sync-detector decision table (C3). Constants suffixed Raw are expressed in
// raw microseconds and must be compared against a pulse width after scaling
// by >>4; the others are already in the scaled domain used by Wave.
const (
	tcm97001HighRawMin = 420
	tcm97001HighRawMax = 530
	tcm97001LowRawMin  = 8500
	tcm97001LowRawMax  = 9000

	itHighRawMin = 140
	itHighRawMax = 600
	itLowRawMin  = 2500
	itLowRawMax  = 17000

	rejectRawMax = 1600

	hmsZeroSumRawMin = 1600 // sync classifies HMS when zero.high+zero.low exceeds this
	esaZeroSumRawMax = 600  // sync classifies ESA when zero.high+zero.low is under this

	revoltHighRawMin = 9000
	revoltHighRawMax = 12000
	revoltLowRawMin  = 150
	revoltLowRawMax  = 540
)

func scale16(raw int) int16 { return int16(raw / 16) }

// Bit-demodulator validity windows (C4), already in the scaled domain.
var (
	hmsWindowMin = scale16(750)
	hmsWindowMax = scale16(1250)
	esaWindowMin = scale16(375)
	esaWindowMax = scale16(625)
)

// TCM97001 bit thresholds (C4), already scaled.
const (
	tcm97001Bit0Min int16 = 110
	tcm97001Bit0Max int16 = 140
	tcm97001Bit1Min int16 = 230
	tcm97001Bit1Max int16 = 270
)

// Revolt bit threshold (C4), already scaled.
const revoltBitHighMax int16 = 11

// ITV3 start-marker threshold (C4), already scaled.
const itv3StartLowMin int16 = 2400 / 16

// minSyncCount is the number of matching sync pulses required before the
// sync detector is willing to classify the preamble (C3).
const minSyncCount = 4

// Analyzer-stage (C6) framing constants.
const (
	esaBitLen15 = 144 // ESA 15-byte frame length in raw collected bits
	esaBitLen17 = 160 // ESA 17-byte frame length in raw collected bits
	esaSalt0    = 0x89
	esaSaltStep = 0x24

	hmsMinBits = 69 // HMS requires 6 data bytes of 10 bits (8 data, parity, stop) plus a CRC byte of 9 bits (8 data, parity)

	tx3ByteIdx = 4
	tx3BitIdx  = 1

	hormannByteIdx = 4
	hormannBitIdx  = 4
)

// Hörmann's fixed sync reference wave (SPEC_FULL.md §4.6 item 10), already
// scaled.
var hormannZero = Wave{High: scale16(960), Low: scale16(480)}

// REPTIME is the maximum gap, in Receiver.Ticks units, between two
// occurrences of an identical frame for the deduplicator to treat them as one
// transmission (SPEC_FULL.md §4.7, GLOSSARY). The source firmware's value is
// not reproduced by the distilled spec; this reimplementation picks 200 ticks
// (same order of magnitude as the firmware's own 100ms-ish repeat window) and
// exposes it as a var so callers needing a different window can override it.
var REPTIME uint32 = 200

// FHT control-byte constants recognized by the synthetic-repeat heuristic
// (SPEC_FULL.md §4.7, Design Notes §9c) — preserved as the heuristic the
// spec names, not expanded.
const (
	fhtAck       = 0x09
	fhtAck2      = 0x69
	fhtCanXmit   = 0x0b
	fhtCanRcv    = 0x0c
	fhtStartXmit = 0x0d
	fhtEndXmit   = 0x0e
)
