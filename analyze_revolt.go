// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// revoltPrecond gates the Revolt analyzer on bucket state (SPEC_FULL.md §4.6
// item 3).
func revoltPrecond(b *Bucket) bool { return b.State == StateRevolt }

// decodeRevolt succeeds for an exact 12-byte Revolt frame whose twelfth byte
// is the modulo-256 sum of the first eleven (SPEC_FULL.md §4.6 item 3).
func decodeRevolt(_ int16, b *Bucket) (Frame, bool) {
	if b.ByteIdx != 12 || b.BitIdx != 0 {
		return Frame{}, false
	}
	var sum byte
	for i := 0; i < 11; i++ {
		sum += b.Data[i]
	}
	if sum != b.Data[11] {
		return Frame{}, false
	}
	f := Frame{Type: TypeRevolt, OBy: 12}
	copy(f.OBuf[:12], b.Data[:12])
	return f, true
}
