// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// itPrecond gates the Intertechno analyzer on the bucket having reached one
// of the two Intertechno bit-demodulator states (SPEC_FULL.md §4.6 item 1).
func itPrecond(b *Bucket) bool {
	return b.State == StateIT || b.State == StateITV3
}

// decodeIT succeeds for an exact 3-byte Intertechno V1 frame or an exact
// 8-byte Intertechno V3 frame, copying the raw bytes verbatim — Intertechno
// carries no in-band checksum for this core to validate (SPEC_FULL.md §4.6
// item 1).
func decodeIT(_ int16, b *Bucket) (Frame, bool) {
	switch {
	case b.State == StateIT && b.ByteIdx == 3 && b.BitIdx == 7:
		f := Frame{Type: TypeITV1, OBy: 3}
		copy(f.OBuf[:3], b.Data[:3])
		return f, true
	case b.State == StateITV3 && b.ByteIdx == 8 && b.BitIdx == 7:
		f := Frame{Type: TypeITV3, OBy: 8}
		copy(f.OBuf[:8], b.Data[:8])
		return f, true
	}
	return Frame{}, false
}
