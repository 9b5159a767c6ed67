// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// hormannPrecond gates Hörmann — the last-resort classifier, per Design
// Notes §9b's open question — on the COLLECT state and an exact bit count;
// decodeHormann then checks the bucket's zero reference against Hörmann's
// fixed sync wave (SPEC_FULL.md §4.6 item 10).
func hormannPrecond(b *Bucket) bool {
	return b.State == StateCollect && b.ByteIdx == hormannByteIdx && b.BitIdx == hormannBitIdx
}

// decodeHormann synthesizes the one trailing bit the silence timer cannot
// itself supply and copies the resulting 5 raw bytes verbatim; Hörmann has
// no in-band checksum this core validates (SPEC_FULL.md §4.6 item 10).
func decodeHormann(_ int16, b *Bucket) (Frame, bool) {
	if !waveEquals(b.Zero, hormannZero.High, hormannZero.Low, b.State) {
		return Frame{}, false
	}
	f := Frame{Type: TypeHormann, OBy: 5}
	copy(f.OBuf[:4], b.Data[:4])
	f.OBuf[4] = b.Data[4] | (1 << uint(hormannBitIdx))
	return f, true
}
