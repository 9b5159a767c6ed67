// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// tcm97001Precond gates the TCM97001 analyzer on bucket state (SPEC_FULL.md
// §4.6 item 2).
func tcm97001Precond(b *Bucket) bool { return b.State == StateTCM97001 }

// decodeTCM97001 succeeds for an exact 3-byte frame, copying the raw bytes
// verbatim; like Intertechno, TCM97001 carries no in-band checksum this core
// validates (SPEC_FULL.md §4.6 item 2).
func decodeTCM97001(_ int16, b *Bucket) (Frame, bool) {
	if b.ByteIdx != 3 || b.BitIdx != 7 {
		return Frame{}, false
	}
	f := Frame{Type: TypeTCM97001, OBy: 3}
	copy(f.OBuf[:3], b.Data[:3])
	return f, true
}
