// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// hmsPrecond gates HMS on bucket state and a minimum bit count (SPEC_FULL.md
// §4.6 item 7).
func hmsPrecond(b *Bucket) bool { return b.State == StateHMS && b.bitLen() >= hmsMinBits }

// decodeHMS extracts six MSB-first data bytes, each followed by a correct
// even-parity bit and a literal stop bit of 0, then one CRC byte followed by
// its own parity bit. The frame is accepted if the XOR of the six data bytes
// equals the CRC byte (SPEC_FULL.md §4.6 item 7).
func decodeHMS(_ int16, b *Bucket) (Frame, bool) {
	total := b.bitLen()
	pos := 0
	var data [6]byte
	for i := 0; i < 6; i++ {
		if pos+10 > total {
			return Frame{}, false
		}
		var v byte
		for k := 0; k < 8; k++ {
			v = v<<1 | byte(bitAt(b, pos))
			pos++
		}
		parity := bitAt(b, pos)
		pos++
		stop := bitAt(b, pos)
		pos++
		if !parityOK(v, parity) || stop != 0 {
			return Frame{}, false
		}
		data[i] = v
	}
	if pos+9 > total {
		return Frame{}, false
	}
	var crc byte
	for k := 0; k < 8; k++ {
		crc = crc<<1 | byte(bitAt(b, pos))
		pos++
	}
	parity := bitAt(b, pos)
	if !parityOK(crc, parity) {
		return Frame{}, false
	}
	if xorAll(data[:]) != crc {
		return Frame{}, false
	}
	f := Frame{Type: TypeHMS, OBy: 6}
	copy(f.OBuf[:6], data[:])
	return f, true
}
