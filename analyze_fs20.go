// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

// fs20Precond gates FS20/FHT/FS10 on the generic COLLECT state — these three
// protocols share a bit-serial, even-parity-framed encoding and are told
// apart only by their checksum seed (SPEC_FULL.md §4.6 item 5).
func fs20Precond(b *Bucket) bool { return b.State == StateCollect }

// decodeFS20 extracts the shared FS20/FHT/FS10 byte stream (MSB-first data
// byte + even-parity check bit, repeated) and classifies the frame by which
// checksum seed its trailing byte satisfies (SPEC_FULL.md §4.6 item 5). The
// trailing byte is the checksum itself and is not included in the emitted
// payload.
func decodeFS20(_ int16, b *Bucket) (Frame, bool) {
	buf, ok := extractParityFramed(b, MaxMsg)
	if !ok || len(buf) < 2 {
		return Frame{}, false
	}
	payload := buf[:len(buf)-1]
	trailer := buf[len(buf)-1]

	switch {
	case cksum1(6, payload, len(payload)) == trailer:
		return fs20Frame(TypeFS20, payload), true
	case cksum1(6, payload, len(payload))+1 == trailer:
		// FS20 repeater: the trailer carries the canonical checksum plus
		// one. The trailer is not part of the emitted payload, so the frame
		// is identical to the non-repeater one.
		return fs20Frame(TypeFS20, payload), true
	case cksum1(12, payload, len(payload)) == trailer:
		return fs20Frame(TypeFHT, payload), true
	}
	return Frame{}, false
}

func fs20Frame(t byte, payload []byte) Frame {
	f := Frame{Type: t, OBy: len(payload)}
	copy(f.OBuf[:], payload)
	return f
}
